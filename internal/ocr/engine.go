package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// Engine runs optical character recognition on a file and returns the raw
// engine payload. Run must honor ctx cancellation; a subprocess-backed engine
// kills the process when the context is done.
type Engine interface {
	Run(ctx context.Context, path string) (*RawResult, error)
}

// Region is one detected text region reported by the engine.
type Region struct {
	Text       string          `json:"text"`
	Confidence float64         `json:"confidence"`
	Box        json.RawMessage `json:"bbox,omitempty"`
}

// RawResult is the minimally-structured engine payload. The concrete engine's
// schema is not modeled beyond this shape; the verbatim JSON is retained so
// the document row stores exactly what the engine produced.
type RawResult struct {
	Success        bool     `json:"success"`
	Error          string   `json:"error,omitempty"`
	ErrorType      string   `json:"error_type,omitempty"`
	Text           []string `json:"text,omitempty"`
	Lines          []Region `json:"lines"`
	ProcessingTime float64  `json:"processing_time,omitempty"`

	payload json.RawMessage
}

// Payload returns the verbatim engine JSON.
func (r *RawResult) Payload() json.RawMessage {
	if r == nil {
		return nil
	}
	return r.payload
}

// TextLines returns the detected text one region per line. The flat text list
// is preferred when the engine provides it.
func (r *RawResult) TextLines() []string {
	if r == nil {
		return nil
	}
	if len(r.Text) > 0 {
		return r.Text
	}
	out := make([]string, 0, len(r.Lines))
	for _, line := range r.Lines {
		out = append(out, line.Text)
	}
	return out
}

// DecodeRawResult parses an engine payload. Engines sometimes write
// informational lines before the JSON document, so decoding falls back to the
// last non-empty line of the output.
func DecodeRawResult(data []byte) (*RawResult, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty engine output", ErrMalformedOutput)
	}

	res, err := decodeJSON(trimmed)
	if err == nil {
		return res, nil
	}

	if idx := bytes.LastIndexByte(trimmed, '\n'); idx >= 0 {
		last := bytes.TrimSpace(trimmed[idx+1:])
		if res, lastErr := decodeJSON(last); lastErr == nil {
			return res, nil
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
}

func decodeJSON(data []byte) (*RawResult, error) {
	var res RawResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	res.payload = append(json.RawMessage(nil), data...)
	return &res, nil
}

// encodeRawResult fills the payload for results built in-process.
func encodeRawResult(res *RawResult) (*RawResult, error) {
	payload, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	res.payload = payload
	return res, nil
}
