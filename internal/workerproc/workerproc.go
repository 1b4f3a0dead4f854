package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/hibiken/asynq"

	"dock-optimizer/internal/intake"
	"dock-optimizer/internal/queue"
	"dock-optimizer/internal/shared/metrics"
	"dock-optimizer/internal/shared/telemetry"
)

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{BodyLen: 0, BodySHA: ""}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

// ErrMissingDocumentID indicates a message missing the document id.
type ErrMissingDocumentID struct {
	Meta      MessageMeta
	RequestID string
}

func (e ErrMissingDocumentID) Error() string { return "missing document id" }

// ErrProcess indicates processing failed after successful parsing.
type ErrProcess struct {
	DocumentID string
	RequestID  string
	Err        error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "process document"
	}
	return "process document: " + e.Err.Error()
}

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if strings.TrimSpace(msg.DocumentID) == "" {
		return msg, meta, ErrMissingDocumentID{Meta: meta, RequestID: msg.RequestID}
	}
	return msg, meta, nil
}

// Processor plugs document reprocessing into the asynq worker loop.
type Processor struct {
	Intake *intake.Service
}

// NewProcessor constructs a worker processor.
func NewProcessor(svc *intake.Service) *Processor {
	return &Processor{Intake: svc}
}

// Handler registers the reprocess job handler.
func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskReprocessDocument, p.handleReprocess)
	return mux
}

func (p *Processor) handleReprocess(ctx context.Context, task *asynq.Task) error {
	if p.Intake == nil {
		return errors.New("intake service not configured")
	}

	msg, meta, err := ParseMessage(string(task.Payload()))
	if err != nil {
		telemetry.Error("reprocess message rejected", map[string]any{
			"error":    err.Error(),
			"body_len": meta.BodyLen,
			"body_sha": meta.BodySHA,
		})
		return err
	}

	metrics.IncReprocessJob()
	result, err := p.Intake.Reprocess(ctx, msg.DocumentID)
	if err != nil {
		return ErrProcess{DocumentID: msg.DocumentID, RequestID: msg.RequestID, Err: err}
	}

	telemetry.Info("reprocess complete", map[string]any{
		"documentId": msg.DocumentID,
		"requestId":  msg.RequestID,
		"status":     string(result.Status),
	})
	return nil
}
