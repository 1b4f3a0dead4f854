package ocr

import "errors"

// ErrMalformedOutput marks engine output that could not be decoded into the
// expected payload shape.
var ErrMalformedOutput = errors.New("malformed engine output")

// Error classifications attached to failed outcomes, recorded in analytics.
const (
	ErrorTypeTimeout   = "timeout"
	ErrorTypeEngine    = "engine_error"
	ErrorTypeMalformed = "malformed_output"
)
