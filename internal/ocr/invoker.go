package ocr

import (
	"context"
	"errors"
	"time"

	"dock-optimizer/internal/shared/metrics"
	"dock-optimizer/internal/shared/telemetry"
)

const (
	// DefaultTimeout bounds a single engine attempt.
	DefaultTimeout = 30 * time.Second
	maxAttempts    = 2
)

// Outcome is the result of an OCR invocation. Invoke never raises; every
// failure mode is encoded here.
type Outcome struct {
	Success          bool
	Raw              *RawResult
	ProcessingTimeMs int64
	Error            string
	ErrorType        string
	Attempts         int
}

// Invoker wraps an engine with a hard per-attempt timeout and a single retry.
type Invoker struct {
	Engine  Engine
	Timeout time.Duration
}

// NewInvoker constructs an invoker. A zero timeout means DefaultTimeout.
func NewInvoker(engine Engine, timeout time.Duration) *Invoker {
	return &Invoker{Engine: engine, Timeout: timeout}
}

// Invoke runs the engine with at most two strictly sequential attempts, both
// under the same timeout bound. A caller-cancelled context stops the retry
// loop. The returned outcome always carries a classification on failure.
func (inv *Invoker) Invoke(ctx context.Context, path string) Outcome {
	timeout := inv.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	start := time.Now()
	var out Outcome
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		out = inv.attempt(ctx, path, timeout)
		out.Attempts = attempt
		if out.Success {
			break
		}
		telemetry.Warn("ocr attempt failed", map[string]any{
			"path":       path,
			"attempt":    attempt,
			"error":      out.Error,
			"error_type": out.ErrorType,
		})
		if ctx.Err() != nil {
			break
		}
	}
	out.ProcessingTimeMs = time.Since(start).Milliseconds()
	metrics.ObserveOCRDurationMs(float64(out.ProcessingTimeMs))
	return out
}

func (inv *Invoker) attempt(ctx context.Context, path string, timeout time.Duration) Outcome {
	metrics.IncOCRAttempt()

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := inv.Engine.Run(attemptCtx, path)
	if err != nil {
		errType := classify(attemptCtx, err)
		if errType == ErrorTypeTimeout {
			metrics.IncOCRTimeout()
		}
		return Outcome{Error: err.Error(), ErrorType: errType}
	}
	if raw == nil {
		return Outcome{Error: "engine returned no result", ErrorType: ErrorTypeMalformed}
	}
	if !raw.Success {
		msg := raw.Error
		if msg == "" {
			msg = "engine reported failure"
		}
		return Outcome{Raw: raw, Error: msg, ErrorType: ErrorTypeEngine}
	}
	return Outcome{Success: true, Raw: raw}
}

func classify(ctx context.Context, err error) string {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrorTypeTimeout
	}
	if errors.Is(err, ErrMalformedOutput) {
		return ErrorTypeMalformed
	}
	return ErrorTypeEngine
}
