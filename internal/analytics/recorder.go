package analytics

import (
	"context"
	"time"

	"dock-optimizer/internal/shared/telemetry"
)

// Recorder writes analytics records on a best-effort basis. Failures are
// logged and swallowed; the calling pipeline never sees them.
type Recorder struct {
	Repo Repo
}

// Record persists one analytics row. Fire-and-forget relative to the caller.
func (r *Recorder) Record(ctx context.Context, rec Record) {
	if r == nil || r.Repo == nil {
		return
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if err := r.Repo.Create(ctx, rec); err != nil {
		telemetry.Error("analytics record failed", map[string]any{
			"document_id": rec.DocumentID,
			"tenant_id":   rec.TenantID,
			"error":       err.Error(),
		})
	}
}
