package appointments

import (
	"context"
	"time"

	"dock-optimizer/internal/shared/telemetry"
)

// Linker attaches processed documents to dock schedules. Linking is a
// best-effort side effect of document processing: a failure here is logged
// and must never surface to the caller.
type Linker struct {
	Repo Repo
}

// Link records the document/schedule association and reports whether the
// link was created.
func (l *Linker) Link(ctx context.Context, documentID string, scheduleID int64) bool {
	if l == nil || l.Repo == nil {
		return false
	}
	err := l.Repo.Create(ctx, Link{
		DocumentID: documentID,
		ScheduleID: scheduleID,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		telemetry.Error("appointment link failed", map[string]any{
			"documentId": documentID,
			"scheduleId": scheduleID,
			"error":      err.Error(),
		})
		return false
	}
	telemetry.Info("appointment link created", map[string]any{
		"documentId": documentID,
		"scheduleId": scheduleID,
	})
	return true
}
