package analytics

import "context"

// Repo defines persistence operations for analytics records.
type Repo interface {
	Create(ctx context.Context, rec Record) error
	ListByTenant(ctx context.Context, tenantID int64, limit int) ([]Record, error)
}
