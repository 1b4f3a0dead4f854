package analytics

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data []Record
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

// Create appends a record.
func (r *MemoryRepo) Create(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.ID = int64(len(r.data) + 1)
	r.data = append(r.data, rec)
	return nil
}

// ListByTenant returns records for a tenant, newest last insertion first.
func (r *MemoryRepo) ListByTenant(ctx context.Context, tenantID int64, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Record
	for i := len(r.data) - 1; i >= 0 && len(out) < limit; i-- {
		if r.data[i].TenantID == tenantID {
			out = append(out, r.data[i])
		}
	}
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
