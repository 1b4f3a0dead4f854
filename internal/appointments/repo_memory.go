package appointments

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data []Link
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

// Create stores a link, rejecting duplicates like the database constraint.
func (r *MemoryRepo) Create(ctx context.Context, link Link) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.data {
		if existing.DocumentID == link.DocumentID && existing.ScheduleID == link.ScheduleID {
			return errors.New("link already exists")
		}
	}
	link.ID = int64(len(r.data) + 1)
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}
	r.data = append(r.data, link)
	return nil
}

// ListByDocument returns the links for a document.
func (r *MemoryRepo) ListByDocument(ctx context.Context, documentID string) ([]Link, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Link
	for _, link := range r.data {
		if link.DocumentID == documentID {
			out = append(out, link)
		}
	}
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
