package documents

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Document)}
}

// Create stores a document row.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc.Status == "" {
		doc.Status = StatusPending
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.ID] = doc
	return nil
}

// GetByID returns a document by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// ListByTenant returns documents for a tenant, newest first.
func (r *MemoryRepo) ListByTenant(ctx context.Context, tenantID int64, limit, offset int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}

	r.mu.RLock()
	var docs []Document
	for _, doc := range r.data {
		if doc.TenantID == tenantID {
			docs = append(docs, doc)
		}
	}
	r.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})

	if offset >= len(docs) {
		return []Document{}, nil
	}
	end := len(docs)
	if offset+limit < end {
		end = offset + limit
	}
	return docs[offset:end], nil
}

// UpdateProcessing applies the re-OCR status update; completed rows are immutable.
func (r *MemoryRepo) UpdateProcessing(ctx context.Context, id string, ocrData, parsedData json.RawMessage, status Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	if doc.Status == StatusCompleted {
		return ErrTerminal
	}
	doc.OCRData = ocrData
	doc.ParsedData = parsedData
	doc.Status = status
	r.data[id] = doc
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
