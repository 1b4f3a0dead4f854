package documents

import (
	"context"
	"encoding/json"
)

// Repo defines persistence operations for documents.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, id string) (Document, error)
	ListByTenant(ctx context.Context, tenantID int64, limit, offset int) ([]Document, error)
	// UpdateProcessing applies the one-shot terminal status update made by an
	// explicit re-OCR call. Completed documents are immutable.
	UpdateProcessing(ctx context.Context, id string, ocrData, parsedData json.RawMessage, status Status) error
}
