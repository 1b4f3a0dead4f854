package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service contains business logic for documents.
type Service struct {
	Repo Repo
}

// SaveProcessed persists a document row together with its extraction outcome.
// It is reachable on every pipeline branch after validation; an error here
// means the record of the uploaded artifact was lost and is treated as fatal
// by callers.
func (s *Service) SaveProcessed(ctx context.Context, doc Document) (Document, error) {
	if doc.FileName == "" {
		return Document{}, errors.New("file name required")
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.OriginalFilename == "" {
		doc.OriginalFilename = doc.FileName
	}
	if doc.Status == "" {
		doc.Status = StatusPending
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, fmt.Errorf("create document: %w", err)
	}
	return doc, nil
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, id string) (Document, error) {
	if id == "" {
		return Document{}, errors.New("document id required")
	}
	return s.Repo.GetByID(ctx, id)
}

// List returns documents for a tenant ordered newest-first.
func (s *Service) List(ctx context.Context, tenantID int64, limit, offset int) ([]Document, error) {
	return s.Repo.ListByTenant(ctx, tenantID, limit, offset)
}

// ApplyReprocess writes the outcome of an explicit re-OCR call.
func (s *Service) ApplyReprocess(ctx context.Context, id string, ocrData, parsedData []byte, status Status) error {
	if id == "" {
		return errors.New("document id required")
	}
	return s.Repo.UpdateProcessing(ctx, id, ocrData, parsedData, status)
}
