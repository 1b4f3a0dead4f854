package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new document row.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    tenant_id,
    user_id,
    file_name,
    original_filename,
    storage_path,
    size_bytes,
    mime_type,
    ocr_data,
    parsed_data,
    status,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	originalName := doc.OriginalFilename
	if originalName == "" {
		originalName = doc.FileName
	}
	status := doc.Status
	if status == "" {
		status = StatusPending
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.TenantID,
		nullInt64(doc.UserID),
		doc.FileName,
		originalName,
		doc.StoragePath,
		doc.SizeBytes,
		doc.MimeType,
		nullJSON(doc.OCRData),
		nullJSON(doc.ParsedData),
		status,
		doc.CreatedAt,
	)
	return err
}

// GetByID fetches a document by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Document, error) {
	const query = `
SELECT id, tenant_id, user_id, file_name, original_filename, storage_path, size_bytes, mime_type, ocr_data, parsed_data, status, created_at
FROM documents
WHERE id = $1
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListByTenant lists documents newest-first for a tenant.
func (r *PGRepo) ListByTenant(ctx context.Context, tenantID int64, limit, offset int) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, tenant_id, user_id, file_name, original_filename, storage_path, size_bytes, mime_type, ocr_data, parsed_data, status, created_at
FROM documents
WHERE tenant_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// UpdateProcessing rewrites the OCR payloads and status for a re-OCR call.
// Rows that already reached completed are left untouched.
func (r *PGRepo) UpdateProcessing(ctx context.Context, id string, ocrData, parsedData json.RawMessage, status Status) error {
	const query = `
UPDATE documents
SET ocr_data = $1, parsed_data = $2, status = $3
WHERE id = $4 AND status <> $5`
	res, err := r.DB.ExecContext(ctx, query, nullJSON(ocrData), nullJSON(parsedData), status, id, StatusCompleted)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrTerminal
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var userID sql.NullInt64
	var ocrData, parsedData []byte
	if err := row.Scan(
		&doc.ID,
		&doc.TenantID,
		&userID,
		&doc.FileName,
		&doc.OriginalFilename,
		&doc.StoragePath,
		&doc.SizeBytes,
		&doc.MimeType,
		&ocrData,
		&parsedData,
		&doc.Status,
		&doc.CreatedAt,
	); err != nil {
		return Document{}, err
	}
	if userID.Valid {
		doc.UserID = userID.Int64
	}
	if len(ocrData) > 0 {
		doc.OCRData = json.RawMessage(ocrData)
	}
	if len(parsedData) > 0 {
		doc.ParsedData = json.RawMessage(parsedData)
	}
	return doc, nil
}

func nullInt64(v int64) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: v, Valid: true}
}

func nullJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

var _ Repo = (*PGRepo)(nil)
