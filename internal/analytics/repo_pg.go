package analytics

import (
	"context"
	"database/sql"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create appends an analytics row.
func (r *PGRepo) Create(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO ocr_analytics (
    document_id,
    document_type,
    document_size,
    processing_time_ms,
    success,
    error_type,
    tenant_id,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	var errType sql.NullString
	if rec.ErrorType != "" {
		errType = sql.NullString{String: rec.ErrorType, Valid: true}
	}
	_, err := r.DB.ExecContext(
		ctx,
		query,
		rec.DocumentID,
		rec.DocumentType,
		rec.DocumentSize,
		rec.ProcessingTimeMs,
		rec.Success,
		errType,
		rec.TenantID,
		rec.CreatedAt,
	)
	return err
}

// ListByTenant returns recent records for a tenant, newest first.
func (r *PGRepo) ListByTenant(ctx context.Context, tenantID int64, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
SELECT id, document_id, document_type, document_size, processing_time_ms, success, error_type, tenant_id, created_at
FROM ocr_analytics
WHERE tenant_id = $1
ORDER BY created_at DESC
LIMIT $2`

	rows, err := r.DB.QueryContext(ctx, query, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var errType sql.NullString
		if err := rows.Scan(
			&rec.ID,
			&rec.DocumentID,
			&rec.DocumentType,
			&rec.DocumentSize,
			&rec.ProcessingTimeMs,
			&rec.Success,
			&errType,
			&rec.TenantID,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		if errType.Valid {
			rec.ErrorType = errType.String
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
