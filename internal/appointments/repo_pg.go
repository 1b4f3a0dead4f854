package appointments

import (
	"context"
	"database/sql"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a link row. The unique constraint on (document_id,
// schedule_id) makes repeated link attempts fail loudly rather than
// duplicate.
func (r *PGRepo) Create(ctx context.Context, link Link) error {
	const query = `
INSERT INTO appointment_documents (document_id, schedule_id, created_at)
VALUES ($1, $2, $3)`
	_, err := r.DB.ExecContext(ctx, query, link.DocumentID, link.ScheduleID, link.CreatedAt)
	return err
}

// ListByDocument returns the links for a document.
func (r *PGRepo) ListByDocument(ctx context.Context, documentID string) ([]Link, error) {
	const query = `
SELECT id, document_id, schedule_id, created_at
FROM appointment_documents
WHERE document_id = $1
ORDER BY created_at`

	rows, err := r.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Link
	for rows.Next() {
		var link Link
		if err := rows.Scan(&link.ID, &link.DocumentID, &link.ScheduleID, &link.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, link)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
