package appointments

import "context"

// Repo defines persistence operations for appointment links.
type Repo interface {
	Create(ctx context.Context, link Link) error
	ListByDocument(ctx context.Context, documentID string) ([]Link, error)
}
