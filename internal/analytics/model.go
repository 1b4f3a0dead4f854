package analytics

import "time"

// Record is one append-only row describing an OCR processing attempt.
// Loss of a record never fails the pipeline that produced it.
type Record struct {
	ID               int64
	DocumentID       string
	DocumentType     string
	DocumentSize     int64
	ProcessingTimeMs int64
	Success          bool
	ErrorType        string
	TenantID         int64
	CreatedAt        time.Time
}
