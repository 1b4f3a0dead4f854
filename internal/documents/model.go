package documents

import (
	"encoding/json"
	"strings"
	"time"
)

// Status is the terminal processing state recorded on a document.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Document represents one uploaded freight document owned by a tenant.
// A row is written for every received upload, whatever the OCR outcome.
type Document struct {
	ID               string
	TenantID         int64
	UserID           int64
	FileName         string
	OriginalFilename string
	StoragePath      string
	SizeBytes        int64
	MimeType         string
	OCRData          json.RawMessage
	ParsedData       json.RawMessage
	Status           Status
	CreatedAt        time.Time
}

// ocrMimeTypes is the set of MIME types the OCR engine accepts.
var ocrMimeTypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/jpg":       {},
	"image/png":       {},
	"image/tiff":      {},
	"image/bmp":       {},
	"image/gif":       {},
}

// OCRProcessable reports whether a MIME type is eligible for OCR.
// Documents outside this set are stored with status skipped.
func OCRProcessable(mimeType string) bool {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	_, ok := ocrMimeTypes[clean]
	return ok
}

// DeriveStatus computes the terminal status for a processed document.
// completed requires both the engine success flag and the usability check.
func DeriveStatus(processable, engineSuccess, usable bool) Status {
	if !processable {
		return StatusSkipped
	}
	if engineSuccess && usable {
		return StatusCompleted
	}
	return StatusFailed
}
