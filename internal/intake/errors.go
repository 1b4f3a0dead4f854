package intake

import "fmt"

// ValidationError reports a structural problem with an uploaded file. It is
// returned before any OCR work happens and never produces a document row.
type ValidationError struct {
	FileName string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate %s: %s", e.FileName, e.Reason)
}
