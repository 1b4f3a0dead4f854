package appointments

import "time"

// Link associates a stored document with a dock schedule record.
// A document may carry zero or more links; a failed link never invalidates
// the document it points at.
type Link struct {
	ID         int64
	DocumentID string
	ScheduleID int64
	CreatedAt  time.Time
}
