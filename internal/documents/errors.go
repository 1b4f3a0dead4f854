package documents

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// ErrTerminal is returned when a processing update targets a document
	// whose status is already completed.
	ErrTerminal = errors.New("document already completed")
)
