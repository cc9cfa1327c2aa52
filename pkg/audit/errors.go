package audit

import "errors"

var (
	// ErrEventValidation is returned when an event is missing required fields.
	ErrEventValidation = errors.New("audit event validation failed")

	// ErrStorageClosed is returned when storing to a closed storage.
	ErrStorageClosed = errors.New("audit storage is closed")
)
