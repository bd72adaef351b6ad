package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: the id does not exist or the row is soft-deleted.
	ErrNotFound = errors.New("record not found")

	// ErrStoreUnavailable: the transport call exhausted its retries.
	ErrStoreUnavailable = errors.New("data store unavailable")

	// ErrWriteVerification: the store accepted a write but the read-back
	// could not confirm the affected row.
	ErrWriteVerification = errors.New("write could not be verified")
)

// RequestError is a non-transient rejection from the store (4xx). It is
// never retried.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("store rejected request: status %d: %s", e.Status, e.Body)
}
