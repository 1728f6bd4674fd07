package domain

import "errors"

var (
	// ErrInvalidURL is returned when the original URL is empty or blank.
	ErrInvalidURL = errors.New("invalid url")
	// ErrURLNotFound is returned when no record matches a short code or id.
	ErrURLNotFound = errors.New("url not found")
	// ErrShortCodeExists is returned when a short code is already assigned
	// to another record.
	ErrShortCodeExists = errors.New("short code already exists")
	// ErrStorageUnavailable wraps any failure of the persistent store,
	// timeouts included.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrInternal marks a broken invariant, such as two ids encoding to the
	// same short code.
	ErrInternal = errors.New("internal error")
)
