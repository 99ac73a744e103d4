package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrCorruptRecord is returned when a stored collection cannot be decoded.
	ErrCorruptRecord = errors.New("persistence: corrupt record")
	// ErrInvalidCollection is returned for empty or unknown collection names.
	ErrInvalidCollection = errors.New("persistence: invalid collection")
	// ErrStoreClosed is returned by stores used after Close.
	ErrStoreClosed = errors.New("persistence: store closed")
)
