package source

import "errors"

var (
	// ErrInvalidURL is returned when a URL does not name a video or channel
	ErrInvalidURL = errors.New("invalid url")

	// ErrNotFound is returned when the referenced video or stream does not exist or is offline
	ErrNotFound = errors.New("not found")
)
