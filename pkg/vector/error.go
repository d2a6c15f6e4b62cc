package vector

import "errors"

var (
	// ErrNotFound is returned when an entry is not found in the index.
	ErrNotFound = errors.New("entry not found")

	// ErrEmbedding is returned when embedding generation fails.
	ErrEmbedding = errors.New("embedding failed")

	// ErrDimensions is returned when an entry's embedding does not match the
	// index's configured dimensionality.
	ErrDimensions = errors.New("embedding dimensions mismatch")
)
