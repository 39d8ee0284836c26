package retrieval

import "errors"

var (
	// ErrEmbeddingFailure wraps an embedding-provider error. Not retried
	// here; retry policy belongs to the caller.
	ErrEmbeddingFailure = errors.New("embedding provider failed")

	// ErrDimensionMismatch means two vectors of different lengths were
	// compared. With one embedding model per deployment this should never
	// fire; it is a hard error when it does.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
