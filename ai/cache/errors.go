package cache

import "errors"

var (
	// ErrEmbedderRequired is returned when no inner embedder is provided.
	ErrEmbedderRequired = errors.New("inner embedder required")

	// ErrBatchSizeMismatch indicates the inner embedder returned the wrong
	// number of vectors for a batch.
	ErrBatchSizeMismatch = errors.New("embedding batch size mismatch")
)
