package engine

import "errors"

var (
	// ErrSnippetRepositoryRequired is returned when creating an engine without a snippet repository.
	ErrSnippetRepositoryRequired = errors.New("snippet repository is required")

	// ErrProviderRequired is returned when creating an engine without an embedding provider.
	ErrProviderRequired = errors.New("embedding provider is required")

	// ErrQueryRequired is returned when a recall is invoked with an empty query.
	ErrQueryRequired = errors.New("query is required")

	// ErrCorpusFetch wraps a snippet repository failure during corpus fetch.
	ErrCorpusFetch = errors.New("corpus fetch failed")
)
