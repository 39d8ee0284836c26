// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package recall is an adaptive retrieval and ranking engine: given a
// free-text query it returns a ranked, diversified, token-budgeted set of
// relevant snippets from a workspace corpus. System wires the storage
// backend, embedding provider and engine together; callers who want to
// compose those pieces themselves can use the subpackages directly.
package recall

import (
	"log/slog"

	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/ai/cache"
	"github.com/poiesic/recall/ai/openai"
	"github.com/poiesic/recall/engine"
	"github.com/poiesic/recall/storage"
	"github.com/poiesic/recall/storage/badger"
)

// System bundles the persistent corpus, the query cache, the embedding
// provider and a ready-to-use recall engine.
type System struct {
	backend     *badger.Backend
	snippetRepo storage.SnippetRepository
	cacheRepo   storage.CacheRepository
	provider    ai.EmbeddingProvider
	embedCache  *cache.Embedder
	engine      *engine.Engine
	logger      *slog.Logger
}

// SystemOption configures a System.
type SystemOption func(*systemOptions)

type systemOptions struct {
	aiConfig   *ai.Config
	provider   ai.EmbeddingProvider
	engineOpts []engine.Option
}

// WithAIConfig overrides the embedding provider configuration.
func WithAIConfig(config *ai.Config) SystemOption {
	return func(o *systemOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider injects a pre-built embedding provider instead of the
// default OpenAI-compatible one. Used by tests and embedders that live
// in-process.
func WithProvider(provider ai.EmbeddingProvider) SystemOption {
	return func(o *systemOptions) {
		o.provider = provider
	}
}

// WithEngineOptions forwards options to the underlying engine.
func WithEngineOptions(opts ...engine.Option) SystemOption {
	return func(o *systemOptions) {
		o.engineOpts = append(o.engineOpts, opts...)
	}
}

// NewSystem opens the store at filePath and assembles a recall engine on
// top of it. Pass inMemory=true for an ephemeral store.
func NewSystem(filePath string, inMemory bool, opts ...SystemOption) (*System, error) {
	// Apply options
	options := &systemOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, inMemory)
	if err != nil {
		return nil, err
	}

	// Create snippet repository
	snippetRepo, err := badger.NewSnippetRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create persistent query-cache repository
	cacheRepo, err := badger.NewCacheRepository(backend)
	if err != nil {
		snippetRepo.Close()
		backend.Close()
		return nil, err
	}

	// Create embedding provider with configured settings
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			cacheRepo.Close()
			snippetRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	// Wrap the embedder with a normalized-text cache
	embedCache, err := cache.NewEmbedder(provider.Embedder(), options.aiConfig.CacheCapacity)
	if err != nil {
		provider.Close()
		cacheRepo.Close()
		snippetRepo.Close()
		backend.Close()
		return nil, err
	}

	engineOpts := append([]engine.Option{engine.WithCache(cacheRepo)}, options.engineOpts...)
	eng, err := engine.NewEngine(snippetRepo, &cachedProvider{provider: provider, embedder: embedCache}, engineOpts...)
	if err != nil {
		embedCache.Close()
		provider.Close()
		cacheRepo.Close()
		snippetRepo.Close()
		backend.Close()
		return nil, err
	}

	return &System{
		backend:     backend,
		snippetRepo: snippetRepo,
		cacheRepo:   cacheRepo,
		provider:    provider,
		embedCache:  embedCache,
		engine:      eng,
		logger:      slog.Default(),
	}, nil
}

// cachedProvider presents the cache-wrapped embedder through the provider
// contract the engine expects.
type cachedProvider struct {
	provider ai.EmbeddingProvider
	embedder ai.Embedder
}

func (p *cachedProvider) Embedder() ai.Embedder { return p.embedder }
func (p *cachedProvider) Close() error          { return p.provider.Close() }

// Engine returns the assembled recall engine.
func (s *System) Engine() *engine.Engine {
	return s.engine
}

// SnippetRepository exposes the corpus write surface for seeding and
// feedback updates.
func (s *System) SnippetRepository() storage.SnippetRepository {
	return s.snippetRepo
}

// Close releases all resources. The system should not be used afterwards.
func (s *System) Close() error {
	s.embedCache.Close()
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing embedding provider", "err", err)
	}
	if err := s.cacheRepo.Close(); err != nil {
		s.logger.Error("error closing cache repository", "err", err)
		return err
	}
	if err := s.snippetRepo.Close(); err != nil {
		s.logger.Error("error closing snippet repository", "err", err)
		return err
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
