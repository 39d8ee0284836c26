// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package storage provides the storage abstraction layer for the recall
// engine.
//
// Two capabilities are defined, both as constructor-injected interfaces so
// the retrieval core never assumes a particular backend or query language:
//
//   - SnippetRepository: the snippet corpus, ordered by recency
//   - CacheRepository: the TTL query cache
//
// # Implementations
//
//   - storage/badger: persistent BadgerDB repositories (also usable
//     in-memory for tests)
//   - storage/ristretto: in-process TTL cache repository
//
// # Constructor Return Type Pattern
//
// Public constructors return interface types to enforce abstraction:
//
//	repo, err := badger.NewSnippetRepository(backend)  // storage.SnippetRepository
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support concurrent
// access from multiple goroutines. The engine issues idempotent upserts only.
//
// # Failure Semantics
//
// SnippetRepository failures propagate to the caller. CacheRepository
// failures must be absorbed by callers and degrade to cache-miss behavior;
// cache unavailability never fails a recall.
package storage
