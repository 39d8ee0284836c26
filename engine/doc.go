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

// Package engine orchestrates a recall: strategy selection, cache probe,
// corpus fetch, retrieval, reranking, cache store, metrics. One call runs
// the stages in that fixed order; a cache hit short-circuits after the
// probe. Collaborator failures split two ways: retrieval-path errors
// (embedding, corpus fetch) surface to the caller, while cache and
// metrics failures are logged and absorbed so they can never block a
// recall. An empty corpus is not an error; it yields an empty result
// with valid diagnostics.
package engine
