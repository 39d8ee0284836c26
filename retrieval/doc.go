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

// Package retrieval ranks a fetched candidate corpus against a query.
//
// Three rankers are provided. SparseRetriever scores candidates with BM25
// over a lightweight Unicode tokenization. DenseRetriever embeds the query
// and candidates through an ai.Embedder and ranks by cosine similarity.
// HybridRetriever runs both concurrently and fuses the two rankings, by
// reciprocal rank fusion by default or by adaptive weighted blending.
//
// All rankers operate on the corpus slice they are handed. Document
// statistics (IDF, average length) are computed over that fetched window,
// not over the full external store; the window is a recency-bounded
// approximation chosen for latency.
package retrieval
