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

// Package rerank turns raw retriever candidates into the final ranked
// result. It blends four signals per candidate (retriever similarity,
// accumulated feedback weight, recency of use, novelty) into one score,
// then optionally applies Maximal Marginal Relevance so the top-K slice
// is diverse rather than redundant.
package rerank
