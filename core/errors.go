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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidSnippet indicates a Snippet failed validation.
	ErrInvalidSnippet = errors.New("invalid snippet")

	// ErrEmptyText indicates the Text field is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrInvalidSource indicates an unknown snippet source.
	ErrInvalidSource = errors.New("invalid snippet source")

	// ErrWorkspaceRequired indicates a missing workspace identifier.
	ErrWorkspaceRequired = errors.New("workspace id required")

	// ErrInvalidStrategy indicates an unknown retrieval strategy.
	ErrInvalidStrategy = errors.New("invalid retrieval strategy")
)
