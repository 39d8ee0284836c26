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

import (
	"fmt"
	"time"
)

// ValidateSnippet validates a Snippet according to domain rules.
//
// Validation rules:
//   - WorkspaceId must not be empty
//   - Text must not be empty
//   - Source must be one of memory, doc, ops
//   - LastUsedAt must not be in the future
//
// NOT validated (populated by storage):
//   - ID (0 is valid before content hashing)
//   - UseCount and FeedbackWeight (maintained by usage tracking)
func ValidateSnippet(snippet *Snippet) error {
	if snippet == nil {
		return fmt.Errorf("%w: snippet is nil", ErrInvalidSnippet)
	}

	if snippet.WorkspaceId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSnippet, ErrWorkspaceRequired)
	}

	if snippet.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSnippet, ErrEmptyText)
	}

	if err := ValidateSource(snippet.Source); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSnippet, err)
	}

	if !IsValidTimestamp(snippet.LastUsedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidSnippet, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateSource validates that a snippet source has a known value.
func ValidateSource(source string) error {
	switch source {
	case SourceMemory, SourceDoc, SourceOps:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSource, source)
	}
}

// IsValidTimestamp reports whether a timestamp is usable for recency scoring.
// The zero value is valid and means "never used".
func IsValidTimestamp(t time.Time) bool {
	if t.IsZero() {
		return true
	}
	// Allow a small skew for clocks that are slightly ahead.
	return !t.After(time.Now().Add(time.Minute))
}
