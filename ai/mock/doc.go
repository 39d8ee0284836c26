// Package mock provides test doubles for the ai interfaces.
//
// MockEmbedder generates deterministic vectors from text hashes so that
// semantic-search tests are reproducible without a network dependency.
// Behavior can be overridden per test via the exported function fields.
package mock
