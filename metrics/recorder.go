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

// Package metrics records per-recall telemetry. The Recorder keeps a
// bounded in-memory window and computes latency percentiles and cache-hit
// rates from it; PrometheusSink additionally exports the same signal to a
// Prometheus registry. Both are best-effort collaborators: a failing sink
// must never fail a recall.
package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/poiesic/recall/core"
)

// Entry is one recorded recall operation.
type Entry struct {
	Strategy  core.Strategy
	TookMs    float64
	CacheHit  bool
	ItemCount int
	At        time.Time
}

// Sink consumes recall telemetry. Implementations must be safe for
// concurrent use.
type Sink interface {
	Record(entry Entry) error
}

// DefaultWindowSize bounds the Recorder's in-memory history.
const DefaultWindowSize = 1024

// Snapshot summarizes the recorded window.
type Snapshot struct {
	Count        int
	CacheHits    int
	CacheHitRate float64
	LatencyP50Ms float64
	LatencyP95Ms float64
	LatencyP99Ms float64
	ByStrategy   map[core.Strategy]int
}

// Recorder is an in-memory ring-buffer Sink. The zero value is not
// usable; construct with NewRecorder.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	filled  bool
}

// NewRecorder builds a Recorder holding the last windowSize entries.
// Non-positive windowSize falls back to DefaultWindowSize.
func NewRecorder(windowSize int) *Recorder {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	return &Recorder{entries: make([]Entry, windowSize)}
}

// Record stores entry, evicting the oldest once the window is full. Never
// returns an error.
func (r *Recorder) Record(entry Entry) error {
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[r.next] = entry
	r.next++
	if r.next == len(r.entries) {
		r.next = 0
		r.filled = true
	}
	return nil
}

// Snapshot summarizes the current window. Percentiles use the
// nearest-rank method over recorded latencies.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	window := r.window()
	r.mu.Unlock()

	snap := Snapshot{
		Count:      len(window),
		ByStrategy: make(map[core.Strategy]int),
	}
	if len(window) == 0 {
		return snap
	}

	latencies := make([]float64, 0, len(window))
	for _, e := range window {
		if e.CacheHit {
			snap.CacheHits++
		}
		snap.ByStrategy[e.Strategy]++
		latencies = append(latencies, e.TookMs)
	}
	snap.CacheHitRate = float64(snap.CacheHits) / float64(snap.Count)

	sort.Float64s(latencies)
	snap.LatencyP50Ms = percentile(latencies, 0.50)
	snap.LatencyP95Ms = percentile(latencies, 0.95)
	snap.LatencyP99Ms = percentile(latencies, 0.99)
	return snap
}

// window copies the live portion of the ring. Caller holds r.mu.
func (r *Recorder) window() []Entry {
	if !r.filled {
		out := make([]Entry, r.next)
		copy(out, r.entries[:r.next])
		return out
	}
	out := make([]Entry, len(r.entries))
	n := copy(out, r.entries[r.next:])
	copy(out[n:], r.entries[:r.next])
	return out
}

// percentile is nearest-rank over an ascending-sorted slice.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(q*float64(len(sorted))+0.5) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}
