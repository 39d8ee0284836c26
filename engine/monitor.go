package engine

import "github.com/poiesic/recall/core"

// RecallMonitor provides hooks to observe the recall pipeline.
// Implement this interface to track intermediate steps and results of a
// recall.
type RecallMonitor interface {
	Start(query string)
	StrategySelected(strategy core.Strategy, confidence float64)
	CacheProbe(key core.ID, hit bool)
	CorpusFetched(size int)
	Retrieved(candidates []core.CandidateItem)
	Reranked(before, after int)
	Finish(result *core.RecallResult)
}

// noopMonitor is a no-op implementation of RecallMonitor
type noopMonitor struct{}

var _ RecallMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                            {}
func (n *noopMonitor) StrategySelected(_ core.Strategy, _ float64) {}
func (n *noopMonitor) CacheProbe(_ core.ID, _ bool)              {}
func (n *noopMonitor) CorpusFetched(_ int)                       {}
func (n *noopMonitor) Retrieved(_ []core.CandidateItem)          {}
func (n *noopMonitor) Reranked(_, _ int)                         {}
func (n *noopMonitor) Finish(_ *core.RecallResult)               {}
