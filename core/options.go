package core

// Recall option defaults.
const (
	DefaultTopK         = 8
	DefaultMMRLambda    = 0.65
	DefaultBudgetTokens = 1200
)

// RecallOpts holds per-call retrieval options. A value is immutable for the
// duration of a call once normalized.
type RecallOpts struct {
	// WorkspaceId scopes the query to a single corpus. Required.
	WorkspaceId string

	// TopK caps the number of returned items. Default 8.
	TopK int

	// Strategy forces a retrieval strategy. StrategyAuto defers to the policy.
	Strategy Strategy

	// UseMMR enables diversity-aware selection. Default true.
	UseMMR bool

	// MMRLambda trades relevance against diversity in MMR. Default 0.65.
	MMRLambda float64

	// BudgetTokens caps the cumulative token cost of returned items.
	// 0 disables budget fitting. Default 1200.
	BudgetTokens int

	// MinRelevance drops items scoring below this value after reranking.
	// Negative values disable the filter.
	MinRelevance float64
}

// DefaultRecallOpts returns options with package defaults for the workspace.
func DefaultRecallOpts(workspaceId string) RecallOpts {
	return RecallOpts{
		WorkspaceId:  workspaceId,
		TopK:         DefaultTopK,
		Strategy:     StrategyAuto,
		UseMMR:       true,
		MMRLambda:    DefaultMMRLambda,
		BudgetTokens: DefaultBudgetTokens,
		MinRelevance: -1,
	}
}

// Normalize replaces out-of-range numeric fields with defaults and resolves an
// empty strategy to auto. It does not touch UseMMR: a false value is a valid
// caller choice.
func (o *RecallOpts) Normalize() {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.MMRLambda <= 0 || o.MMRLambda > 1 {
		o.MMRLambda = DefaultMMRLambda
	}
	if o.Strategy == "" {
		o.Strategy = StrategyAuto
	}
	if o.BudgetTokens < 0 {
		o.BudgetTokens = 0
	}
}

// Validate checks that the options identify a workspace and a known strategy.
func (o *RecallOpts) Validate() error {
	if o.WorkspaceId == "" {
		return ErrWorkspaceRequired
	}
	switch o.Strategy {
	case StrategyAuto, StrategyDense, StrategySparse, StrategyHybrid:
		return nil
	default:
		return ErrInvalidStrategy
	}
}
