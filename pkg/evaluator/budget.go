package evaluator

// DefaultMaxDepth bounds Apply nesting when no explicit limit is configured.
const DefaultMaxDepth int64 = 10000

// Budget holds the resource limits for an evaluation. Nil fields use the
// defaults: DefaultMaxDepth for MaxDepth, unlimited for the rest.
type Budget struct {
	MaxDepth *int64
	TimeMs   *int64
	MaxSteps *int64
}

func (b Budget) maxDepth() int64 {
	if b.MaxDepth != nil && *b.MaxDepth > 0 {
		return *b.MaxDepth
	}
	return DefaultMaxDepth
}

// BudgetTracker tracks resource consumption during evaluation.
type BudgetTracker struct {
	Steps    int64 `json:"steps"`
	Applies  int64 `json:"applies"`
	Depth    int64 `json:"-"`
	MaxDepth int64 `json:"maxDepth"`
}
