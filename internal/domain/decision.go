package domain

// Decision is the outcome of a single ads permission lookup.
type Decision int

const (
	DecisionIndeterminate Decision = iota
	DecisionGranted
	DecisionDenied
)

func (d Decision) String() string {
	switch d {
	case DecisionGranted:
		return "granted"
	case DecisionDenied:
		return "denied"
	default:
		return "indeterminate"
	}
}

// Allows collapses the decision for gating a mutation. Indeterminate never allows.
func (d Decision) Allows() bool {
	return d == DecisionGranted
}
