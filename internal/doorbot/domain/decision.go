package domain

// DecisionOutcome is the terminal state of a scan or permission check.
type DecisionOutcome int

const (
	// DecisionAllowed: tag known, member active, required permission held.
	DecisionAllowed DecisionOutcome = iota
	// DecisionNotFound: no member holds this tag.
	DecisionNotFound
	// DecisionInactive: tag known but the member is deactivated.
	DecisionInactive
	// DecisionUnauthorized: member active but lacks the required permission.
	DecisionUnauthorized
)

// EntryDecision is the outcome of a single scan request. MemberName is
// populated whenever the tag resolved, deny or allow, so audit review can
// name the person involved.
type EntryDecision struct {
	Outcome     DecisionOutcome
	MemberName  string
	IsFoundTag  bool
	IsActiveTag bool
}

// Allowed reports whether the decision grants entry.
func (d EntryDecision) Allowed() bool { return d.Outcome == DecisionAllowed }
