package pricing

import "fmt"

// LinkStatus is the lifecycle state of an ISO↔cost-table link.
// Only StatusValidated is billable; cost snapshots exist exclusively while a
// link holds that status.
type LinkStatus string

const (
	StatusDraft             LinkStatus = "draft"
	StatusPendingValidation LinkStatus = "pending_validation"
	StatusValidated         LinkStatus = "validated"
	StatusRejected          LinkStatus = "rejected"
	StatusInactive          LinkStatus = "inactive"
)

// transitions is the exhaustive adjacency table. Any (from, to) pair not
// listed here is an invalid transition — there is no wildcard path and no
// self-transition.
var transitions = map[LinkStatus][]LinkStatus{
	StatusDraft:             {StatusValidated, StatusPendingValidation},
	StatusPendingValidation: {StatusValidated, StatusRejected, StatusDraft},
	StatusValidated:         {StatusInactive},
	StatusRejected:          {StatusDraft},
	StatusInactive:          {StatusValidated},
}

func (s LinkStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Billable reports whether snapshots may exist for a link in this status.
func (s LinkStatus) Billable() bool { return s == StatusValidated }

// ValidTargets returns the statuses reachable from s, in table order.
// Clients use this list to render the actions available on a link.
func ValidTargets(s LinkStatus) []LinkStatus {
	targets := transitions[s]
	out := make([]LinkStatus, len(targets))
	copy(out, targets)
	return out
}

// CanTransition reports whether (from, to) is in the adjacency table.
func CanTransition(from, to LinkStatus) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// TransitionError reports an illegal status transition together with the
// machine-readable context the caller needs to pick a legal one.
type TransitionError struct {
	Current LinkStatus
	Target  LinkStatus
	Valid   []LinkStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s (valid targets: %v)", e.Current, e.Target, e.Valid)
}

// CheckTransition returns nil when (from, to) is legal, or a *TransitionError
// carrying the current status and its full valid-target list.
func CheckTransition(from, to LinkStatus) error {
	if CanTransition(from, to) {
		return nil
	}
	return &TransitionError{Current: from, Target: to, Valid: ValidTargets(from)}
}
