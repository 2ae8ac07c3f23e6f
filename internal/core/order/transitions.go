package order

// transitions is the single source of truth for status legality.
var transitions = map[Status][]Status{
	StatusDraft:         {StatusSubmitted, StatusAssigned, StatusCancelled},
	StatusSubmitted:     {StatusAssigned, StatusScheduled, StatusCancelled},
	StatusAssigned:      {StatusInProgress, StatusScheduled, StatusCancelled},
	StatusScheduled:     {StatusAssigned, StatusInProgress, StatusCancelled},
	StatusInProgress:    {StatusOnHold, StatusAwaitingParts, StatusExternalWork, StatusCompleted, StatusRejected, StatusCancelled},
	StatusOnHold:        {StatusInProgress, StatusCancelled},
	StatusAwaitingParts: {StatusInProgress, StatusCancelled},
	StatusExternalWork:  {StatusInProgress, StatusCancelled},
	StatusCompleted:     {StatusVerified, StatusReopened, StatusClosed},
	// No cancel edge: the requester has already accepted the work.
	StatusVerified:      {StatusClosed, StatusReopened},
	StatusReopened:      {StatusInProgress, StatusCompleted, StatusCancelled},
	StatusRejected:      {StatusReopened, StatusClosed, StatusCancelled},
	StatusClosed:        {},
	StatusCancelled:     {},
}

// IsAllowed reports whether the table has an edge from -> to.
func IsAllowed(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedTargets returns the statuses reachable from s in one step.
func AllowedTargets(s Status) []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// IsTerminal reports whether s has no outgoing edges.
func IsTerminal(s Status) bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// IsOpen reports whether work on an order in status s is still outstanding.
// Resolved (completed, verified) and terminal orders are not open.
func IsOpen(s Status) bool {
	switch s {
	case StatusCompleted, StatusVerified, StatusClosed, StatusCancelled:
		return false
	}
	return true
}

// OpenStatuses lists every status for which IsOpen holds.
func OpenStatuses() []Status {
	var out []Status
	for _, s := range AllStatuses {
		if IsOpen(s) {
			out = append(out, s)
		}
	}
	return out
}
