// Package order contains the pure business logic for maintenance orders:
// the status transition table, guards, input validation, SLA arithmetic,
// cost rollup and order-number formatting. Nothing here performs I/O.
package order

import "fmt"

// Status is the lifecycle status of a maintenance order.
type Status string

const (
	StatusDraft         Status = "draft"
	StatusSubmitted     Status = "submitted"
	StatusAssigned      Status = "assigned"
	StatusScheduled     Status = "scheduled"
	StatusInProgress    Status = "in_progress"
	StatusOnHold        Status = "on_hold"
	StatusAwaitingParts Status = "awaiting_parts"
	StatusExternalWork  Status = "external_work"
	StatusCompleted     Status = "completed"
	StatusVerified      Status = "verified"
	StatusReopened      Status = "reopened"
	StatusRejected      Status = "rejected"
	StatusClosed        Status = "closed"
	StatusCancelled     Status = "cancelled"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []Status{
	StatusDraft, StatusSubmitted, StatusAssigned, StatusScheduled,
	StatusInProgress, StatusOnHold, StatusAwaitingParts, StatusExternalWork,
	StatusCompleted, StatusVerified, StatusReopened, StatusRejected,
	StatusClosed, StatusCancelled,
}

// ParseStatus validates a raw status string.
func ParseStatus(s string) (Status, error) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Priority ranks the urgency of an order; SLA targets are keyed by it.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

var priorityRank = map[Priority]int{
	PriorityLow:      1,
	PriorityMedium:   2,
	PriorityHigh:     3,
	PriorityCritical: 4,
}

// Rank orders priorities from 1 (low) to 4 (critical); unknown is 0.
func (p Priority) Rank() int {
	return priorityRank[p]
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Type classifies the kind of work requested.
type Type string

const (
	TypeCorrective  Type = "corrective"
	TypePreventive  Type = "preventive"
	TypeInspection  Type = "inspection"
	TypeEmergency   Type = "emergency"
	TypeImprovement Type = "improvement"
)

// Valid reports whether t is a known order type.
func (t Type) Valid() bool {
	switch t {
	case TypeCorrective, TypePreventive, TypeInspection, TypeEmergency, TypeImprovement:
		return true
	}
	return false
}

// AssignmentStatus tracks whether an order has a responsible party.
type AssignmentStatus string

const (
	AssignmentNotAssigned AssignmentStatus = "not_assigned"
	AssignmentAssigned    AssignmentStatus = "assigned"
)
