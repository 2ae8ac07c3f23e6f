package order

import "time"

// SLATarget is an active service-level configuration for a hotel/priority.
type SLATarget struct {
	HotelID               int64
	Priority              Priority
	ResponseTimeMinutes   int
	ResolutionTimeMinutes int
}

// ComputeDeadline returns createdAt plus the resolution target. A nil target
// means no configuration exists, which yields no deadline.
func ComputeDeadline(target *SLATarget, createdAt time.Time) (time.Time, bool) {
	if target == nil || target.ResolutionTimeMinutes <= 0 {
		return time.Time{}, false
	}
	return createdAt.Add(time.Duration(target.ResolutionTimeMinutes) * time.Minute), true
}

// BreachSnapshot is the minimal order state needed to judge an SLA breach.
type BreachSnapshot struct {
	Status      Status
	Deadline    *time.Time
	CompletedAt *time.Time
}

// IsBreached reports whether an open order has passed its deadline at now.
// Resolved orders are judged by CompletedLate at completion time instead.
func IsBreached(s BreachSnapshot, now time.Time) bool {
	if s.Deadline == nil || !IsOpen(s.Status) {
		return false
	}
	return now.After(*s.Deadline)
}

// CompletedLate reports whether a completion at completedAt missed deadline.
func CompletedLate(deadline *time.Time, completedAt time.Time) bool {
	return deadline != nil && completedAt.After(*deadline)
}

// ElapsedMinutes returns whole minutes from start to end, never negative.
func ElapsedMinutes(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start) / time.Minute)
}
