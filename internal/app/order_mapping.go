package app

import (
	"time"

	"github.com/example/mwo/internal/core/order"
	"github.com/example/mwo/internal/ports/primary"
	"github.com/example/mwo/internal/ports/secondary"
)

// toOrder maps a record to the port type. SLABreached is also true for an
// open order whose deadline passed before the sweep flagged it.
func toOrder(r *secondary.OrderRecord, now time.Time) *primary.Order {
	status := order.Status(r.Status)
	breached := r.IsSLABreached || order.IsBreached(order.BreachSnapshot{
		Status:      status,
		Deadline:    r.SLADeadline,
		CompletedAt: r.ActualCompletionDate,
	}, now)

	targets := order.AllowedTargets(status)
	allowed := make([]string, len(targets))
	for i, t := range targets {
		allowed[i] = string(t)
	}

	return &primary.Order{
		ID:                     r.ID,
		OrderNumber:            r.OrderNumber,
		HotelID:                r.HotelID,
		DepartmentID:           r.DepartmentID,
		AssignedDepartmentID:   r.AssignedDepartmentID,
		LocationID:             r.LocationID,
		ItemID:                 r.ItemID,
		Title:                  r.Title,
		Description:            r.Description,
		Priority:               r.Priority,
		Type:                   r.Type,
		Status:                 r.Status,
		AssignmentStatus:       r.AssignmentStatus,
		AllowedTransitions:     allowed,
		SubmittedAt:            r.SubmittedAt,
		ScheduledStartDate:     r.ScheduledStartDate,
		ActualStartDate:        r.ActualStartDate,
		ActualCompletionDate:   r.ActualCompletionDate,
		ExpectedCompletionDate: r.ExpectedCompletionDate,
		AssignedToUserID:       r.AssignedToUserID,
		AssignedByUserID:       r.AssignedByUserID,
		AssignedAt:             r.AssignedAt,
		SLADeadline:            r.SLADeadline,
		SLABreached:            breached,
		SLABreachedAt:          r.SLABreachedAt,
		ResponseTimeMinutes:    r.ResponseTimeMinutes,
		ResolutionTimeMinutes:  r.ResolutionTimeMinutes,
		EstimatedCost:          r.EstimatedCost,
		ActualCost:             r.ActualCost,
		LaborCost:              r.LaborCost,
		MaterialCost:           r.MaterialCost,
		CompletedByUserID:      r.CompletedByUserID,
		ResolutionNotes:        r.ResolutionNotes,
		RequiresFollowUp:       r.RequiresFollowUp,
		FollowUpDate:           r.FollowUpDate,
		IsApprovedByRequester:  r.IsApprovedByRequester,
		ApprovedAt:             r.ApprovedAt,
		ApprovedByUserID:       r.ApprovedByUserID,
		Rating:                 r.Rating,
		RequesterFeedback:      r.RequesterFeedback,
		IsRejected:             r.IsRejected,
		RejectedAt:             r.RejectedAt,
		RejectedByUserID:       r.RejectedByUserID,
		RejectionReason:        r.RejectionReason,
		IsCancelled:            r.IsCancelled,
		CancelledAt:            r.CancelledAt,
		CancelledByUserID:      r.CancelledByUserID,
		CancellationReason:     r.CancellationReason,
		IsUrgent:               r.IsUrgent,
		IsSafetyIssue:          r.IsSafetyIssue,
		IsGuestFacing:          r.IsGuestFacing,
		CreatedByUserID:        r.CreatedByUserID,
		CreatedAt:              r.CreatedAt,
		UpdatedAt:              r.UpdatedAt,
		Version:                r.Version,
	}
}

func toComment(r *secondary.CommentRecord) *primary.Comment {
	return &primary.Comment{
		ID:         r.ID,
		OrderID:    r.OrderID,
		UserID:     r.UserID,
		Comment:    r.Comment,
		IsInternal: r.IsInternal,
		CreatedAt:  r.CreatedAt,
	}
}

func toSLATarget(r *secondary.SLAConfigRecord) *primary.SLATarget {
	return &primary.SLATarget{
		HotelID:               r.HotelID,
		Priority:              r.Priority,
		ResponseTimeMinutes:   r.ResponseTimeMinutes,
		ResolutionTimeMinutes: r.ResolutionTimeMinutes,
		IsActive:              r.IsActive,
	}
}
