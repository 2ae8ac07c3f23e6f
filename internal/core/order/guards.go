package order

import (
	"fmt"

	"github.com/example/mwo/internal/core/failure"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Kind    error // failure sentinel describing why the guard refused
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	kind := r.Kind
	if kind == nil {
		kind = failure.ErrValidationFailed
	}
	return fmt.Errorf("%w: %s", kind, r.Reason)
}

func allow() GuardResult {
	return GuardResult{Allowed: true}
}

func deny(kind error, format string, args ...any) GuardResult {
	return GuardResult{Allowed: false, Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// CreateOrderContext provides context for order creation guards.
type CreateOrderContext struct {
	HotelID           int64
	HotelExists       bool
	HotelActive       bool
	DepartmentID      int64
	DepartmentExists  bool
	DepartmentHotelID int64
	LocationID        int64
	LocationExists    bool
	LocationHotelID   int64
	ItemID            int64 // optional, 0 if not specified
	ItemExists        bool  // only checked if ItemID != 0
	ItemHotelID       int64
}

// CanCreateOrder evaluates whether an order can be opened.
// Rules:
// - Hotel must exist and be active
// - Department and location must exist and belong to the hotel
// - Item must exist and belong to the hotel (if item_id provided)
func CanCreateOrder(ctx CreateOrderContext) GuardResult {
	if !ctx.HotelExists {
		return deny(failure.ErrNotFound, "hotel %d not found", ctx.HotelID)
	}
	if !ctx.HotelActive {
		return deny(failure.ErrValidationFailed, "hotel %d is not active", ctx.HotelID)
	}
	if !ctx.DepartmentExists {
		return deny(failure.ErrNotFound, "department %d not found", ctx.DepartmentID)
	}
	if ctx.DepartmentHotelID != ctx.HotelID {
		return deny(failure.ErrValidationFailed, "department %d does not belong to hotel %d", ctx.DepartmentID, ctx.HotelID)
	}
	if !ctx.LocationExists {
		return deny(failure.ErrNotFound, "location %d not found", ctx.LocationID)
	}
	if ctx.LocationHotelID != ctx.HotelID {
		return deny(failure.ErrValidationFailed, "location %d does not belong to hotel %d", ctx.LocationID, ctx.HotelID)
	}
	if ctx.ItemID != 0 {
		if !ctx.ItemExists {
			return deny(failure.ErrNotFound, "item %d not found", ctx.ItemID)
		}
		if ctx.ItemHotelID != ctx.HotelID {
			return deny(failure.ErrValidationFailed, "item %d does not belong to hotel %d", ctx.ItemID, ctx.HotelID)
		}
	}
	return allow()
}

// TransitionContext provides context for a status change.
type TransitionContext struct {
	OrderNumber string
	From        Status
	To          Status
}

// CanTransition evaluates a status edge against the transition table.
func CanTransition(ctx TransitionContext) GuardResult {
	if !IsAllowed(ctx.From, ctx.To) {
		return deny(failure.ErrInvalidStateTransition,
			"order %s cannot move from %s to %s", ctx.OrderNumber, ctx.From, ctx.To)
	}
	return allow()
}

// ChangeStatusContext provides context for the generic status command.
type ChangeStatusContext struct {
	OrderNumber       string
	From              Status
	To                Status
	HasScheduledStart bool
}

// CanChangeStatus evaluates the generic status command.
// Rules:
// - Cancellation and verification carry their own data and have dedicated commands
// - Scheduling requires a scheduled start date
// - The edge must exist in the transition table
func CanChangeStatus(ctx ChangeStatusContext) GuardResult {
	switch ctx.To {
	case StatusCancelled:
		return deny(failure.ErrValidationFailed, "use the cancel command to cancel order %s", ctx.OrderNumber)
	case StatusVerified:
		return deny(failure.ErrValidationFailed, "use the verify command to verify order %s", ctx.OrderNumber)
	}
	if r := CanTransition(TransitionContext{OrderNumber: ctx.OrderNumber, From: ctx.From, To: ctx.To}); !r.Allowed {
		return r
	}
	if ctx.To == StatusScheduled && !ctx.HasScheduledStart {
		return deny(failure.ErrValidationFailed, "scheduled start date is required to schedule order %s", ctx.OrderNumber)
	}
	return allow()
}

// UpdateOrderContext provides context for field updates.
type UpdateOrderContext struct {
	OrderNumber     string
	Status          Status
	HotelID         int64
	LocationID      int64 // 0 if unchanged
	LocationExists  bool
	LocationHotelID int64
	ItemID          int64 // 0 if unchanged
	ItemExists      bool
	ItemHotelID     int64
}

// CanUpdateOrder evaluates whether order fields can be edited.
// Rules:
// - Completed and closed orders are frozen
// - New location/item must exist and belong to the order's hotel
func CanUpdateOrder(ctx UpdateOrderContext) GuardResult {
	if ctx.Status == StatusCompleted || ctx.Status == StatusClosed {
		return deny(failure.ErrInvalidStateTransition,
			"order %s cannot be updated in status %s", ctx.OrderNumber, ctx.Status)
	}
	if ctx.LocationID != 0 {
		if !ctx.LocationExists {
			return deny(failure.ErrNotFound, "location %d not found", ctx.LocationID)
		}
		if ctx.LocationHotelID != ctx.HotelID {
			return deny(failure.ErrValidationFailed, "location %d does not belong to hotel %d", ctx.LocationID, ctx.HotelID)
		}
	}
	if ctx.ItemID != 0 {
		if !ctx.ItemExists {
			return deny(failure.ErrNotFound, "item %d not found", ctx.ItemID)
		}
		if ctx.ItemHotelID != ctx.HotelID {
			return deny(failure.ErrValidationFailed, "item %d does not belong to hotel %d", ctx.ItemID, ctx.HotelID)
		}
	}
	return allow()
}

// AssignOrderContext provides context for assignment guards.
type AssignOrderContext struct {
	OrderNumber       string
	Status            Status
	HotelID           int64
	DepartmentID      int64
	DepartmentExists  bool
	DepartmentHotelID int64
	UserID            int64 // optional, 0 if department-only assignment
	UserExists        bool
	UserAvailable     bool
}

// CanAssignOrder evaluates whether an order can be (re)assigned.
// Rules:
// - Closed and cancelled orders cannot be assigned
// - Department must exist within the order's hotel
// - User must exist and be available (if user_id provided)
func CanAssignOrder(ctx AssignOrderContext) GuardResult {
	if ctx.Status == StatusClosed || ctx.Status == StatusCancelled {
		return deny(failure.ErrInvalidStateTransition,
			"order %s cannot be assigned in status %s", ctx.OrderNumber, ctx.Status)
	}
	if !ctx.DepartmentExists {
		return deny(failure.ErrNotFound, "department %d not found", ctx.DepartmentID)
	}
	if ctx.DepartmentHotelID != ctx.HotelID {
		return deny(failure.ErrValidationFailed, "department %d does not belong to hotel %d", ctx.DepartmentID, ctx.HotelID)
	}
	if ctx.UserID != 0 {
		if !ctx.UserExists {
			return deny(failure.ErrNotFound, "user %d not found", ctx.UserID)
		}
		if !ctx.UserAvailable {
			return deny(failure.ErrValidationFailed, "user %d is not available", ctx.UserID)
		}
	}
	return allow()
}

// ShouldAutoAdvanceOnAssign reports whether assignment moves the order to
// assigned as a side effect.
func ShouldAutoAdvanceOnAssign(s Status) bool {
	return s == StatusDraft || s == StatusSubmitted
}

// CompleteOrderContext provides context for completion guards.
type CompleteOrderContext struct {
	OrderNumber string
	Status      Status
}

// CanCompleteOrder evaluates whether an order can be completed.
// Rules:
// - Completed and closed orders cannot be completed again
// - Work must have started (not draft or submitted)
// - The edge to completed must exist in the transition table
func CanCompleteOrder(ctx CompleteOrderContext) GuardResult {
	switch ctx.Status {
	case StatusCompleted, StatusClosed:
		return deny(failure.ErrAlreadyTerminal, "order %s is already %s", ctx.OrderNumber, ctx.Status)
	case StatusDraft, StatusSubmitted:
		return deny(failure.ErrInvalidStateTransition,
			"order %s has not been started (current status: %s)", ctx.OrderNumber, ctx.Status)
	}
	return CanTransition(TransitionContext{OrderNumber: ctx.OrderNumber, From: ctx.Status, To: StatusCompleted})
}

// ConsumePartContext provides context for consuming one spare part line.
type ConsumePartContext struct {
	SparePartID    int64
	PartHotelID    int64
	OrderHotelID   int64
	QuantityOnHand int
	Quantity       int
}

// CanConsumePart evaluates a spare-part usage line against stock.
// Rules:
// - Part must belong to the order's hotel
// - Stock must cover the quantity (completion is rejected otherwise)
func CanConsumePart(ctx ConsumePartContext) GuardResult {
	if ctx.PartHotelID != ctx.OrderHotelID {
		return deny(failure.ErrValidationFailed,
			"spare part %d does not belong to hotel %d", ctx.SparePartID, ctx.OrderHotelID)
	}
	if ctx.QuantityOnHand < ctx.Quantity {
		return deny(failure.ErrValidationFailed,
			"insufficient stock for spare part %d: %d on hand, %d requested", ctx.SparePartID, ctx.QuantityOnHand, ctx.Quantity)
	}
	return allow()
}

// VerifyOrderContext provides context for requester verification guards.
type VerifyOrderContext struct {
	OrderNumber     string
	Status          Status
	ActorID         int64
	CreatedByUserID int64
}

// CanVerifyOrder evaluates whether the actor can approve or reject the work.
// Rules:
// - Order must be completed
// - Only the requester who opened the order may verify it
func CanVerifyOrder(ctx VerifyOrderContext) GuardResult {
	if ctx.Status != StatusCompleted {
		kind := failure.ErrInvalidStateTransition
		if ctx.Status == StatusVerified || IsTerminal(ctx.Status) {
			kind = failure.ErrAlreadyTerminal
		}
		return deny(kind, "can only verify completed orders (order %s status: %s)", ctx.OrderNumber, ctx.Status)
	}
	if ctx.ActorID != ctx.CreatedByUserID {
		return deny(failure.ErrPermissionDenied,
			"user %d did not request order %s and cannot verify it", ctx.ActorID, ctx.OrderNumber)
	}
	return allow()
}

// CancelOrderContext provides context for cancellation guards.
type CancelOrderContext struct {
	OrderNumber string
	Status      Status
	IsCancelled bool
}

// CanCancelOrder evaluates whether an order can be cancelled.
// Rules:
// - Order must not already be cancelled
// - Completed and closed orders cannot be cancelled
// - The edge to cancelled must exist in the transition table
func CanCancelOrder(ctx CancelOrderContext) GuardResult {
	if ctx.IsCancelled || ctx.Status == StatusCancelled {
		return deny(failure.ErrAlreadyTerminal, "order %s is already cancelled", ctx.OrderNumber)
	}
	if ctx.Status == StatusCompleted || ctx.Status == StatusClosed {
		return deny(failure.ErrInvalidStateTransition,
			"order %s cannot be cancelled in status %s", ctx.OrderNumber, ctx.Status)
	}
	return CanTransition(TransitionContext{OrderNumber: ctx.OrderNumber, From: ctx.Status, To: StatusCancelled})
}
