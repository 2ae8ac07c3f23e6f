package app

import (
	"context"
	"time"

	"github.com/example/mwo/internal/core/order"
	"github.com/example/mwo/internal/ctxutil"
	"github.com/example/mwo/internal/ports/primary"
	"github.com/example/mwo/internal/ports/secondary"
)

// AssignOrder (re)assigns an order. Draft and submitted orders advance to
// assigned; the first assignment after submission records the response time.
func (s *OrderServiceImpl) AssignOrder(ctx context.Context, req primary.AssignOrderRequest) (*primary.Order, error) {
	rec, err := execute(ctx, s, "assign_order", req.ActorID, func(ctx context.Context, now time.Time) (*secondary.OrderRecord, error) {
		if err := order.ValidateAssign(req.DepartmentID, req.UserID, req.Reason, req.ActorID); err != nil {
			return nil, err
		}

		o, err := s.orders.GetByID(ctx, req.OrderID)
		if err != nil {
			return nil, err
		}

		gctx := order.AssignOrderContext{
			OrderNumber:  o.OrderNumber,
			Status:       order.Status(o.Status),
			HotelID:      o.HotelID,
			DepartmentID: req.DepartmentID,
			UserID:       req.UserID,
		}
		dept, err := s.refs.GetDepartment(ctx, req.DepartmentID)
		if gctx.DepartmentExists, err = found(err); err != nil {
			return nil, err
		}
		if gctx.DepartmentExists {
			gctx.DepartmentHotelID = dept.HotelID
		}
		if req.UserID != 0 {
			user, err := s.refs.GetUser(ctx, req.UserID)
			if gctx.UserExists, err = found(err); err != nil {
				return nil, err
			}
			if gctx.UserExists {
				gctx.UserAvailable = user.IsAvailable && user.IsActive
			}
		}
		if r := order.CanAssignOrder(gctx); !r.Allowed {
			return nil, r.Error()
		}

		entry := &secondary.AssignmentHistoryRecord{
			OrderID:          o.ID,
			FromDepartmentID: o.AssignedDepartmentID,
			ToDepartmentID:   req.DepartmentID,
			FromUserID:       o.AssignedToUserID,
			ToUserID:         req.UserID,
			AssignedByUserID: req.ActorID,
			AssignedAt:       now,
			Reason:           req.Reason,
			CommandID:        ctxutil.CommandIDFromContext(ctx),
		}

		var transitions []*secondary.StatusHistoryRecord
		if order.ShouldAutoAdvanceOnAssign(order.Status(o.Status)) {
			h, err := applyTransition(ctx, o, order.StatusAssigned, now, "Order assigned")
			if err != nil {
				return nil, err
			}
			transitions = append(transitions, h)
		}

		o.AssignedDepartmentID = req.DepartmentID
		o.AssignedToUserID = req.UserID
		o.AssignedByUserID = req.ActorID
		o.AssignedAt = timeRef(now)
		o.AssignmentStatus = string(order.AssignmentAssigned)
		if o.SubmittedAt != nil && o.ResponseTimeMinutes == nil {
			minutes := order.ElapsedMinutes(*o.SubmittedAt, now)
			o.ResponseTimeMinutes = &minutes
		}
		o.UpdatedAt = now

		if err := s.save(ctx, o, transitions...); err != nil {
			return nil, err
		}
		if err := s.history.AppendAssignment(ctx, entry); err != nil {
			return nil, err
		}
		return o, nil
	})
	if err != nil {
		return nil, err
	}
	return toOrder(rec, s.now()), nil
}
