package app

import (
	"context"
	"time"

	"github.com/example/mwo/internal/core/order"
	"github.com/example/mwo/internal/ports/primary"
	"github.com/example/mwo/internal/ports/secondary"
)

// VerifyOrder records the requester's verdict on completed work. Approval
// verifies the order; rejection reopens it.
func (s *OrderServiceImpl) VerifyOrder(ctx context.Context, req primary.VerifyOrderRequest) (*primary.Order, error) {
	rec, err := execute(ctx, s, "verify_order", req.ActorID, func(ctx context.Context, now time.Time) (*secondary.OrderRecord, error) {
		if err := order.Validate(order.RequiredID("actor_id", req.ActorID)); err != nil {
			return nil, err
		}

		o, err := s.orders.GetByID(ctx, req.OrderID)
		if err != nil {
			return nil, err
		}
		// State and requester checks come before the payload so a
		// non-requester is refused whatever they send.
		r := order.CanVerifyOrder(order.VerifyOrderContext{
			OrderNumber:     o.OrderNumber,
			Status:          order.Status(o.Status),
			ActorID:         req.ActorID,
			CreatedByUserID: o.CreatedByUserID,
		})
		if !r.Allowed {
			return nil, r.Error()
		}
		if err := order.ValidateVerify(req.Approved, req.Rating, req.Feedback, req.ActorID); err != nil {
			return nil, err
		}

		var h *secondary.StatusHistoryRecord
		if req.Approved {
			h, err = applyTransition(ctx, o, order.StatusVerified, now, "Work approved by requester")
			if err != nil {
				return nil, err
			}
			o.IsApprovedByRequester = true
			o.ApprovedAt = timeRef(now)
			o.ApprovedByUserID = req.ActorID
			o.Rating = req.Rating
		} else {
			h, err = applyTransition(ctx, o, order.StatusReopened, now, "Work rejected by requester: "+req.Feedback)
			if err != nil {
				return nil, err
			}
			o.IsRejected = true
			o.RejectedAt = timeRef(now)
			o.RejectedByUserID = req.ActorID
			o.RejectionReason = req.Feedback
		}
		o.RequesterFeedback = req.Feedback

		if err := s.save(ctx, o, h); err != nil {
			return nil, err
		}
		return o, nil
	})
	if err != nil {
		return nil, err
	}
	return toOrder(rec, s.now()), nil
}
