package app

import (
	"context"
	"time"

	"github.com/example/mwo/internal/core/order"
	"github.com/example/mwo/internal/ports/primary"
	"github.com/example/mwo/internal/ports/secondary"
)

// CancelOrder cancels an open order. A second cancellation fails and leaves
// the original cancellation fields in place.
func (s *OrderServiceImpl) CancelOrder(ctx context.Context, req primary.CancelOrderRequest) (*primary.Order, error) {
	rec, err := execute(ctx, s, "cancel_order", req.ActorID, func(ctx context.Context, now time.Time) (*secondary.OrderRecord, error) {
		if err := order.ValidateCancel(req.Reason, req.ActorID); err != nil {
			return nil, err
		}

		o, err := s.orders.GetByID(ctx, req.OrderID)
		if err != nil {
			return nil, err
		}
		r := order.CanCancelOrder(order.CancelOrderContext{
			OrderNumber: o.OrderNumber,
			Status:      order.Status(o.Status),
			IsCancelled: o.IsCancelled,
		})
		if !r.Allowed {
			return nil, r.Error()
		}

		h, err := applyTransition(ctx, o, order.StatusCancelled, now, req.Reason)
		if err != nil {
			return nil, err
		}
		o.IsCancelled = true
		o.CancelledAt = timeRef(now)
		o.CancelledByUserID = req.ActorID
		o.CancellationReason = req.Reason

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
