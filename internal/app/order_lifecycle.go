package app

import (
	"context"
	"time"

	"github.com/example/mwo/internal/core/failure"
	"github.com/example/mwo/internal/core/order"
	"github.com/example/mwo/internal/ctxutil"
	"github.com/example/mwo/internal/ports/primary"
	"github.com/example/mwo/internal/ports/secondary"
)

// CreateOrder opens a new order. The order number is drawn from the
// hotel's yearly sequence inside the same transaction as the insert.
func (s *OrderServiceImpl) CreateOrder(ctx context.Context, req primary.CreateOrderRequest) (*primary.Order, error) {
	rec, err := execute(ctx, s, "create_order", req.ActorID, func(ctx context.Context, now time.Time) (*secondary.OrderRecord, error) {
		in := order.CreateInput{
			HotelID:            req.HotelID,
			DepartmentID:       req.DepartmentID,
			LocationID:         req.LocationID,
			ItemID:             req.ItemID,
			Title:              req.Title,
			Description:        req.Description,
			Priority:           order.Priority(req.Priority),
			Type:               order.Type(req.Type),
			EstimatedCost:      req.EstimatedCost,
			ExpectedCompletion: req.ExpectedCompletion,
			ActorID:            req.ActorID,
		}
		if err := order.ValidateCreate(in, now); err != nil {
			return nil, err
		}

		gctx, hotel, err := s.createContext(ctx, req)
		if err != nil {
			return nil, err
		}
		if r := order.CanCreateOrder(gctx); !r.Allowed {
			return nil, r.Error()
		}

		year := now.Year()
		seq, err := s.sequence.Next(ctx, hotel.ID, year, order.NumberPrefix(hotel.Code, year))
		if err != nil {
			return nil, err
		}
		number, err := order.FormatNumber(hotel.Code, year, seq)
		if err != nil {
			return nil, failure.Validation(failure.Violation{Field: "order_number", Message: err.Error()})
		}

		o := &secondary.OrderRecord{
			OrderNumber:            number,
			HotelID:                req.HotelID,
			DepartmentID:           req.DepartmentID,
			LocationID:             req.LocationID,
			ItemID:                 req.ItemID,
			Title:                  req.Title,
			Description:            req.Description,
			Priority:               req.Priority,
			Type:                   req.Type,
			Status:                 string(order.StatusDraft),
			AssignmentStatus:       string(order.AssignmentNotAssigned),
			ExpectedCompletionDate: req.ExpectedCompletion,
			EstimatedCost:          req.EstimatedCost,
			IsUrgent:               req.IsUrgent,
			IsSafetyIssue:          req.IsSafetyIssue,
			IsGuestFacing:          req.IsGuestFacing,
			CreatedByUserID:        req.ActorID,
			CreatedAt:              now,
			UpdatedAt:              now,
		}
		target, err := s.slaTarget(ctx, req.HotelID, req.Priority)
		if err != nil {
			return nil, err
		}
		if deadline, ok := order.ComputeDeadline(target, now); ok {
			o.SLADeadline = &deadline
		}

		entries := []*secondary.StatusHistoryRecord{{
			ToStatus:        string(order.StatusDraft),
			ChangedByUserID: req.ActorID,
			ChangedAt:       now,
			Notes:           "Order created",
			CommandID:       ctxutil.CommandIDFromContext(ctx),
		}}
		if req.Submit {
			h, err := applyTransition(ctx, o, order.StatusSubmitted, now, "Order submitted")
			if err != nil {
				return nil, err
			}
			o.SubmittedAt = timeRef(now)
			entries = append(entries, h)
		}

		if err := s.orders.Create(ctx, o); err != nil {
			return nil, err
		}
		if err := s.appendStatus(ctx, o.ID, entries...); err != nil {
			return nil, err
		}
		return o, nil
	})
	if err != nil {
		return nil, err
	}
	return toOrder(rec, s.now()), nil
}

func (s *OrderServiceImpl) createContext(ctx context.Context, req primary.CreateOrderRequest) (order.CreateOrderContext, *secondary.HotelRecord, error) {
	gctx := order.CreateOrderContext{
		HotelID:      req.HotelID,
		DepartmentID: req.DepartmentID,
		LocationID:   req.LocationID,
		ItemID:       req.ItemID,
	}

	hotel, err := s.refs.GetHotel(ctx, req.HotelID)
	if gctx.HotelExists, err = found(err); err != nil {
		return gctx, nil, err
	}
	if gctx.HotelExists {
		gctx.HotelActive = hotel.IsActive
	}

	dept, err := s.refs.GetDepartment(ctx, req.DepartmentID)
	if gctx.DepartmentExists, err = found(err); err != nil {
		return gctx, nil, err
	}
	if gctx.DepartmentExists {
		gctx.DepartmentHotelID = dept.HotelID
	}

	loc, err := s.refs.GetLocation(ctx, req.LocationID)
	if gctx.LocationExists, err = found(err); err != nil {
		return gctx, nil, err
	}
	if gctx.LocationExists {
		gctx.LocationHotelID = loc.HotelID
	}

	if req.ItemID != 0 {
		item, err := s.refs.GetItem(ctx, req.ItemID)
		if gctx.ItemExists, err = found(err); err != nil {
			return gctx, nil, err
		}
		if gctx.ItemExists {
			gctx.ItemHotelID = item.HotelID
		}
	}
	return gctx, hotel, nil
}

// UpdateOrder edits descriptive fields. A priority change recomputes the SLA
// deadline from the creation time.
func (s *OrderServiceImpl) UpdateOrder(ctx context.Context, req primary.UpdateOrderRequest) (*primary.Order, error) {
	rec, err := execute(ctx, s, "update_order", req.ActorID, func(ctx context.Context, now time.Time) (*secondary.OrderRecord, error) {
		in := order.UpdateInput{
			Title:              req.Title,
			Description:        req.Description,
			LocationID:         req.LocationID,
			ItemID:             req.ItemID,
			ExpectedCompletion: req.ExpectedCompletion,
			IsUrgent:           req.IsUrgent,
			IsSafetyIssue:      req.IsSafetyIssue,
			IsGuestFacing:      req.IsGuestFacing,
			ActorID:            req.ActorID,
		}
		if req.Priority != nil {
			p := order.Priority(*req.Priority)
			in.Priority = &p
		}
		if err := order.ValidateUpdate(in); err != nil {
			return nil, err
		}

		o, err := s.orders.GetByID(ctx, req.OrderID)
		if err != nil {
			return nil, err
		}

		gctx := order.UpdateOrderContext{OrderNumber: o.OrderNumber, Status: order.Status(o.Status), HotelID: o.HotelID}
		if req.LocationID != nil {
			gctx.LocationID = *req.LocationID
			loc, err := s.refs.GetLocation(ctx, *req.LocationID)
			if gctx.LocationExists, err = found(err); err != nil {
				return nil, err
			}
			if gctx.LocationExists {
				gctx.LocationHotelID = loc.HotelID
			}
		}
		if req.ItemID != nil && *req.ItemID != 0 {
			gctx.ItemID = *req.ItemID
			item, err := s.refs.GetItem(ctx, *req.ItemID)
			if gctx.ItemExists, err = found(err); err != nil {
				return nil, err
			}
			if gctx.ItemExists {
				gctx.ItemHotelID = item.HotelID
			}
		}
		if r := order.CanUpdateOrder(gctx); !r.Allowed {
			return nil, r.Error()
		}

		if req.Title != nil {
			o.Title = *req.Title
		}
		if req.Description != nil {
			o.Description = *req.Description
		}
		if req.LocationID != nil {
			o.LocationID = *req.LocationID
		}
		if req.ItemID != nil {
			o.ItemID = *req.ItemID
		}
		if req.ExpectedCompletion != nil {
			o.ExpectedCompletionDate = req.ExpectedCompletion
		}
		if req.IsUrgent != nil {
			o.IsUrgent = *req.IsUrgent
		}
		if req.IsSafetyIssue != nil {
			o.IsSafetyIssue = *req.IsSafetyIssue
		}
		if req.IsGuestFacing != nil {
			o.IsGuestFacing = *req.IsGuestFacing
		}
		if req.Priority != nil && *req.Priority != o.Priority {
			o.Priority = *req.Priority
			target, err := s.slaTarget(ctx, o.HotelID, o.Priority)
			if err != nil {
				return nil, err
			}
			o.SLADeadline = nil
			if deadline, ok := order.ComputeDeadline(target, o.CreatedAt); ok {
				o.SLADeadline = &deadline
			}
		}
		o.UpdatedAt = now

		if err := s.orders.Update(ctx, o); err != nil {
			return nil, err
		}
		return o, nil
	})
	if err != nil {
		return nil, err
	}
	return toOrder(rec, s.now()), nil
}

// ChangeStatus moves an order along one edge of the transition table and
// stamps the timestamps that edge implies.
func (s *OrderServiceImpl) ChangeStatus(ctx context.Context, req primary.ChangeStatusRequest) (*primary.Order, error) {
	rec, err := execute(ctx, s, "change_status", req.ActorID, func(ctx context.Context, now time.Time) (*secondary.OrderRecord, error) {
		if err := order.ValidateStatusChange(req.Status, req.Notes, req.ActorID); err != nil {
			return nil, err
		}
		target := order.Status(req.Status)

		o, err := s.orders.GetByID(ctx, req.OrderID)
		if err != nil {
			return nil, err
		}
		r := order.CanChangeStatus(order.ChangeStatusContext{
			OrderNumber:       o.OrderNumber,
			From:              order.Status(o.Status),
			To:                target,
			HasScheduledStart: req.ScheduledStart != nil,
		})
		if !r.Allowed {
			return nil, r.Error()
		}

		h, err := applyTransition(ctx, o, target, now, req.Notes)
		if err != nil {
			return nil, err
		}
		switch target {
		case order.StatusSubmitted:
			o.SubmittedAt = timeRef(now)
		case order.StatusScheduled:
			o.ScheduledStartDate = req.ScheduledStart
		case order.StatusInProgress:
			if req.ActualStart != nil {
				o.ActualStartDate = req.ActualStart
			} else if o.ActualStartDate == nil {
				o.ActualStartDate = timeRef(now)
			}
		case order.StatusRejected:
			o.IsRejected = true
			o.RejectedAt = timeRef(now)
			o.RejectedByUserID = req.ActorID
			o.RejectionReason = req.Notes
		}

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
