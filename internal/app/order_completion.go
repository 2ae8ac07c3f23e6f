package app

import (
	"context"
	"time"

	"github.com/example/mwo/internal/core/order"
	"github.com/example/mwo/internal/ctxutil"
	"github.com/example/mwo/internal/ports/primary"
	"github.com/example/mwo/internal/ports/secondary"
)

// CompleteOrder records the resolution and consumes spare parts. Every part
// line is checked against stock before anything is written; each consumption
// writes a usage row, a compare-and-set stock update and a ledger entry.
func (s *OrderServiceImpl) CompleteOrder(ctx context.Context, req primary.CompleteOrderRequest) (*primary.Order, error) {
	rec, err := execute(ctx, s, "complete_order", req.ActorID, func(ctx context.Context, now time.Time) (*secondary.OrderRecord, error) {
		in := order.CompleteInput{
			ResolutionNotes:  req.ResolutionNotes,
			RequiresFollowUp: req.RequiresFollowUp,
			FollowUpDate:     req.FollowUpDate,
			LaborCost:        req.LaborCost,
			MaterialCost:     req.MaterialCost,
			ActorID:          req.ActorID,
		}
		for _, p := range req.Parts {
			in.Parts = append(in.Parts, order.UsageInput{SparePartID: p.SparePartID, Quantity: p.Quantity, UnitCost: p.UnitCost})
		}
		if err := order.ValidateComplete(in, now); err != nil {
			return nil, err
		}

		o, err := s.orders.GetByID(ctx, req.OrderID)
		if err != nil {
			return nil, err
		}
		if r := order.CanCompleteOrder(order.CompleteOrderContext{OrderNumber: o.OrderNumber, Status: order.Status(o.Status)}); !r.Allowed {
			return nil, r.Error()
		}

		consumptions, err := s.priceParts(ctx, o, req.Parts)
		if err != nil {
			return nil, err
		}
		lines := make([]order.PartLine, len(consumptions))
		for i, c := range consumptions {
			lines[i] = c.line
		}

		h, err := applyTransition(ctx, o, order.StatusCompleted, now, "Order completed")
		if err != nil {
			return nil, err
		}
		o.ActualCompletionDate = timeRef(now)
		o.CompletedByUserID = req.ActorID
		o.ResolutionNotes = req.ResolutionNotes
		o.RequiresFollowUp = req.RequiresFollowUp
		o.FollowUpDate = req.FollowUpDate
		o.LaborCost = req.LaborCost
		o.MaterialCost = req.MaterialCost
		o.ActualCost = order.ActualCost(req.LaborCost, req.MaterialCost, lines)
		if o.SubmittedAt != nil {
			minutes := order.ElapsedMinutes(*o.SubmittedAt, now)
			o.ResolutionTimeMinutes = &minutes
		}
		if !o.IsSLABreached && order.CompletedLate(o.SLADeadline, now) {
			o.IsSLABreached = true
			o.SLABreachedAt = timeRef(now)
		}

		if err := s.save(ctx, o, h); err != nil {
			return nil, err
		}
		for _, c := range consumptions {
			if err := s.consume(ctx, o, c, now); err != nil {
				return nil, err
			}
		}
		return o, nil
	})
	if err != nil {
		return nil, err
	}
	return toOrder(rec, s.now()), nil
}

type consumption struct {
	part *secondary.SparePartRecord
	line order.PartLine
}

// priceParts loads each requested part, checks stock and resolves the unit
// cost.
func (s *OrderServiceImpl) priceParts(ctx context.Context, o *secondary.OrderRecord, reqs []primary.PartUsageRequest) ([]consumption, error) {
	out := make([]consumption, 0, len(reqs))
	for _, p := range reqs {
		part, err := s.parts.GetByID(ctx, p.SparePartID)
		if err != nil {
			return nil, err
		}
		r := order.CanConsumePart(order.ConsumePartContext{
			SparePartID:    part.ID,
			PartHotelID:    part.HotelID,
			OrderHotelID:   o.HotelID,
			QuantityOnHand: part.QuantityOnHand,
			Quantity:       p.Quantity,
		})
		if !r.Allowed {
			return nil, r.Error()
		}

		unitCost := part.UnitCost
		if p.UnitCost.Valid {
			unitCost = p.UnitCost.Decimal
		}
		out = append(out, consumption{
			part: part,
			line: order.PartLine{SparePartID: part.ID, Quantity: p.Quantity, UnitCost: unitCost},
		})
	}
	return out, nil
}

func (s *OrderServiceImpl) consume(ctx context.Context, o *secondary.OrderRecord, c consumption, now time.Time) error {
	commandID := ctxutil.CommandIDFromContext(ctx)
	actor := ctxutil.ActorFromContext(ctx)

	part := c.part
	before := part.QuantityOnHand
	after := before - c.line.Quantity

	if err := s.parts.RecordUsage(ctx, &secondary.SparePartUsageRecord{
		OrderID:      o.ID,
		SparePartID:  part.ID,
		QuantityUsed: c.line.Quantity,
		UnitCost:     c.line.UnitCost,
		TotalCost:    c.line.Total(),
		UsedByUserID: actor,
		UsedAt:       now,
		CommandID:    commandID,
	}); err != nil {
		return err
	}
	if err := s.parts.SetQuantity(ctx, part.ID, before, after); err != nil {
		return err
	}
	return s.ledger.Append(ctx, &secondary.LedgerTransactionRecord{
		SparePartID:     part.ID,
		Type:            secondary.LedgerTypeUsage,
		Quantity:        -c.line.Quantity,
		QuantityBefore:  before,
		QuantityAfter:   after,
		Cost:            c.line.Total(),
		ReferenceType:   secondary.ReferenceMaintenanceOrder,
		ReferenceID:     o.ID,
		ReferenceNumber: o.OrderNumber,
		Notes:           "Used in order " + o.OrderNumber,
		CreatedByUserID: actor,
		CreatedAt:       now,
		CommandID:       commandID,
	})
}
