package app

import (
	"context"

	"github.com/example/mwo/internal/core/failure"
	"github.com/example/mwo/internal/core/order"
	"github.com/example/mwo/internal/ports/primary"
	"github.com/example/mwo/internal/ports/secondary"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// GetOrder retrieves an order by ID.
func (s *OrderServiceImpl) GetOrder(ctx context.Context, orderID int64) (*primary.Order, error) {
	rec, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return toOrder(rec, s.now()), nil
}

// GetOrderByNumber retrieves an order by its order number.
func (s *OrderServiceImpl) GetOrderByNumber(ctx context.Context, number string) (*primary.Order, error) {
	rec, err := s.orders.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return toOrder(rec, s.now()), nil
}

// ListOrders lists orders with filters, sorting and paging.
func (s *OrderServiceImpl) ListOrders(ctx context.Context, req primary.ListOrdersRequest) (*primary.OrderPage, error) {
	filters, page, size, err := s.listFilters(req)
	if err != nil {
		return nil, err
	}
	// Every requested status was closed, so open-only matches nothing.
	if req.OpenOnly && len(req.Statuses) > 0 && len(filters.Statuses) == 0 {
		return &primary.OrderPage{Orders: []*primary.Order{}, Page: page, PageSize: size}, nil
	}
	records, total, err := s.orders.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := &primary.OrderPage{Orders: make([]*primary.Order, len(records)), Total: total, Page: page, PageSize: size}
	for i, r := range records {
		out.Orders[i] = toOrder(r, now)
	}
	return out, nil
}

func (s *OrderServiceImpl) listFilters(req primary.ListOrdersRequest) (secondary.OrderFilters, int, int, error) {
	var violations []failure.Violation
	f := secondary.OrderFilters{
		HotelID:              req.HotelID,
		Priority:             req.Priority,
		AssignedDepartmentID: req.AssignedDepartmentID,
		AssignedToUserID:     req.AssignedToUserID,
		BreachedOnly:         req.BreachedOnly,
		SortBy:               req.SortBy,
		Descending:           req.Descending,
	}

	for _, raw := range req.Statuses {
		st, err := order.ParseStatus(raw)
		if err != nil {
			violations = append(violations, failure.Violation{Field: "status", Message: err.Error()})
			continue
		}
		if req.OpenOnly && !order.IsOpen(st) {
			continue
		}
		f.Statuses = append(f.Statuses, raw)
	}
	if req.BreachedOnly {
		f.Now = s.now()
		for _, st := range order.OpenStatuses() {
			f.BreachStatuses = append(f.BreachStatuses, string(st))
		}
	}
	if req.OpenOnly && len(req.Statuses) == 0 {
		for _, st := range order.OpenStatuses() {
			f.Statuses = append(f.Statuses, string(st))
		}
	}

	if req.Priority != "" && !order.Priority(req.Priority).Valid() {
		violations = append(violations, failure.Violation{Field: "priority", Message: "unknown priority " + req.Priority})
	}
	switch req.SortBy {
	case "", "created_at", "sla_deadline", "priority", "order_number":
	default:
		violations = append(violations, failure.Violation{Field: "sort", Message: "unknown sort field " + req.SortBy})
	}
	if req.Period != "" {
		from, to, err := order.PeriodRange(order.Period(req.Period), s.now())
		if err != nil {
			violations = append(violations, failure.Violation{Field: "period", Message: err.Error()})
		} else {
			f.CreatedFrom, f.CreatedTo = &from, &to
		}
	}
	if len(violations) > 0 {
		return f, 0, 0, failure.Validation(violations...)
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	size := req.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	f.Limit = size
	f.Offset = (page - 1) * size
	return f, page, size, nil
}

// GetStatusHistory returns an order's status changes, oldest first.
func (s *OrderServiceImpl) GetStatusHistory(ctx context.Context, orderID int64) ([]*primary.StatusChange, error) {
	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	records, err := s.history.ListStatus(ctx, orderID)
	if err != nil {
		return nil, err
	}
	out := make([]*primary.StatusChange, len(records))
	for i, r := range records {
		out[i] = &primary.StatusChange{
			ID:              r.ID,
			FromStatus:      r.FromStatus,
			ToStatus:        r.ToStatus,
			ChangedByUserID: r.ChangedByUserID,
			ChangedAt:       r.ChangedAt,
			Notes:           r.Notes,
			CommandID:       r.CommandID,
		}
	}
	return out, nil
}

// GetAssignmentHistory returns an order's assignment changes, oldest first.
func (s *OrderServiceImpl) GetAssignmentHistory(ctx context.Context, orderID int64) ([]*primary.AssignmentChange, error) {
	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	records, err := s.history.ListAssignments(ctx, orderID)
	if err != nil {
		return nil, err
	}
	out := make([]*primary.AssignmentChange, len(records))
	for i, r := range records {
		out[i] = &primary.AssignmentChange{
			ID:               r.ID,
			FromDepartmentID: r.FromDepartmentID,
			ToDepartmentID:   r.ToDepartmentID,
			FromUserID:       r.FromUserID,
			ToUserID:         r.ToUserID,
			AssignedByUserID: r.AssignedByUserID,
			AssignedAt:       r.AssignedAt,
			Reason:           r.Reason,
			CommandID:        r.CommandID,
		}
	}
	return out, nil
}

// ListSparePartUsage returns the parts consumed by an order.
func (s *OrderServiceImpl) ListSparePartUsage(ctx context.Context, orderID int64) ([]*primary.PartUsage, error) {
	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	records, err := s.parts.ListUsageByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	out := make([]*primary.PartUsage, len(records))
	for i, r := range records {
		out[i] = &primary.PartUsage{
			ID:           r.ID,
			SparePartID:  r.SparePartID,
			QuantityUsed: r.QuantityUsed,
			UnitCost:     r.UnitCost,
			TotalCost:    r.TotalCost,
			UsedByUserID: r.UsedByUserID,
			UsedAt:       r.UsedAt,
		}
	}
	return out, nil
}

// ListLedger returns the stock movements of a spare part, oldest first.
func (s *OrderServiceImpl) ListLedger(ctx context.Context, sparePartID int64) ([]*primary.LedgerEntry, error) {
	if _, err := s.parts.GetByID(ctx, sparePartID); err != nil {
		return nil, err
	}
	records, err := s.ledger.ListBySparePart(ctx, sparePartID)
	if err != nil {
		return nil, err
	}
	out := make([]*primary.LedgerEntry, len(records))
	for i, r := range records {
		out[i] = &primary.LedgerEntry{
			ID:              r.ID,
			SparePartID:     r.SparePartID,
			Type:            r.Type,
			Quantity:        r.Quantity,
			QuantityBefore:  r.QuantityBefore,
			QuantityAfter:   r.QuantityAfter,
			Cost:            r.Cost,
			ReferenceType:   r.ReferenceType,
			ReferenceID:     r.ReferenceID,
			ReferenceNumber: r.ReferenceNumber,
			CreatedByUserID: r.CreatedByUserID,
			CreatedAt:       r.CreatedAt,
			CommandID:       r.CommandID,
		}
	}
	return out, nil
}
