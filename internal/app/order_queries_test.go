package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/mwo/internal/core/failure"
	"github.com/example/mwo/internal/ports/primary"
)

func TestGetOrder_ComputesBreachOnRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	o := env.createOrder(t, nil)

	env.clock.Advance(3 * time.Hour)
	got, err := env.svc.GetOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if !got.SLABreached {
		t.Error("expected overdue open order to read as breached")
	}
	if got.SLABreachedAt != nil {
		t.Errorf("expected no stored breach time before the sweep, got %v", got.SLABreachedAt)
	}

	byNumber, err := env.svc.GetOrderByNumber(ctx, o.OrderNumber)
	if err != nil {
		t.Fatalf("GetOrderByNumber failed: %v", err)
	}
	if byNumber.ID != o.ID {
		t.Errorf("expected order %d, got %d", o.ID, byNumber.ID)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.svc.GetOrder(ctx, 42); !errors.Is(err, failure.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := env.svc.GetOrderByNumber(ctx, "MO-GRD-2026-00042"); !errors.Is(err, failure.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := env.svc.GetStatusHistory(ctx, 42); !errors.Is(err, failure.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := env.svc.ListLedger(ctx, 42); !errors.Is(err, failure.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestListOrders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	critical := env.createOrder(t, nil)
	env.clock.Advance(time.Minute)
	low := env.createOrder(t, func(r *primary.CreateOrderRequest) { r.Priority = "low" })
	env.clock.Advance(time.Minute)
	cancelled := env.createOrder(t, func(r *primary.CreateOrderRequest) { r.Priority = "medium" })
	if _, err := env.svc.CancelOrder(ctx, primary.CancelOrderRequest{OrderID: cancelled.ID, Reason: "Duplicate", ActorID: userRequester}); err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}
	env.startWork(t, critical.ID)

	t.Run("default sort is creation order", func(t *testing.T) {
		page, err := env.svc.ListOrders(ctx, primary.ListOrdersRequest{HotelID: hotelGrand})
		if err != nil {
			t.Fatalf("ListOrders failed: %v", err)
		}
		if page.Total != 3 || len(page.Orders) != 3 {
			t.Fatalf("expected 3 orders, got total %d len %d", page.Total, len(page.Orders))
		}
		if page.Orders[0].ID != critical.ID || page.Orders[1].ID != low.ID || page.Orders[2].ID != cancelled.ID {
			t.Errorf("unexpected order: %s, %s, %s", page.Orders[0].OrderNumber, page.Orders[1].OrderNumber, page.Orders[2].OrderNumber)
		}
		if page.Page != 1 || page.PageSize != defaultPageSize {
			t.Errorf("expected page 1 size %d, got %d size %d", defaultPageSize, page.Page, page.PageSize)
		}
	})

	t.Run("open only", func(t *testing.T) {
		page, err := env.svc.ListOrders(ctx, primary.ListOrdersRequest{HotelID: hotelGrand, OpenOnly: true})
		if err != nil {
			t.Fatalf("ListOrders failed: %v", err)
		}
		if page.Total != 2 {
			t.Errorf("expected 2 open orders, got %d", page.Total)
		}
	})

	t.Run("open only with closed statuses matches nothing", func(t *testing.T) {
		page, err := env.svc.ListOrders(ctx, primary.ListOrdersRequest{Statuses: []string{"cancelled"}, OpenOnly: true})
		if err != nil {
			t.Fatalf("ListOrders failed: %v", err)
		}
		if page.Total != 0 || len(page.Orders) != 0 {
			t.Errorf("expected empty page, got %d", page.Total)
		}
	})

	t.Run("status and assignee filters", func(t *testing.T) {
		page, err := env.svc.ListOrders(ctx, primary.ListOrdersRequest{Statuses: []string{"in_progress"}, AssignedToUserID: userTech})
		if err != nil {
			t.Fatalf("ListOrders failed: %v", err)
		}
		if page.Total != 1 || page.Orders[0].ID != critical.ID {
			t.Errorf("expected only the started order, got %d", page.Total)
		}
	})

	t.Run("priority sort descending", func(t *testing.T) {
		page, err := env.svc.ListOrders(ctx, primary.ListOrdersRequest{SortBy: "priority", Descending: true})
		if err != nil {
			t.Fatalf("ListOrders failed: %v", err)
		}
		if page.Orders[0].Priority != "critical" || page.Orders[2].Priority != "low" {
			t.Errorf("expected critical first and low last, got %s and %s", page.Orders[0].Priority, page.Orders[2].Priority)
		}
	})

	t.Run("paging", func(t *testing.T) {
		page, err := env.svc.ListOrders(ctx, primary.ListOrdersRequest{Page: 2, PageSize: 2})
		if err != nil {
			t.Fatalf("ListOrders failed: %v", err)
		}
		if page.Total != 3 || len(page.Orders) != 1 || page.Orders[0].ID != cancelled.ID {
			t.Errorf("expected the third order alone on page 2, got total %d len %d", page.Total, len(page.Orders))
		}

		page, err = env.svc.ListOrders(ctx, primary.ListOrdersRequest{PageSize: 1000})
		if err != nil {
			t.Fatalf("ListOrders failed: %v", err)
		}
		if page.PageSize != maxPageSize {
			t.Errorf("expected page size capped at %d, got %d", maxPageSize, page.PageSize)
		}
	})

	t.Run("period", func(t *testing.T) {
		page, err := env.svc.ListOrders(ctx, primary.ListOrdersRequest{Period: "today"})
		if err != nil {
			t.Fatalf("ListOrders failed: %v", err)
		}
		if page.Total != 3 {
			t.Errorf("expected 3 orders today, got %d", page.Total)
		}

		env.clock.Advance(48 * time.Hour)
		page, err = env.svc.ListOrders(ctx, primary.ListOrdersRequest{Period: "today"})
		if err != nil {
			t.Fatalf("ListOrders failed: %v", err)
		}
		if page.Total != 0 {
			t.Errorf("expected no orders two days later, got %d", page.Total)
		}
	})

	t.Run("invalid filters", func(t *testing.T) {
		bad := []primary.ListOrdersRequest{
			{Statuses: []string{"done"}},
			{Priority: "urgent"},
			{SortBy: "title"},
			{Period: "decade"},
		}
		for _, req := range bad {
			if _, err := env.svc.ListOrders(ctx, req); !errors.Is(err, failure.ErrValidationFailed) {
				t.Errorf("request %+v: expected validation failure, got %v", req, err)
			}
		}
	})
}

func TestListOrders_BreachedIncludesUnsweptOverdue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	overdue := env.createOrder(t, nil)
	env.createOrder(t, func(r *primary.CreateOrderRequest) { r.Priority = "high" })
	resolved := env.createOrder(t, nil)
	env.startWork(t, resolved.ID)
	env.completeSimple(t, resolved.ID)

	page, err := env.svc.ListOrders(ctx, primary.ListOrdersRequest{BreachedOnly: true})
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if page.Total != 0 {
		t.Fatalf("expected no breached orders before any deadline, got %d", page.Total)
	}

	// Past the critical deadline, before the high one. No sweep runs.
	env.clock.Advance(3 * time.Hour)
	page, err = env.svc.ListOrders(ctx, primary.ListOrdersRequest{BreachedOnly: true})
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if page.Total != 1 || len(page.Orders) != 1 || page.Orders[0].ID != overdue.ID {
		t.Fatalf("expected only the overdue open order, got total %d", page.Total)
	}
	if !page.Orders[0].SLABreached {
		t.Error("expected listed order to report a breach")
	}
	if n := env.countRows(t, "SELECT COUNT(*) FROM maintenance_orders WHERE is_sla_breached = 1"); n != 0 {
		t.Errorf("expected listing not to flag orders, got %d flagged", n)
	}
}

func TestComments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	o := env.createOrder(t, nil)

	c, err := env.svc.AddComment(ctx, primary.AddCommentRequest{OrderID: o.ID, Comment: "Compressor ordered", IsInternal: true, ActorID: userChief})
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if c.ID == 0 || c.UserID != userChief || !c.CreatedAt.Equal(testStart) {
		t.Errorf("unexpected comment: %+v", c)
	}

	comments, err := env.svc.ListComments(ctx, o.ID)
	if err != nil {
		t.Fatalf("ListComments failed: %v", err)
	}
	if len(comments) != 1 || comments[0].Comment != "Compressor ordered" || !comments[0].IsInternal {
		t.Errorf("unexpected comments: %+v", comments)
	}

	got, err := env.svc.GetOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if got.Version != o.Version {
		t.Errorf("expected comment not to bump the order version, got %d", got.Version)
	}

	if _, err := env.svc.AddComment(ctx, primary.AddCommentRequest{OrderID: 999, Comment: "x", ActorID: userChief}); !errors.Is(err, failure.ErrNotFound) {
		t.Errorf("expected not found for unknown order, got %v", err)
	}
	if _, err := env.svc.AddComment(ctx, primary.AddCommentRequest{OrderID: o.ID, Comment: " ", ActorID: userChief}); !errors.Is(err, failure.ErrValidationFailed) {
		t.Errorf("expected validation failure for blank comment, got %v", err)
	}
}
