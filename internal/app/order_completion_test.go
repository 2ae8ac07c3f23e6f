package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/mwo/internal/core/failure"
	"github.com/example/mwo/internal/ports/primary"
)

func TestCompleteOrder_CostsStockAndLedger(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	o := env.createOrder(t, nil)
	env.startWork(t, o.ID)

	env.clock.Advance(45 * time.Minute)
	got, err := env.svc.CompleteOrder(ctx, primary.CompleteOrderRequest{
		OrderID:         o.ID,
		ResolutionNotes: "Replaced filter and belt",
		LaborCost:       decimal.NewFromInt(40),
		MaterialCost:    decimal.NewFromInt(10),
		Parts: []primary.PartUsageRequest{
			{SparePartID: partFilter, Quantity: 2},
			{SparePartID: partBelt, Quantity: 1, UnitCost: decimal.NewNullDecimal(decimal.NewFromInt(30))},
		},
		ActorID: userTech,
	})
	if err != nil {
		t.Fatalf("CompleteOrder failed: %v", err)
	}

	if got.Status != "completed" {
		t.Errorf("expected status 'completed', got %q", got.Status)
	}
	// 40 labor + 10 material + 2 x 10.00 + 1 x 30
	if !got.ActualCost.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected actual cost 100, got %s", got.ActualCost)
	}
	if got.CompletedByUserID != userTech || got.ResolutionNotes != "Replaced filter and belt" {
		t.Errorf("unexpected completion fields: by %d notes %q", got.CompletedByUserID, got.ResolutionNotes)
	}
	if got.ResolutionTimeMinutes == nil || *got.ResolutionTimeMinutes != 45 {
		t.Errorf("expected resolution time 45 minutes, got %v", got.ResolutionTimeMinutes)
	}
	if got.SLABreached {
		t.Error("expected completion inside the deadline not to breach")
	}

	if s := env.stock(t, partFilter); s != 8 {
		t.Errorf("expected filter stock 8, got %d", s)
	}
	if s := env.stock(t, partBelt); s != 3 {
		t.Errorf("expected belt stock 3, got %d", s)
	}

	usage, err := env.svc.ListSparePartUsage(ctx, o.ID)
	if err != nil {
		t.Fatalf("ListSparePartUsage failed: %v", err)
	}
	if len(usage) != 2 {
		t.Fatalf("expected 2 usage rows, got %d", len(usage))
	}

	ledger, err := env.svc.ListLedger(ctx, partFilter)
	if err != nil {
		t.Fatalf("ListLedger failed: %v", err)
	}
	if len(ledger) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(ledger))
	}
	e := ledger[0]
	if e.Type != "usage" || e.Quantity != -2 || e.QuantityBefore != 10 || e.QuantityAfter != 8 {
		t.Errorf("unexpected ledger entry: %+v", e)
	}
	if !e.Cost.Equal(decimal.NewFromInt(20)) {
		t.Errorf("expected ledger cost 20, got %s", e.Cost)
	}
	if e.ReferenceType != "maintenance_order" || e.ReferenceID != o.ID || e.ReferenceNumber != o.OrderNumber {
		t.Errorf("unexpected ledger reference: %s %d %s", e.ReferenceType, e.ReferenceID, e.ReferenceNumber)
	}

	beltLedger, err := env.svc.ListLedger(ctx, partBelt)
	if err != nil {
		t.Fatalf("ListLedger failed: %v", err)
	}
	if len(beltLedger) != 1 || !beltLedger[0].Cost.Equal(decimal.NewFromInt(30)) {
		t.Errorf("expected belt ledger entry costing 30, got %+v", beltLedger)
	}
}

func TestCompleteOrder_InsufficientStockRollsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	o := env.createOrder(t, nil)
	started := env.startWork(t, o.ID)

	_, err := env.svc.CompleteOrder(ctx, primary.CompleteOrderRequest{
		OrderID:         o.ID,
		ResolutionNotes: "Replaced seal",
		Parts: []primary.PartUsageRequest{
			{SparePartID: partFilter, Quantity: 1},
			{SparePartID: partSeal, Quantity: 1},
		},
		ActorID: userTech,
	})
	if !errors.Is(err, failure.ErrValidationFailed) {
		t.Fatalf("expected validation failure, got %v", err)
	}

	if s := env.stock(t, partFilter); s != 10 {
		t.Errorf("expected filter stock untouched at 10, got %d", s)
	}
	if n := env.countRows(t, "SELECT COUNT(*) FROM spare_part_transactions"); n != 0 {
		t.Errorf("expected no ledger entries, got %d", n)
	}
	if n := env.countRows(t, "SELECT COUNT(*) FROM order_spare_part_usages"); n != 0 {
		t.Errorf("expected no usage rows, got %d", n)
	}
	got, err := env.svc.GetOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if got.Status != "in_progress" || got.Version != started.Version {
		t.Errorf("expected order untouched, got status %q version %d", got.Status, got.Version)
	}
}

func TestCompleteOrder_LedgerFailureRollsBackEverything(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	o := env.createOrder(t, nil)
	started := env.startWork(t, o.ID)

	ledger := &failingLedger{LedgerRepository: env.svc.ledger, failAt: 2}
	env.svc.ledger = ledger

	_, err := env.svc.CompleteOrder(ctx, primary.CompleteOrderRequest{
		OrderID:         o.ID,
		ResolutionNotes: "Replaced filter and belt",
		Parts: []primary.PartUsageRequest{
			{SparePartID: partFilter, Quantity: 2},
			{SparePartID: partBelt, Quantity: 1},
		},
		ActorID: userTech,
	})
	if !errors.Is(err, failure.ErrInfrastructure) {
		t.Fatalf("expected infrastructure failure, got %v", err)
	}
	if ledger.appends != 2 {
		t.Errorf("expected the failing append to stop completion, got %d appends", ledger.appends)
	}

	if s := env.stock(t, partFilter); s != 10 {
		t.Errorf("expected filter stock restored to 10, got %d", s)
	}
	if s := env.stock(t, partBelt); s != 4 {
		t.Errorf("expected belt stock restored to 4, got %d", s)
	}
	if n := env.countRows(t, "SELECT COUNT(*) FROM order_spare_part_usages"); n != 0 {
		t.Errorf("expected no usage rows, got %d", n)
	}
	if n := env.countRows(t, "SELECT COUNT(*) FROM spare_part_transactions"); n != 0 {
		t.Errorf("expected no ledger entries, got %d", n)
	}
	got, err := env.svc.GetOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if got.Status != "in_progress" || got.Version != started.Version {
		t.Errorf("expected order untouched, got status %q version %d", got.Status, got.Version)
	}
}

func TestCompleteOrder_PartFromAnotherHotel(t *testing.T) {
	env := newTestEnv(t)
	o := env.createOrder(t, nil)
	env.startWork(t, o.ID)

	_, err := env.svc.CompleteOrder(context.Background(), primary.CompleteOrderRequest{
		OrderID:         o.ID,
		ResolutionNotes: "Replaced pump",
		Parts:           []primary.PartUsageRequest{{SparePartID: partSeasidePmp, Quantity: 1}},
		ActorID:         userTech,
	})
	if !errors.Is(err, failure.ErrValidationFailed) {
		t.Fatalf("expected validation failure, got %v", err)
	}
}

func TestCompleteOrder_StateRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	o := env.createOrder(t, nil)

	req := primary.CompleteOrderRequest{OrderID: o.ID, ResolutionNotes: "Fixed", ActorID: userTech}
	_, err := env.svc.CompleteOrder(ctx, req)
	if !errors.Is(err, failure.ErrInvalidStateTransition) {
		t.Fatalf("expected unstarted order to be refused, got %v", err)
	}

	env.startWork(t, o.ID)
	if _, err := env.svc.CompleteOrder(ctx, req); err != nil {
		t.Fatalf("CompleteOrder failed: %v", err)
	}
	_, err = env.svc.CompleteOrder(ctx, req)
	if !errors.Is(err, failure.ErrAlreadyTerminal) {
		t.Fatalf("expected second completion to be refused, got %v", err)
	}

	_, err = env.svc.CompleteOrder(ctx, primary.CompleteOrderRequest{OrderID: o.ID, ActorID: userTech})
	if !errors.Is(err, failure.ErrValidationFailed) {
		t.Fatalf("expected missing resolution notes to fail validation, got %v", err)
	}
}

func TestCompleteOrder_LateCompletionFlagsBreach(t *testing.T) {
	env := newTestEnv(t)
	o := env.createOrder(t, nil)
	env.startWork(t, o.ID)

	env.clock.Advance(3 * time.Hour)
	got := env.completeSimple(t, o.ID)

	if !got.SLABreached {
		t.Error("expected late completion to be flagged as breached")
	}
	want := testStart.Add(3 * time.Hour)
	if got.SLABreachedAt == nil || !got.SLABreachedAt.Equal(want) {
		t.Errorf("expected breached at %v, got %v", want, got.SLABreachedAt)
	}
}

func TestCompleteOrder_ReopenedOrderCanConsumeSamePartAgain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	o := env.createOrder(t, nil)
	env.startWork(t, o.ID)

	req := primary.CompleteOrderRequest{
		OrderID:         o.ID,
		ResolutionNotes: "Replaced filter",
		Parts:           []primary.PartUsageRequest{{SparePartID: partFilter, Quantity: 1}},
		ActorID:         userTech,
	}
	if _, err := env.svc.CompleteOrder(ctx, req); err != nil {
		t.Fatalf("CompleteOrder failed: %v", err)
	}
	if _, err := env.svc.VerifyOrder(ctx, primary.VerifyOrderRequest{OrderID: o.ID, Feedback: "Still warm", ActorID: userRequester}); err != nil {
		t.Fatalf("VerifyOrder(reject) failed: %v", err)
	}
	if _, err := env.svc.CompleteOrder(ctx, req); err != nil {
		t.Fatalf("second CompleteOrder failed: %v", err)
	}

	if s := env.stock(t, partFilter); s != 8 {
		t.Errorf("expected filter stock 8, got %d", s)
	}
	ledger, err := env.svc.ListLedger(ctx, partFilter)
	if err != nil {
		t.Fatalf("ListLedger failed: %v", err)
	}
	if len(ledger) != 2 || ledger[1].QuantityBefore != 9 || ledger[1].QuantityAfter != 8 {
		t.Errorf("expected chained ledger 10->9->8, got %+v", ledger)
	}
}
