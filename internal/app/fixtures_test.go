package app

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/example/mwo/internal/adapters/sqlite"
	"github.com/example/mwo/internal/core/failure"
	"github.com/example/mwo/internal/db"
	"github.com/example/mwo/internal/ports/primary"
	"github.com/example/mwo/internal/ports/secondary"
)

// Seed fixture IDs (see db.SeedFixtures).
const (
	hotelGrand     = int64(1)
	hotelSeaside   = int64(2)
	hotelInactive  = int64(3)
	deptEngineer   = int64(1)
	deptFrontDesk  = int64(3)
	deptSeaside    = int64(4)
	locRoom101     = int64(2)
	locPoolDeck    = int64(5)
	itemAirCon     = int64(1)
	userRequester  = int64(1)
	userChief      = int64(2)
	userTech       = int64(3)
	userOnLeave    = int64(4)
	partFilter     = int64(1) // 10 on hand at 10.00
	partBelt       = int64(2) // 4 on hand at 25.50
	partSeal       = int64(3) // none on hand
	partSeasidePmp = int64(4)
)

var testStart = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	db    *sql.DB
	clock *fakeClock
	svc   *OrderServiceImpl
	sla   *SLAServiceImpl
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })

	if _, err := database.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return wireTestEnv(t, database)
}

// newFileTestEnv uses an on-disk database so concurrent commands run on
// separate connections.
func newFileTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "mwo.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return wireTestEnv(t, database)
}

func wireTestEnv(t *testing.T, database *sql.DB) *testEnv {
	t.Helper()

	if err := db.SeedFixtures(database); err != nil {
		t.Fatalf("failed to seed fixtures: %v", err)
	}

	clock := &fakeClock{now: testStart}
	tx := sqlite.NewTransactor(database)
	orders := sqlite.NewOrderRepository(database)
	slas := sqlite.NewSLAConfigRepository(database)
	svc := NewOrderService(OrderServiceDeps{
		Transactor: tx,
		Orders:     orders,
		History:    sqlite.NewHistoryRepository(database),
		SpareParts: sqlite.NewSparePartRepository(database),
		Ledger:     sqlite.NewLedgerRepository(database),
		Comments:   sqlite.NewCommentRepository(database),
		References: sqlite.NewReferenceLookup(database),
		SLAConfigs: slas,
		Sequence:   sqlite.NewOrderNumberSequence(database),
		Logger:     zap.NewNop(),
		Clock:      clock.Now,
	})
	return &testEnv{
		db:    database,
		clock: clock,
		svc:   svc,
		sla:   NewSLAService(tx, orders, slas, zap.NewNop()),
	}
}

// createOrder opens a submitted critical order in Room 101. mutate may
// adjust the request first.
func (e *testEnv) createOrder(t *testing.T, mutate func(*primary.CreateOrderRequest)) *primary.Order {
	t.Helper()

	req := primary.CreateOrderRequest{
		HotelID:      hotelGrand,
		DepartmentID: deptFrontDesk,
		LocationID:   locRoom101,
		ItemID:       itemAirCon,
		Title:        "Air conditioning not cooling",
		Description:  "Guest reports room stays at 27C",
		Priority:     "critical",
		Type:         "corrective",
		Submit:       true,
		ActorID:      userRequester,
	}
	if mutate != nil {
		mutate(&req)
	}
	o, err := e.svc.CreateOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	return o
}

// startWork assigns the order to the on-shift technician and starts it.
func (e *testEnv) startWork(t *testing.T, orderID int64) *primary.Order {
	t.Helper()
	ctx := context.Background()

	if _, err := e.svc.AssignOrder(ctx, primary.AssignOrderRequest{
		OrderID:      orderID,
		DepartmentID: deptEngineer,
		UserID:       userTech,
		ActorID:      userChief,
	}); err != nil {
		t.Fatalf("AssignOrder failed: %v", err)
	}
	o, err := e.svc.ChangeStatus(ctx, primary.ChangeStatusRequest{
		OrderID: orderID,
		Status:  "in_progress",
		ActorID: userTech,
	})
	if err != nil {
		t.Fatalf("ChangeStatus(in_progress) failed: %v", err)
	}
	return o
}

// completeSimple completes an in-progress order without parts.
func (e *testEnv) completeSimple(t *testing.T, orderID int64) *primary.Order {
	t.Helper()

	o, err := e.svc.CompleteOrder(context.Background(), primary.CompleteOrderRequest{
		OrderID:         orderID,
		ResolutionNotes: "Replaced capacitor",
		ActorID:         userTech,
	})
	if err != nil {
		t.Fatalf("CompleteOrder failed: %v", err)
	}
	return o
}

func (e *testEnv) countRows(t *testing.T, query string, args ...any) int {
	t.Helper()

	var n int
	if err := e.db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	return n
}

func (e *testEnv) stock(t *testing.T, partID int64) int {
	t.Helper()
	return e.countRows(t, "SELECT quantity_on_hand FROM spare_parts WHERE id = ?", partID)
}

// flakyOrders fails the first failures Update calls with a version
// conflict.
type flakyOrders struct {
	secondary.OrderRepository
	failures int
	updates  int
}

func (f *flakyOrders) Update(ctx context.Context, o *secondary.OrderRecord) error {
	f.updates++
	if f.updates <= f.failures {
		return failure.Conflict("order %s was modified by another command", o.OrderNumber)
	}
	return f.OrderRepository.Update(ctx, o)
}

// failingLedger fails the failAt-th Append with an infrastructure error.
type failingLedger struct {
	secondary.LedgerRepository
	failAt  int
	appends int
}

func (f *failingLedger) Append(ctx context.Context, tx *secondary.LedgerTransactionRecord) error {
	f.appends++
	if f.appends == f.failAt {
		return failure.Infrastructure("ledger.append", errors.New("disk I/O error"))
	}
	return f.LedgerRepository.Append(ctx, tx)
}
