package sqlite_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/mwo/internal/adapters/sqlite"
	"github.com/example/mwo/internal/core/failure"
	"github.com/example/mwo/internal/ports/secondary"
)

var base = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestOrderRepository_CreateAndGet(t *testing.T) {
	testDB := setupTestDB(t)
	seedHotel(t, testDB)
	repo := sqlite.NewOrderRepository(testDB)
	ctx := context.Background()

	deadline := base.Add(2 * time.Hour)
	response := 12
	o := newOrderRecord("MO-GRD-2026-00001", base)
	o.ItemID = 1
	o.Description = "under the sink"
	o.SLADeadline = &deadline
	o.ResponseTimeMinutes = &response
	o.EstimatedCost = decimal.RequireFromString("45.50")
	o.IsGuestFacing = true

	require.NoError(t, repo.Create(ctx, o))
	assert.NotZero(t, o.ID)
	assert.Equal(t, int64(1), o.Version)

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "MO-GRD-2026-00001", got.OrderNumber)
	assert.Equal(t, int64(1), got.ItemID)
	assert.Equal(t, "under the sink", got.Description)
	assert.Zero(t, got.AssignedDepartmentID)
	assert.Nil(t, got.SubmittedAt)
	require.NotNil(t, got.SLADeadline)
	assert.True(t, deadline.Equal(*got.SLADeadline))
	require.NotNil(t, got.ResponseTimeMinutes)
	assert.Equal(t, 12, *got.ResponseTimeMinutes)
	assert.Nil(t, got.ResolutionTimeMinutes)
	assert.True(t, decimal.RequireFromString("45.5").Equal(got.EstimatedCost))
	assert.True(t, got.IsGuestFacing)
	assert.True(t, base.Equal(got.CreatedAt))

	byNumber, err := repo.GetByNumber(ctx, "MO-GRD-2026-00001")
	require.NoError(t, err)
	assert.Equal(t, o.ID, byNumber.ID)
}

func TestOrderRepository_GetNotFound(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewOrderRepository(testDB)

	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, failure.ErrNotFound)

	_, err = repo.GetByNumber(context.Background(), "MO-X-2026-00001")
	assert.ErrorIs(t, err, failure.ErrNotFound)
}

func TestOrderRepository_DuplicateNumberIsConflict(t *testing.T) {
	testDB := setupTestDB(t)
	seedHotel(t, testDB)
	repo := sqlite.NewOrderRepository(testDB)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newOrderRecord("MO-GRD-2026-00001", base)))
	err := repo.Create(ctx, newOrderRecord("MO-GRD-2026-00001", base))
	assert.ErrorIs(t, err, failure.ErrConcurrencyConflict)
}

func TestOrderRepository_UpdateVersionCheck(t *testing.T) {
	testDB := setupTestDB(t)
	seedHotel(t, testDB)
	repo := sqlite.NewOrderRepository(testDB)
	ctx := context.Background()

	o := newOrderRecord("MO-GRD-2026-00001", base)
	require.NoError(t, repo.Create(ctx, o))

	stale := o.Clone()

	submitted := base.Add(time.Minute)
	o.Status = "submitted"
	o.SubmittedAt = &submitted
	o.UpdatedAt = submitted
	require.NoError(t, repo.Update(ctx, o))
	assert.Equal(t, int64(2), o.Version)

	stale.Title = "lost update"
	err := repo.Update(ctx, stale)
	assert.ErrorIs(t, err, failure.ErrConcurrencyConflict)

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "submitted", got.Status)
	assert.Equal(t, "Leaking tap", got.Title)
	assert.Equal(t, int64(2), got.Version)

	missing := o.Clone()
	missing.ID = 999
	assert.ErrorIs(t, repo.Update(ctx, missing), failure.ErrNotFound)
}

func TestOrderRepository_List(t *testing.T) {
	testDB := setupTestDB(t)
	seedHotel(t, testDB)
	repo := sqlite.NewOrderRepository(testDB)
	ctx := context.Background()

	priorities := []string{"low", "critical", "medium", "high", "low"}
	for i, p := range priorities {
		o := newOrderRecord(fmt.Sprintf("MO-GRD-2026-%05d", i+1), base.Add(time.Duration(i)*time.Hour))
		o.Priority = p
		if i%2 == 0 {
			o.Status = "submitted"
		}
		if i == 3 {
			o.IsSLABreached = true
		}
		require.NoError(t, repo.Create(ctx, o))
	}

	t.Run("status filter", func(t *testing.T) {
		orders, total, err := repo.List(ctx, secondary.OrderFilters{Statuses: []string{"submitted"}})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, orders, 3)
	})

	t.Run("priority sort descending", func(t *testing.T) {
		orders, _, err := repo.List(ctx, secondary.OrderFilters{SortBy: "priority", Descending: true})
		require.NoError(t, err)
		require.Len(t, orders, 5)
		assert.Equal(t, "critical", orders[0].Priority)
		assert.Equal(t, "high", orders[1].Priority)
	})

	t.Run("paging keeps total", func(t *testing.T) {
		orders, total, err := repo.List(ctx, secondary.OrderFilters{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, orders, 2)
		assert.Equal(t, "MO-GRD-2026-00003", orders[0].OrderNumber)
	})

	t.Run("created window", func(t *testing.T) {
		from := base.Add(time.Hour)
		to := base.Add(3 * time.Hour)
		_, total, err := repo.List(ctx, secondary.OrderFilters{CreatedFrom: &from, CreatedTo: &to})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
	})

	t.Run("breached only", func(t *testing.T) {
		orders, _, err := repo.List(ctx, secondary.OrderFilters{BreachedOnly: true})
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, "MO-GRD-2026-00004", orders[0].OrderNumber)
	})

	t.Run("unknown sort", func(t *testing.T) {
		_, _, err := repo.List(ctx, secondary.OrderFilters{SortBy: "colour"})
		assert.ErrorIs(t, err, failure.ErrValidationFailed)
	})
}

func TestOrderRepository_ListBreachCandidates(t *testing.T) {
	testDB := setupTestDB(t)
	seedHotel(t, testDB)
	repo := sqlite.NewOrderRepository(testDB)
	ctx := context.Background()

	past := base.Add(-time.Hour)
	future := base.Add(time.Hour)

	cases := []struct {
		number   string
		status   string
		deadline *time.Time
		flagged  bool
	}{
		{"MO-GRD-2026-00001", "in_progress", &past, false},   // candidate
		{"MO-GRD-2026-00002", "in_progress", &future, false}, // not yet due
		{"MO-GRD-2026-00003", "completed", &past, false},     // resolved
		{"MO-GRD-2026-00004", "assigned", &past, true},       // already flagged
		{"MO-GRD-2026-00005", "draft", nil, false},           // no SLA
	}
	for _, c := range cases {
		o := newOrderRecord(c.number, base.Add(-3*time.Hour))
		o.Status = c.status
		o.SLADeadline = c.deadline
		o.IsSLABreached = c.flagged
		require.NoError(t, repo.Create(ctx, o))
	}

	got, err := repo.ListBreachCandidates(ctx, base, []string{"draft", "assigned", "in_progress"}, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "MO-GRD-2026-00001", got[0].OrderNumber)
}

func TestOrderRepository_ForeignKeys(t *testing.T) {
	testDB := setupTestDB(t)
	seedHotel(t, testDB)
	repo := sqlite.NewOrderRepository(testDB)

	o := newOrderRecord("MO-GRD-2026-00001", base)
	o.LocationID = 77
	err := repo.Create(context.Background(), o)
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrInfrastructure))
}
