package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/mwo/internal/adapters/sqlite"
	"github.com/example/mwo/internal/core/failure"
	"github.com/example/mwo/internal/ports/secondary"
)

func TestReferenceLookup(t *testing.T) {
	testDB := setupTestDB(t)
	seedHotel(t, testDB)
	lookup := sqlite.NewReferenceLookup(testDB)
	ctx := context.Background()

	hotel, err := lookup.GetHotel(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "GRD", hotel.Code)
	assert.True(t, hotel.IsActive)

	dept, err := lookup.GetDepartment(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dept.HotelID)

	loc, err := lookup.GetLocation(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, loc.ParentID)

	item, err := lookup.GetItem(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), item.LocationID)

	tech, err := lookup.GetUser(ctx, 2)
	require.NoError(t, err)
	assert.False(t, tech.IsAvailable)
	assert.True(t, tech.IsActive)

	missing := []func() error{
		func() error { _, err := lookup.GetHotel(ctx, 9); return err },
		func() error { _, err := lookup.GetDepartment(ctx, 9); return err },
		func() error { _, err := lookup.GetLocation(ctx, 9); return err },
		func() error { _, err := lookup.GetItem(ctx, 9); return err },
		func() error { _, err := lookup.GetUser(ctx, 9); return err },
	}
	for _, get := range missing {
		assert.ErrorIs(t, get(), failure.ErrNotFound)
	}
}

func TestSLAConfigRepository(t *testing.T) {
	testDB := setupTestDB(t)
	seedHotel(t, testDB)
	_, err := testDB.Exec(`INSERT INTO sla_configurations (hotel_id, priority, response_time_minutes, resolution_time_minutes, is_active)
		VALUES (1, 'critical', 15, 120, 1), (1, 'high', 30, 240, 0), (1, 'low', 240, 2880, 1)`)
	require.NoError(t, err)

	repo := sqlite.NewSLAConfigRepository(testDB)
	ctx := context.Background()

	cfg, err := repo.GetActive(ctx, 1, "critical")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 120, cfg.ResolutionTimeMinutes)

	inactive, err := repo.GetActive(ctx, 1, "high")
	require.NoError(t, err)
	assert.Nil(t, inactive)

	all, err := repo.ListByHotel(ctx, 1)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "critical", all[0].Priority)
	assert.Equal(t, "low", all[2].Priority)
}

func TestCommentRepository(t *testing.T) {
	testDB := setupTestDB(t)
	seedHotel(t, testDB)
	orders := sqlite.NewOrderRepository(testDB)
	repo := sqlite.NewCommentRepository(testDB)
	ctx := context.Background()

	o := newOrderRecord("MO-GRD-2026-00001", base)
	require.NoError(t, orders.Create(ctx, o))

	c := &secondary.CommentRecord{OrderID: o.ID, UserID: 2, Comment: "parts ordered", IsInternal: true, CreatedAt: base}
	require.NoError(t, repo.Create(ctx, c))
	assert.NotZero(t, c.ID)

	got, err := repo.ListByOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "parts ordered", got[0].Comment)
	assert.True(t, got[0].IsInternal)
}
