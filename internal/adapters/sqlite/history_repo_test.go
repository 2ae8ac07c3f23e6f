package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/mwo/internal/adapters/sqlite"
	"github.com/example/mwo/internal/ports/secondary"
)

func TestHistoryRepository_Status(t *testing.T) {
	testDB := setupTestDB(t)
	seedHotel(t, testDB)
	orders := sqlite.NewOrderRepository(testDB)
	repo := sqlite.NewHistoryRepository(testDB)
	ctx := context.Background()

	o := newOrderRecord("MO-GRD-2026-00001", base)
	require.NoError(t, orders.Create(ctx, o))

	created := &secondary.StatusHistoryRecord{OrderID: o.ID, ToStatus: "draft", ChangedByUserID: 1, ChangedAt: base, Notes: "Order created", CommandID: "01J0CMD"}
	submitted := &secondary.StatusHistoryRecord{OrderID: o.ID, FromStatus: "draft", ToStatus: "submitted", ChangedByUserID: 1, ChangedAt: base.Add(time.Minute)}
	require.NoError(t, repo.AppendStatus(ctx, created))
	require.NoError(t, repo.AppendStatus(ctx, submitted))
	assert.NotZero(t, created.ID)

	got, err := repo.ListStatus(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Empty(t, got[0].FromStatus)
	assert.Equal(t, "draft", got[0].ToStatus)
	assert.Equal(t, "01J0CMD", got[0].CommandID)
	assert.Equal(t, "draft", got[1].FromStatus)
	assert.True(t, base.Add(time.Minute).Equal(got[1].ChangedAt))

	_, err = testDB.Exec("UPDATE order_status_history SET notes = 'edited'")
	assert.ErrorContains(t, err, "append-only")
}

func TestHistoryRepository_Assignments(t *testing.T) {
	testDB := setupTestDB(t)
	seedHotel(t, testDB)
	orders := sqlite.NewOrderRepository(testDB)
	repo := sqlite.NewHistoryRepository(testDB)
	ctx := context.Background()

	o := newOrderRecord("MO-GRD-2026-00001", base)
	require.NoError(t, orders.Create(ctx, o))

	entry := &secondary.AssignmentHistoryRecord{
		OrderID:          o.ID,
		ToDepartmentID:   1,
		ToUserID:         2,
		AssignedByUserID: 1,
		AssignedAt:       base,
		Reason:           "on shift",
	}
	require.NoError(t, repo.AppendAssignment(ctx, entry))

	got, err := repo.ListAssignments(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Zero(t, got[0].FromDepartmentID)
	assert.Zero(t, got[0].FromUserID)
	assert.Equal(t, int64(1), got[0].ToDepartmentID)
	assert.Equal(t, int64(2), got[0].ToUserID)
	assert.Equal(t, "on shift", got[0].Reason)

	empty, err := repo.ListAssignments(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
