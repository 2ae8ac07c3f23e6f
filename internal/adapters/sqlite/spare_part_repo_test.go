package sqlite_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/mwo/internal/adapters/sqlite"
	"github.com/example/mwo/internal/core/failure"
	"github.com/example/mwo/internal/ports/secondary"
)

func TestSparePartRepository_GetAndSetQuantity(t *testing.T) {
	testDB := setupTestDB(t)
	seedHotel(t, testDB)
	partID := seedSparePart(t, testDB, "FLT-20", 10, "12.25")
	repo := sqlite.NewSparePartRepository(testDB)
	ctx := context.Background()

	p, err := repo.GetByID(ctx, partID)
	require.NoError(t, err)
	assert.Equal(t, 10, p.QuantityOnHand)
	assert.True(t, decimal.RequireFromString("12.25").Equal(p.UnitCost))

	require.NoError(t, repo.SetQuantity(ctx, partID, 10, 8))

	// A stale expectation is refused and the stock is left alone.
	err = repo.SetQuantity(ctx, partID, 10, 5)
	assert.ErrorIs(t, err, failure.ErrConcurrencyConflict)

	p, err = repo.GetByID(ctx, partID)
	require.NoError(t, err)
	assert.Equal(t, 8, p.QuantityOnHand)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, failure.ErrNotFound)
}

func TestSparePartRepository_Usage(t *testing.T) {
	testDB := setupTestDB(t)
	seedHotel(t, testDB)
	partID := seedSparePart(t, testDB, "FLT-20", 10, "10")
	orders := sqlite.NewOrderRepository(testDB)
	repo := sqlite.NewSparePartRepository(testDB)
	ctx := context.Background()

	o := newOrderRecord("MO-GRD-2026-00001", base)
	require.NoError(t, orders.Create(ctx, o))

	u := &secondary.SparePartUsageRecord{
		OrderID:      o.ID,
		SparePartID:  partID,
		QuantityUsed: 2,
		UnitCost:     decimal.NewFromInt(10),
		TotalCost:    decimal.NewFromInt(20),
		UsedByUserID: 2,
		UsedAt:       base,
	}
	require.NoError(t, repo.RecordUsage(ctx, u))
	assert.NotZero(t, u.ID)

	got, err := repo.ListUsageByOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].QuantityUsed)
	assert.True(t, decimal.NewFromInt(20).Equal(got[0].TotalCost))
}

func TestLedgerRepository_AppendAndList(t *testing.T) {
	testDB := setupTestDB(t)
	seedHotel(t, testDB)
	partID := seedSparePart(t, testDB, "FLT-20", 10, "10")
	repo := sqlite.NewLedgerRepository(testDB)
	ctx := context.Background()

	entry := &secondary.LedgerTransactionRecord{
		SparePartID:     partID,
		Type:            secondary.LedgerTypeUsage,
		Quantity:        -2,
		QuantityBefore:  10,
		QuantityAfter:   8,
		Cost:            decimal.NewFromInt(20),
		ReferenceType:   secondary.ReferenceMaintenanceOrder,
		ReferenceID:     7,
		ReferenceNumber: "MO-GRD-2026-00007",
		CreatedByUserID: 2,
		CreatedAt:       base,
		CommandID:       "01J0CMD",
	}
	require.NoError(t, repo.Append(ctx, entry))

	byPart, err := repo.ListBySparePart(ctx, partID)
	require.NoError(t, err)
	require.Len(t, byPart, 1)
	assert.Equal(t, 8, byPart[0].QuantityAfter)
	assert.Equal(t, "MO-GRD-2026-00007", byPart[0].ReferenceNumber)

	byRef, err := repo.ListByReference(ctx, secondary.ReferenceMaintenanceOrder, 7)
	require.NoError(t, err)
	assert.Len(t, byRef, 1)

	// quantity_after must equal quantity_before + quantity.
	bad := *entry
	bad.QuantityAfter = 9
	assert.Error(t, repo.Append(ctx, &bad))
}
