package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/mwo/internal/core/failure"
	"github.com/example/mwo/internal/db"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), ExitError},
		{"validation", failure.Validation(failure.Violation{Field: "title", Message: "is required"}), ExitValidation},
		{"not found", failure.NotFound("order", 7), ExitNotFound},
		{"wrapped transition", fmt.Errorf("status: %w", failure.ErrInvalidStateTransition), ExitInvalidState},
		{"terminal", failure.ErrAlreadyTerminal, ExitInvalidState},
		{"permission", failure.ErrPermissionDenied, ExitPermission},
		{"conflict", failure.Conflict("order %d changed", 7), ExitConflict},
		{"infrastructure", failure.Infrastructure("orders.update", errors.New("disk full")), ExitInfrastructure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestParsePart(t *testing.T) {
	part, err := parsePart("3:2")
	require.NoError(t, err)
	assert.Equal(t, int64(3), part.SparePartID)
	assert.Equal(t, 2, part.Quantity)
	assert.False(t, part.UnitCost.Valid)

	part, err = parsePart("1:4:12.50")
	require.NoError(t, err)
	require.True(t, part.UnitCost.Valid)
	assert.True(t, part.UnitCost.Decimal.Equal(decimal.RequireFromString("12.5")))

	for _, bad := range []string{"", "3", "x:2", "3:two", "3:2:cheap", "1:2:3:4"} {
		_, err := parsePart(bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}
}

func TestDoctorChecks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mwo.db")

	_, res := checkDatabase(path)
	assert.Equal(t, "✗", res.Status, "missing database file")

	database, err := db.Open(path)
	require.NoError(t, err)
	database.Close()

	database, res = checkDatabase(path)
	require.Equal(t, "✓", res.Status)
	defer database.Close()

	assert.Equal(t, "✓", checkSchema(database).Status)
	assert.Equal(t, "⚠", checkReferenceData(database).Status, "empty database")

	require.NoError(t, db.SeedFixtures(database))
	assert.Equal(t, "✓", checkReferenceData(database).Status)
}

func TestDoctorChecks_StaleSchemaLeftAlone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mwo.db")

	database, err := db.Open(path)
	require.NoError(t, err)
	_, err = database.Exec("DELETE FROM schema_version WHERE version = ?", db.LatestVersion())
	require.NoError(t, err)
	database.Close()

	database, res := checkDatabase(path)
	require.Equal(t, "✓", res.Status)
	defer database.Close()

	schema := checkSchema(database)
	assert.Equal(t, "✗", schema.Status)
	assert.Contains(t, schema.Details, fmt.Sprintf("expected %d", db.LatestVersion()))

	v, err := db.CurrentVersion(database)
	require.NoError(t, err)
	assert.Equal(t, db.LatestVersion()-1, v, "doctor must not migrate")
}
