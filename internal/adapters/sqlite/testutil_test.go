// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Use setupTestDB()
// and the seed* helpers instead.
package sqlite_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/example/mwo/internal/db"
	"github.com/example/mwo/internal/ports/secondary"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// An in-memory database lives on one connection, so the pool is capped at one.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// setupFileDB creates a file-backed database with the production connection
// settings, for tests that need several concurrent connections.
func setupFileDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := db.Open(filepath.Join(t.TempDir(), "mwo.db"))
	if err != nil {
		t.Fatalf("failed to open file db: %v", err)
	}
	t.Cleanup(func() {
		testDB.Close()
	})
	return testDB
}

// seedHotel inserts hotel 1 (code GRD) with one department, location, item
// and two users (1 requester, 2 technician), and returns the hotel ID.
func seedHotel(t *testing.T, db *sql.DB) int64 {
	t.Helper()
	stmts := []string{
		"INSERT INTO hotels (id, code, name) VALUES (1, 'GRD', 'Grand')",
		"INSERT INTO departments (id, hotel_id, name) VALUES (1, 1, 'Engineering')",
		"INSERT INTO locations (id, hotel_id, name) VALUES (1, 1, 'Room 101')",
		"INSERT INTO items (id, hotel_id, location_id, name) VALUES (1, 1, 1, 'AC unit')",
		"INSERT INTO users (id, hotel_id, department_id, name, email) VALUES (1, 1, 1, 'Requester', 'req@example.com')",
		"INSERT INTO users (id, hotel_id, department_id, name, email, is_available) VALUES (2, 1, 1, 'Tech', 'tech@example.com', 0)",
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("failed to seed hotel: %v", err)
		}
	}
	return 1
}

// seedSparePart inserts a spare part for hotel 1 and returns its ID.
func seedSparePart(t *testing.T, db *sql.DB, partNumber string, onHand int, unitCost string) int64 {
	t.Helper()
	res, err := db.Exec(
		"INSERT INTO spare_parts (hotel_id, part_number, name, quantity_on_hand, unit_cost) VALUES (1, ?, ?, ?, ?)",
		partNumber, "Part "+partNumber, onHand, unitCost,
	)
	if err != nil {
		t.Fatalf("failed to seed spare part: %v", err)
	}
	id, _ := res.LastInsertId()
	return id
}

// newOrderRecord returns a draft order record for hotel 1 ready to Create.
func newOrderRecord(number string, createdAt time.Time) *secondary.OrderRecord {
	return &secondary.OrderRecord{
		OrderNumber:      number,
		HotelID:          1,
		DepartmentID:     1,
		LocationID:       1,
		Title:            "Leaking tap",
		Priority:         "medium",
		Type:             "corrective",
		Status:           "draft",
		AssignmentStatus: "not_assigned",
		EstimatedCost:    decimal.Zero,
		ActualCost:       decimal.Zero,
		LaborCost:        decimal.Zero,
		MaterialCost:     decimal.Zero,
		CreatedByUserID:  1,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}
}
