package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh installs.
// This schema reflects the current state after all migrations.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. Repository
// tests build their databases from GetSchemaSQL(), so a column referenced by
// adapter code but missing here fails with "no such column" at test time.
//
// When adding new columns or tables:
//  1. Add a migration to migrations.go
//  2. Update SchemaSQL here
//
// Reference tables (hotels through spare_parts) are owned by master-data
// services; the engine only reads them, except spare_parts.quantity_on_hand
// which completion decrements.
const SchemaSQL = `
-- Reference data
CREATE TABLE IF NOT EXISTS hotels (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	code TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	timezone TEXT NOT NULL DEFAULT 'UTC',
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS departments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	hotel_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (hotel_id) REFERENCES hotels(id)
);

CREATE TABLE IF NOT EXISTS locations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	hotel_id INTEGER NOT NULL,
	parent_id INTEGER,
	name TEXT NOT NULL,
	floor TEXT,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (hotel_id) REFERENCES hotels(id),
	FOREIGN KEY (parent_id) REFERENCES locations(id)
);

CREATE TABLE IF NOT EXISTS items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	hotel_id INTEGER NOT NULL,
	location_id INTEGER,
	name TEXT NOT NULL,
	serial_number TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (hotel_id) REFERENCES hotels(id),
	FOREIGN KEY (location_id) REFERENCES locations(id)
);

CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	hotel_id INTEGER NOT NULL,
	department_id INTEGER,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	is_available INTEGER NOT NULL DEFAULT 1,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (hotel_id) REFERENCES hotels(id),
	FOREIGN KEY (department_id) REFERENCES departments(id)
);

CREATE TABLE IF NOT EXISTS sla_configurations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	hotel_id INTEGER NOT NULL,
	priority TEXT NOT NULL CHECK(priority IN ('low', 'medium', 'high', 'critical')),
	response_time_minutes INTEGER NOT NULL CHECK(response_time_minutes > 0),
	resolution_time_minutes INTEGER NOT NULL CHECK(resolution_time_minutes > 0),
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (hotel_id) REFERENCES hotels(id)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_sla_configurations_active
	ON sla_configurations(hotel_id, priority) WHERE is_active = 1;

CREATE TABLE IF NOT EXISTS spare_parts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	hotel_id INTEGER NOT NULL,
	part_number TEXT NOT NULL,
	name TEXT NOT NULL,
	quantity_on_hand INTEGER NOT NULL DEFAULT 0 CHECK(quantity_on_hand >= 0),
	minimum_quantity INTEGER NOT NULL DEFAULT 0,
	unit_cost TEXT NOT NULL DEFAULT '0',
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (hotel_id) REFERENCES hotels(id),
	UNIQUE(hotel_id, part_number)
);

-- Maintenance orders
CREATE TABLE IF NOT EXISTS maintenance_orders (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	order_number TEXT NOT NULL,
	hotel_id INTEGER NOT NULL,
	department_id INTEGER NOT NULL,
	assigned_department_id INTEGER,
	location_id INTEGER NOT NULL,
	item_id INTEGER,
	title TEXT NOT NULL,
	description TEXT,
	priority TEXT NOT NULL CHECK(priority IN ('low', 'medium', 'high', 'critical')),
	type TEXT NOT NULL CHECK(type IN ('corrective', 'preventive', 'inspection', 'emergency', 'improvement')),
	status TEXT NOT NULL DEFAULT 'draft' CHECK(status IN ('draft', 'submitted', 'assigned', 'scheduled', 'in_progress', 'on_hold', 'awaiting_parts', 'external_work', 'completed', 'verified', 'closed', 'cancelled', 'reopened', 'rejected')),
	assignment_status TEXT NOT NULL DEFAULT 'not_assigned' CHECK(assignment_status IN ('not_assigned', 'assigned')),
	submitted_at DATETIME,
	scheduled_start_date DATETIME,
	actual_start_date DATETIME,
	actual_completion_date DATETIME,
	expected_completion_date DATETIME,
	assigned_to_user_id INTEGER,
	assigned_by_user_id INTEGER,
	assigned_at DATETIME,
	sla_deadline DATETIME,
	is_sla_breached INTEGER NOT NULL DEFAULT 0,
	sla_breached_at DATETIME,
	response_time_minutes INTEGER,
	resolution_time_minutes INTEGER,
	estimated_cost TEXT NOT NULL DEFAULT '0',
	actual_cost TEXT NOT NULL DEFAULT '0',
	labor_cost TEXT NOT NULL DEFAULT '0',
	material_cost TEXT NOT NULL DEFAULT '0',
	completed_by_user_id INTEGER,
	resolution_notes TEXT,
	requires_follow_up INTEGER NOT NULL DEFAULT 0,
	follow_up_date DATETIME,
	is_approved_by_requester INTEGER NOT NULL DEFAULT 0,
	approved_at DATETIME,
	approved_by_user_id INTEGER,
	rating INTEGER CHECK(rating IS NULL OR rating BETWEEN 1 AND 5),
	requester_feedback TEXT,
	is_rejected INTEGER NOT NULL DEFAULT 0,
	rejected_at DATETIME,
	rejected_by_user_id INTEGER,
	rejection_reason TEXT,
	is_cancelled INTEGER NOT NULL DEFAULT 0,
	cancelled_at DATETIME,
	cancelled_by_user_id INTEGER,
	cancellation_reason TEXT,
	is_urgent INTEGER NOT NULL DEFAULT 0,
	is_safety_issue INTEGER NOT NULL DEFAULT 0,
	is_guest_facing INTEGER NOT NULL DEFAULT 0,
	created_by_user_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	version INTEGER NOT NULL DEFAULT 1,
	FOREIGN KEY (hotel_id) REFERENCES hotels(id),
	FOREIGN KEY (department_id) REFERENCES departments(id),
	FOREIGN KEY (assigned_department_id) REFERENCES departments(id),
	FOREIGN KEY (location_id) REFERENCES locations(id),
	FOREIGN KEY (item_id) REFERENCES items(id),
	FOREIGN KEY (assigned_to_user_id) REFERENCES users(id),
	FOREIGN KEY (created_by_user_id) REFERENCES users(id)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_maintenance_orders_number ON maintenance_orders(order_number);
CREATE INDEX IF NOT EXISTS idx_maintenance_orders_hotel_status ON maintenance_orders(hotel_id, status);
CREATE INDEX IF NOT EXISTS idx_maintenance_orders_assignee ON maintenance_orders(assigned_to_user_id);
CREATE INDEX IF NOT EXISTS idx_maintenance_orders_sla ON maintenance_orders(sla_deadline) WHERE is_sla_breached = 0;

CREATE TABLE IF NOT EXISTS order_number_sequences (
	hotel_id INTEGER NOT NULL,
	year INTEGER NOT NULL,
	last_value INTEGER NOT NULL,
	PRIMARY KEY (hotel_id, year),
	FOREIGN KEY (hotel_id) REFERENCES hotels(id)
);

-- Audit trails (append-only)
CREATE TABLE IF NOT EXISTS order_status_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	order_id INTEGER NOT NULL,
	from_status TEXT,
	to_status TEXT NOT NULL,
	changed_by_user_id INTEGER NOT NULL,
	changed_at DATETIME NOT NULL,
	notes TEXT,
	command_id TEXT,
	FOREIGN KEY (order_id) REFERENCES maintenance_orders(id)
);

CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id);

CREATE TABLE IF NOT EXISTS order_assignment_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	order_id INTEGER NOT NULL,
	from_department_id INTEGER,
	to_department_id INTEGER,
	from_user_id INTEGER,
	to_user_id INTEGER,
	assigned_by_user_id INTEGER NOT NULL,
	assigned_at DATETIME NOT NULL,
	reason TEXT,
	command_id TEXT,
	FOREIGN KEY (order_id) REFERENCES maintenance_orders(id)
);

CREATE INDEX IF NOT EXISTS idx_order_assignment_history_order ON order_assignment_history(order_id);

CREATE TABLE IF NOT EXISTS order_spare_part_usages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	order_id INTEGER NOT NULL,
	spare_part_id INTEGER NOT NULL,
	quantity_used INTEGER NOT NULL CHECK(quantity_used > 0),
	unit_cost TEXT NOT NULL,
	total_cost TEXT NOT NULL,
	used_by_user_id INTEGER NOT NULL,
	used_at DATETIME NOT NULL,
	command_id TEXT,
	FOREIGN KEY (order_id) REFERENCES maintenance_orders(id),
	FOREIGN KEY (spare_part_id) REFERENCES spare_parts(id),
	UNIQUE(order_id, spare_part_id, command_id)
);

CREATE TABLE IF NOT EXISTS spare_part_transactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	spare_part_id INTEGER NOT NULL,
	transaction_type TEXT NOT NULL CHECK(transaction_type IN ('usage', 'receipt', 'adjustment')),
	quantity INTEGER NOT NULL,
	quantity_before INTEGER NOT NULL,
	quantity_after INTEGER NOT NULL,
	cost TEXT NOT NULL DEFAULT '0',
	reference_type TEXT,
	reference_id INTEGER,
	reference_number TEXT,
	notes TEXT,
	created_by_user_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	command_id TEXT,
	CHECK(quantity_after = quantity_before + quantity),
	FOREIGN KEY (spare_part_id) REFERENCES spare_parts(id)
);

CREATE INDEX IF NOT EXISTS idx_spare_part_transactions_part ON spare_part_transactions(spare_part_id);
CREATE INDEX IF NOT EXISTS idx_spare_part_transactions_reference ON spare_part_transactions(reference_type, reference_id);

CREATE TABLE IF NOT EXISTS order_comments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	order_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	comment TEXT NOT NULL,
	is_internal INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (order_id) REFERENCES maintenance_orders(id),
	FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_order_comments_order ON order_comments(order_id);

CREATE TRIGGER IF NOT EXISTS order_status_history_immutable
BEFORE UPDATE ON order_status_history
BEGIN
	SELECT RAISE(ABORT, 'order_status_history is append-only');
END;

CREATE TRIGGER IF NOT EXISTS order_status_history_undeletable
BEFORE DELETE ON order_status_history
BEGIN
	SELECT RAISE(ABORT, 'order_status_history is append-only');
END;

CREATE TRIGGER IF NOT EXISTS order_assignment_history_immutable
BEFORE UPDATE ON order_assignment_history
BEGIN
	SELECT RAISE(ABORT, 'order_assignment_history is append-only');
END;

CREATE TRIGGER IF NOT EXISTS order_assignment_history_undeletable
BEFORE DELETE ON order_assignment_history
BEGIN
	SELECT RAISE(ABORT, 'order_assignment_history is append-only');
END;

CREATE TRIGGER IF NOT EXISTS spare_part_transactions_immutable
BEFORE UPDATE ON spare_part_transactions
BEGIN
	SELECT RAISE(ABORT, 'spare_part_transactions is append-only');
END;

CREATE TRIGGER IF NOT EXISTS spare_part_transactions_undeletable
BEFORE DELETE ON spare_part_transactions
BEGIN
	SELECT RAISE(ABORT, 'spare_part_transactions is append-only');
END;
`

const schemaVersionSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

// InitSchema creates the schema on a fresh database, or runs pending
// migrations on an existing one.
func InitSchema(database *sql.DB) error {
	var tableCount int
	err := database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		return RunMigrations(database)
	}

	// Fresh install: create the modern schema directly and mark every
	// migration as applied.
	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := tx.Exec(schemaVersionSQL); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	for _, m := range migrations {
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}
	return tx.Commit()
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
