package db

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_order_lifecycle_schema",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "backfill_order_number_sequences",
		Up:      migrationV2,
	},
}

// RunMigrations executes all pending migrations, each in its own transaction.
func RunMigrations(database *sql.DB) error {
	if _, err := database.Exec(schemaVersionSQL); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var currentVersion int
	err := database.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}
		if err := applyMigration(database, migration); err != nil {
			return err
		}
		zap.L().Info("migration applied",
			zap.Int("version", migration.Version),
			zap.String("name", migration.Name))
	}

	return nil
}

func applyMigration(database *sql.DB, migration Migration) error {
	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
	}
	defer tx.Rollback()

	if err := migration.Up(tx); err != nil {
		return fmt.Errorf("migration %d failed: %w", migration.Version, err)
	}

	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
		return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
	}
	return nil
}

// CurrentVersion returns the highest applied migration version.
func CurrentVersion(database *sql.DB) (int, error) {
	var v int
	err := database.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&v)
	return v, err
}

// LatestVersion returns the version of the newest known migration.
func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}

// migrationV1 creates every table. SchemaSQL is idempotent.
func migrationV1(tx *sql.Tx) error {
	_, err := tx.Exec(SchemaSQL)
	return err
}

// migrationV2 seeds order_number_sequences from orders numbered before the
// counter table existed, so new numbers continue after the highest one.
func migrationV2(tx *sql.Tx) error {
	_, err := tx.Exec(`
		INSERT OR IGNORE INTO order_number_sequences (hotel_id, year, last_value)
		SELECT hotel_id,
			CAST(SUBSTR(order_number, -10, 4) AS INTEGER) AS year,
			MAX(CAST(SUBSTR(order_number, -5) AS INTEGER))
		FROM maintenance_orders
		GROUP BY hotel_id, year
	`)
	return err
}
