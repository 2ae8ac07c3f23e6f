package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Connection parameters applied to every pooled connection.
// _txlock=immediate takes the write lock at BEGIN so concurrent commands
// queue on the busy timeout instead of failing mid-transaction.
const dsnParams = "_txlock=immediate&_busy_timeout=5000&_foreign_keys=on"

// DSN returns the go-sqlite3 data source name for a database file.
func DSN(path string) string {
	return fmt.Sprintf("file:%s?%s", path, dsnParams)
}

// Open opens the database at path, creating its directory, and brings the
// schema up to date.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	database, err := sql.Open("sqlite3", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := InitSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}
