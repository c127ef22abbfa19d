// Package storage owns the normalized position-indexed schema: entity
// deduplication, transactional game import, and the read-only
// statistics queries. Writers and readers share one pooled *sql.DB.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// Sentinel errors surfaced to the transport layer.
var (
	ErrGameNotFound = errors.New("game not found")
	ErrInvalidLimit = errors.New("limit must be a positive integer")
)

// Store handles SQLite database operations for the position index
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens the database and configures the connection pool.
// Queries are read-only and run concurrently; ingestion is the single
// writer, so WAL mode keeps readers from blocking on it.
func NewStore(dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return &Store{db: db, path: dataSourceName}, nil
}

// IsHealthy reports whether the backend is reachable.
func (s *Store) IsHealthy() bool {
	return s.db.Ping() == nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InitDB creates the database schema
func (s *Store) InitDB() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return tx.Commit()
}

// DeleteDB removes the database file
func (s *Store) DeleteDB() error {
	if err := s.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete database file: %w", err)
	}

	return nil
}

// TableCounts returns row counts per table for the db stats subcommand.
func (s *Store) TableCounts() (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, table := range []string{"players", "events", "games", "moves", "ratings"} {
		var n int64
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
