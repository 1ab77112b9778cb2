// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mcp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const memorySchema = `
CREATE TABLE IF NOT EXISTS memories (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at INTEGER NOT NULL
) WITHOUT ROWID;
`

// MemoryStore is a persistent key/value store backing the memory tools.
type MemoryStore struct {
	db *sql.DB
}

// OpenMemoryStore opens (creating if needed) the sqlite database at path.
// ":memory:" gives a private in-memory store.
func OpenMemoryStore(path string) (*MemoryStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA synchronous=NORMAL", memorySchema} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize memory store: %w", err)
		}
	}
	return &MemoryStore{db: db}, nil
}

// Store sets key to value, replacing any previous value.
func (m *MemoryStore) Store(ctx context.Context, key, value string) error {
	_, err := m.db.ExecContext(ctx,
		`INSERT INTO memories (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Unix())
	return err
}

// Retrieve returns the value stored under key.
func (m *MemoryStore) Retrieve(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := m.db.QueryRowContext(ctx, `SELECT value FROM memories WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Keys lists stored keys, most recently updated first.
func (m *MemoryStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT key FROM memories ORDER BY updated_at DESC, key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Close closes the database.
func (m *MemoryStore) Close() error {
	return m.db.Close()
}
