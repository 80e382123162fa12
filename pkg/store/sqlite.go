// Copyright 2026 © The Prefvec Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS user_profiles (
	key        TEXT PRIMARY KEY,
	record     BLOB NOT NULL,
	updated_at TEXT NOT NULL
);`

// SQLite is a file-backed store using the cgo-free modernc driver.
// One row per profile, the record serialized as JSON.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (and if needed creates) the database at dsn. Use
// ":memory:" for an ephemeral instance.
func NewSQLite(dsn string) (*SQLite, error) {
	if dsn == "" {
		dsn = "data/prefvec.db"
	}
	if dsn != ":memory:" {
		if dir := filepath.Dir(dsn); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, Unavailable("sqlite mkdir", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, Unavailable("sqlite open", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, Unavailable("sqlite migrate", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Name() string { return "sqlite" }

func (s *SQLite) Get(ctx context.Context, key string) (*Record, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM user_profiles WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, Unavailable("sqlite get", err)
	}
	rec, err := decodeRecord(data)
	if err != nil {
		return nil, Unavailable("sqlite decode", err)
	}
	return rec, nil
}

func (s *SQLite) Upsert(ctx context.Context, key string, rec *Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return Unavailable("sqlite encode", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_profiles (key, record, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at`,
		key, data, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return Unavailable("sqlite upsert", err)
	}
	return nil
}

func (s *SQLite) List(ctx context.Context) (map[string]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, record FROM user_profiles`)
	if err != nil {
		return nil, Unavailable("sqlite list", err)
	}
	defer rows.Close()

	out := make(map[string]*Record)
	for rows.Next() {
		var key string
		var data []byte
		if err := rows.Scan(&key, &data); err != nil {
			return nil, Unavailable("sqlite scan", err)
		}
		rec, err := decodeRecord(data)
		if err != nil {
			return nil, Unavailable("sqlite decode", err)
		}
		out[key] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, Unavailable("sqlite list", err)
	}
	return out, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
