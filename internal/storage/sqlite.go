package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

const (
	loadStateSQL  = `SELECT value FROM app_state WHERE key = ?`
	saveStateSQL  = `INSERT INTO app_state (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	clearStateSQL = `DELETE FROM app_state WHERE key = ?`
)

// SQLiteRepository stores the state document in a single-row table.
type SQLiteRepository struct {
	db  *sql.DB
	key string
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath, key string) (*SQLiteRepository, error) {
	if key == "" {
		key = DefaultKey
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer; the store already serializes saves.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, key: key}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Load(ctx context.Context) (core.AppState, error) {
	var value string
	err := r.db.QueryRowContext(ctx, loadStateSQL, r.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return core.AppState{}, ErrNotFound
	}
	if err != nil {
		return core.AppState{}, fmt.Errorf("load state %q: %w", r.key, err)
	}
	return decodeState([]byte(value))
}

func (r *SQLiteRepository) Save(ctx context.Context, state core.AppState) error {
	b, err := encodeState(state)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, saveStateSQL, r.key, string(b), time.Now().UTC()); err != nil {
		return fmt.Errorf("save state %q: %w", r.key, err)
	}
	slog.DebugContext(ctx, "State saved to SQLite",
		"key", r.key,
		"transactions", len(state.Transactions),
		"bytes", len(b))
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, clearStateSQL, r.key); err != nil {
		return fmt.Errorf("clear state %q: %w", r.key, err)
	}
	slog.InfoContext(ctx, "State record cleared", "key", r.key)
	return nil
}
