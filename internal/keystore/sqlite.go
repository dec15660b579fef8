package keystore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/rvasani/lenden/internal/common"
	"github.com/rvasani/lenden/internal/dbx"
	"github.com/rvasani/lenden/internal/migrations"
)

// SQLiteStore implements Store over a SQLite handle. It accepts a
// dbx.Querier so the same code runs inside a transaction (see dbx.InTx).
type SQLiteStore struct {
	db dbx.Querier
}

func NewSQLiteStore(db dbx.Querier) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Open opens (creating if needed) the keystore database at path and brings
// its schema up to date.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening keystore: %w", err)
	}

	goose.SetBaseFS(migrations.Files)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating keystore: %w", err)
	}
	return db, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM keystore WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("keystore[%s]: %w", key, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting keystore[%s]: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO keystore (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("setting keystore[%s]: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM keystore WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("deleting keystore[%s]: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM keystore`)
	if err != nil {
		return fmt.Errorf("clearing keystore: %w", err)
	}
	return nil
}
