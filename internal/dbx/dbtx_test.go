package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:dbxtest?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(2)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS items (id INTEGER PRIMARY KEY, v TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM items`)
	require.NoError(t, err)
	return db
}

func itemCount(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&n))
	return n
}

func TestInTx_Commit(t *testing.T) {
	db := setupDB(t)

	err := InTx(context.Background(), db, func(ctx context.Context, tx Querier) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO items(v) VALUES ('a')`)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 1, itemCount(t, db))
}

func TestInTx_RollbackOnError(t *testing.T) {
	db := setupDB(t)

	err := InTx(context.Background(), db, func(ctx context.Context, tx Querier) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO items(v) VALUES ('b')`)
		require.NoError(t, e)
		return errors.New("boom")
	})
	require.Error(t, err)
	require.Equal(t, 0, itemCount(t, db))
}

func TestInTx_RollbackOnPanic(t *testing.T) {
	db := setupDB(t)

	defer func() {
		r := recover()
		require.NotNil(t, r, "panic must propagate")
		require.Equal(t, 0, itemCount(t, db))
	}()

	_ = InTx(context.Background(), db, func(ctx context.Context, tx Querier) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO items(v) VALUES ('c')`)
		require.NoError(t, e)
		panic("kaput")
	})
}

func TestInTx_BeginError(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Close())

	err := InTx(context.Background(), db, func(ctx context.Context, tx Querier) error {
		return nil
	})
	require.Error(t, err)
}
