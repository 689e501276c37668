package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/artex/sqlite"
	"github.com/stretchr/testify/require"
)

func TestDB_Open(t *testing.T) {
	t.Parallel()

	t.Run("creates schema on first open", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(":memory:")
		err := db.Open()
		require.NoError(t, err)
		defer db.Close()

		var count int
		err = db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM results").Scan(&count)
		require.NoError(t, err)
		require.Zero(t, count)

		version, err := db.SchemaVersion(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, version)
	})

	t.Run("returns error for invalid path", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB("/nonexistent/path/db.sqlite")
		err := db.Open()
		require.Error(t, err)
	})

	t.Run("enables WAL mode for file-based databases", func(t *testing.T) {
		t.Parallel()

		dbPath := t.TempDir() + "/test.db"
		db := sqlite.NewDB(dbPath)
		err := db.Open()
		require.NoError(t, err)
		defer db.Close()

		ctx := context.Background()
		var journalMode string
		err = db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode)
		require.NoError(t, err)
		require.Equal(t, "wal", journalMode)
	})
}

func TestDB_Open_ReopensExistingDatabase(t *testing.T) {
	t.Parallel()

	dbPath := t.TempDir() + "/history.db"
	first := sqlite.NewDB(dbPath)
	require.NoError(t, first.Open())
	_, err := first.ExecContext(context.Background(),
		`INSERT INTO results (id, url, method, body, created_at) VALUES ('a', 'https://x.example/', 'hybrid', '{}', '2026-10-14T00:00:00.000000000Z')`)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := sqlite.NewDB(dbPath)
	require.NoError(t, second.Open())
	defer second.Close()

	var count int
	require.NoError(t, second.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM results").Scan(&count))
	require.Equal(t, 1, count)
}

func TestDB_Open_RejectsNewerSchema(t *testing.T) {
	t.Parallel()

	dbPath := t.TempDir() + "/future.db"
	first := sqlite.NewDB(dbPath)
	require.NoError(t, first.Open())
	_, err := first.ExecContext(context.Background(), "PRAGMA user_version = 99")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := sqlite.NewDB(dbPath)
	err = second.Open()
	require.Error(t, err)
	require.Contains(t, err.Error(), "newer than supported")
}
