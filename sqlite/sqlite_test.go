package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fwojciec/warn/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB_Open(t *testing.T) {
	t.Parallel()

	t.Run("in-memory database has the cache and run tables", func(t *testing.T) {
		t.Parallel()

		db := openDB(t)

		for _, table := range []string{"cache_entries", "runs"} {
			var n int
			err := db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n)
			require.NoError(t, err, table)
			assert.Zero(t, n, table)
		}
	})

	t.Run("file database uses the write-ahead log", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(filepath.Join(t.TempDir(), "warn.db"))
		require.NoError(t, db.Open())
		t.Cleanup(func() { _ = db.Close() })

		var mode string
		require.NoError(t, db.QueryRowContext(context.Background(), "PRAGMA journal_mode").Scan(&mode))
		assert.Equal(t, "wal", mode)
	})

	t.Run("reopening keeps stored runs", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "warn.db")
		db := sqlite.NewDB(path)
		require.NoError(t, db.Open())
		_, err := db.ExecContext(context.Background(),
			`INSERT INTO runs (id, source, started_at, finished_at) VALUES ('r1', 'fl', '2026-01-01T00:00:00.000000000Z', '2026-01-01T00:00:00.000000000Z')`)
		require.NoError(t, err)
		require.NoError(t, db.Close())

		db = sqlite.NewDB(path)
		require.NoError(t, db.Open())
		t.Cleanup(func() { _ = db.Close() })

		var n int
		require.NoError(t, db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM runs").Scan(&n))
		assert.Equal(t, 1, n)
	})

	t.Run("unwritable directory fails", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB("/nonexistent/warn/warn.db")

		assert.Error(t, db.Open())
	})

	t.Run("closing an unopened database is a no-op", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, sqlite.NewDB(":memory:").Close())
	})
}
