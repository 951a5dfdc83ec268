package storage

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackends(t *testing.T) map[string]Store {
	t.Helper()

	file, err := NewFile(t.TempDir())
	require.NoError(t, err)

	sqlite, err := NewSQLite(filepath.Join(t.TempDir(), "wallet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"file":   file,
		"sqlite": sqlite,
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for name, db := range newBackends(t) {
		t.Run(name, func(t *testing.T) {
			saved := map[string]float64{"bitcoin": 45000.5, "ethereum": 2000}
			require.NoError(t, db.Save(KeyHoldings, saved))

			var loaded map[string]float64
			assert.True(t, db.Load(KeyHoldings, &loaded))
			assert.Equal(t, saved, loaded)
		})
	}
}

func TestLoadAbsentKeyReturnsFalse(t *testing.T) {
	t.Parallel()

	for name, db := range newBackends(t) {
		t.Run(name, func(t *testing.T) {
			balance := 10000.0 // fallback stays in place
			assert.False(t, db.Load(KeyBalance, &balance))
			assert.Equal(t, 10000.0, balance)
		})
	}
}

func TestOverwriteReplacesValue(t *testing.T) {
	t.Parallel()

	for name, db := range newBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, db.Save(KeyBalance, 10000.0))
			require.NoError(t, db.Save(KeyBalance, 9800.0))

			var balance float64
			assert.True(t, db.Load(KeyBalance, &balance))
			assert.Equal(t, 9800.0, balance)
		})
	}
}

func TestFileCorruptValueTreatedAsAbsent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	db, err := NewFile(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, KeyBalance+".json"), []byte("{not json"), 0o644))

	var balance float64
	assert.False(t, db.Load(KeyBalance, &balance))
}

func TestSQLiteCorruptValueTreatedAsAbsent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "wallet.db")
	db, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })

	_, err = raw.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)`, KeyBalance, []byte("{not json"))
	require.NoError(t, err)

	var balance float64
	assert.False(t, db.Load(KeyBalance, &balance))
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "wallet.db")
	db, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })

	var name string
	err = raw.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='kv'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "kv", name)
}

func TestFileSurvivesReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	db, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, db.Save(KeyBalance, 7500.0))

	reopened, err := NewFile(dir)
	require.NoError(t, err)

	var balance float64
	assert.True(t, reopened.Load(KeyBalance, &balance))
	assert.Equal(t, 7500.0, balance)
}

func TestOpenUnknownType(t *testing.T) {
	t.Parallel()

	_, err := Open("redis", "")
	assert.Error(t, err)
}
