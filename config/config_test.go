package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 10000.0, cfg.Wallet.InitialBalance)
	assert.Equal(t, "INR", cfg.Wallet.Currency)
}

func TestSaveAndLoadYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cryptohub.yaml")

	cfg := Default()
	cfg.Wallet.InitialBalance = 25000
	cfg.Storage.Type = "sqlite"
	cfg.Storage.DBPath = "/tmp/wallet.db"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 25000.0, loaded.Wallet.InitialBalance)
	assert.Equal(t, "sqlite", loaded.Storage.Type)
	assert.Equal(t, "/tmp/wallet.db", loaded.Storage.DBPath)
}

func TestLoadJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cryptohub.json")

	cfg := Default()
	cfg.Wallet.Currency = "NGN"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "NGN", loaded.Wallet.Currency)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadGarbage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":::{{{not parseable"), 0o644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestValidateRejects(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero balance", func(c *Config) { c.Wallet.InitialBalance = 0 }},
		{"negative balance", func(c *Config) { c.Wallet.InitialBalance = -5 }},
		{"bad currency", func(c *Config) { c.Wallet.Currency = "EUR" }},
		{"unknown storage", func(c *Config) { c.Storage.Type = "redis" }},
		{"file without dir", func(c *Config) { c.Storage.Type = "file"; c.Storage.Dir = "" }},
		{"sqlite without path", func(c *Config) { c.Storage.Type = "sqlite"; c.Storage.DBPath = "" }},
		{"bad timeout", func(c *Config) { c.Market.Timeout = "soon" }},
		{"no addr", func(c *Config) { c.Server.Addr = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestStoragePath(t *testing.T) {
	t.Parallel()

	s := StorageConfig{Type: "sqlite", Dir: "./data", DBPath: "./wallet.db"}
	assert.Equal(t, "./wallet.db", s.Path())

	s.Type = "file"
	assert.Equal(t, "./data", s.Path())
}
