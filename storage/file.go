package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// File keeps one <key>.json file per logical key under a directory, the same
// way the browser build kept one localStorage slot per key.
type File struct {
	dir string
}

func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *File) Load(key string, out any) bool {
	raw, err := os.ReadFile(f.path(key))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("discarding corrupt stored value")
		return false
	}
	return true
}

// Save writes to a temp file and renames so a crash mid-write never leaves a
// half-written value behind.
func (f *File) Save(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path(key))
}

func (f *File) Close() error { return nil }
