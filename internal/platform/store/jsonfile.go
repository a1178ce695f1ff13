// Package store implements the opaque record store backing the carton ledger
// and transaction logs: JSON files on local disk, one collection per key.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrCorrupt indicates the file existed but did not parse. Callers receive an
// empty collection alongside this sentinel so they can keep operating while
// surfacing the problem instead of swallowing it.
var ErrCorrupt = errors.New("store: corrupt record file")

// Load reads a JSON collection from path. A missing file is created empty and
// yields an empty collection; a corrupt file yields an empty collection plus
// ErrCorrupt.
func Load[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := Save(path, []T{}); err != nil {
			return nil, err
		}
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return []T{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// Save writes the collection to path atomically.
func Save[T any](path string, records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", path, err)
	}
	return writeAtomic(path, data)
}

// LoadMap reads a JSON object from path, for single-record stores such as the
// company registry. Missing and corrupt files behave like Load.
func LoadMap[V any](path string) (map[string]V, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]V{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	}
	var m map[string]V
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]V{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	if m == nil {
		m = map[string]V{}
	}
	return m, nil
}

// SaveMap writes a JSON object to path atomically.
func SaveMap[V any](path string, m map[string]V) error {
	if m == nil {
		m = map[string]V{}
	}
	data, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", path, err)
	}
	return writeAtomic(path, data)
}

// writeAtomic writes data through a temp file in the target directory and
// renames it over path, so a crash mid-write never leaves a half-written
// store behind.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("store: temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("store: rename %s: %w", path, err)
	}
	return nil
}
