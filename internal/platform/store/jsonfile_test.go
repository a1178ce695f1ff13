package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestLoadCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.json")

	records, err := Load[record](path)
	require.NoError(t, err)
	require.Empty(t, records)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, "[]", string(data), "missing store must be created empty")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	in := []record{{Name: "a", Count: 1}, {Name: "b", Count: 2}}

	require.NoError(t, Save(path, in))
	out, err := Load[record](path)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	records, err := Load[record](path)
	require.ErrorIs(t, err, ErrCorrupt)
	require.NotNil(t, records)
	require.Empty(t, records, "corrupt store degrades to empty")

	// The corrupt file must survive untouched for manual recovery.
	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	require.Equal(t, "{not json", string(data))
}

func TestSaveNilWritesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, Save[record](path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, "[]", string(data))
}

func TestMapRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	m, err := LoadMap[string](path)
	require.NoError(t, err)
	require.Empty(t, m, "missing map loads empty without creating the file")

	require.NoError(t, SaveMap(path, map[string]string{"Acme": "acme.json"}))
	m, err = LoadMap[string](path)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"Acme": "acme.json"}, m)

	seqs := map[string]int{"PARA01": 7}
	seqPath := filepath.Join(t.TempDir(), "seq.json")
	require.NoError(t, SaveMap(seqPath, seqs))
	loaded, err := LoadMap[int](seqPath)
	require.NoError(t, err)
	require.Equal(t, seqs, loaded)
}

func TestLoadMapCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	m, err := LoadMap[string](path)
	require.ErrorIs(t, err, ErrCorrupt)
	require.Empty(t, m)
}
