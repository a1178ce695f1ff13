package company

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryAddLookupList(t *testing.T) {
	dir := t.TempDir()
	r := NewRegistry(dir, nil)
	ctx := context.Background()

	added, err := r.Add(ctx, "Acme Pharma")
	require.NoError(t, err)
	require.Equal(t, "Acme Pharma", added.Name)
	require.Equal(t, filepath.Join(dir, "acme_pharma.json"), added.StoreKey)

	_, err = r.Add(ctx, "Bharat Traders")
	require.NoError(t, err)

	got, err := r.Lookup(ctx, "acme pharma")
	require.NoError(t, err, "lookup is case-insensitive")
	require.Equal(t, added.StoreKey, got.StoreKey)

	_, err = r.Lookup(ctx, "Unknown Co")
	require.ErrorIs(t, err, ErrUnknownCompany)

	companies, warning, err := r.List(ctx)
	require.NoError(t, err)
	require.Empty(t, warning)
	require.Len(t, companies, 2)
	require.Equal(t, "Acme Pharma", companies[0].Name, "sorted by name")
	require.Equal(t, "Bharat Traders", companies[1].Name)
}

func TestRegistryCorruptFileDegradesReads(t *testing.T) {
	dir := t.TempDir()
	r := NewRegistry(dir, nil)
	ctx := context.Background()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "company_config.json"), []byte("{not json"), 0o644))

	companies, warning, err := r.List(ctx)
	require.NoError(t, err)
	require.Empty(t, companies)
	require.Contains(t, warning, "company_config.json")

	_, err = r.Lookup(ctx, "Acme")
	require.ErrorIs(t, err, ErrUnknownCompany)

	// Adding must not rewrite the corrupt file.
	_, err = r.Add(ctx, "Acme")
	require.Error(t, err)
	raw, err := os.ReadFile(filepath.Join(dir, "company_config.json"))
	require.NoError(t, err)
	require.Equal(t, "{not json", string(raw))
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry(t.TempDir(), nil)
	ctx := context.Background()

	_, err := r.Add(ctx, "Acme")
	require.NoError(t, err)
	_, err = r.Add(ctx, "ACME")
	require.ErrorIs(t, err, ErrCompanyExists, "duplicate detection ignores case")

	_, err = r.Add(ctx, "   ")
	require.Error(t, err)
}

func TestRegistrySlug(t *testing.T) {
	require.Equal(t, "acme_co_2", slug("Acme & Co. 2"))
	require.Equal(t, "x", slug("  x  "))
}
