package txlog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJournalPaths(t *testing.T) {
	s := NewStore()
	key := filepath.Join("data", "acme.json")
	require.Equal(t, filepath.Join("data", "acme_sales_log.json"), s.Path(key, ScopeSales))
	require.Equal(t, filepath.Join("data", "acme_purchase_log.json"), s.Path(key, ScopePurchases))
}

func TestJournalAppendLoadClear(t *testing.T) {
	s := NewStore()
	key := filepath.Join(t.TempDir(), "acme.json")
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, key, ScopeSales, saleEntry(1, "A", 2, 10, 6)))
	require.NoError(t, s.Append(ctx, key, ScopeSales, saleEntry(2, "A", 3, 10, 6)))

	entries, err := s.Load(ctx, key, ScopeSales)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, 2, entries[0].Quantity)
	require.Equal(t, 3, entries[1].Quantity)

	purchases, err := s.Load(ctx, key, ScopePurchases)
	require.NoError(t, err)
	require.Empty(t, purchases)

	require.NoError(t, s.Clear(ctx, key))
	entries, err = s.Load(ctx, key, ScopeSales)
	require.NoError(t, err)
	require.Empty(t, entries)
}
