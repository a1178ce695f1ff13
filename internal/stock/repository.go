package stock

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/stockmitra/stockmitra/internal/platform/store"
)

// LedgerStore abstracts ledger persistence for the service. A ledger key is
// the company's store file path from the registry; the sequence file with the
// per-product carton counters lives next to it.
type LedgerStore interface {
	Load(ctx context.Context, ledgerKey string) ([]Carton, error)
	Save(ctx context.Context, ledgerKey string, ledger []Carton) error
	LoadSequences(ctx context.Context, ledgerKey string) (map[string]int, error)
	SaveSequences(ctx context.Context, ledgerKey string, seqs map[string]int) error
}

// FileLedger persists ledgers as JSON files.
type FileLedger struct{}

// NewFileLedger constructs FileLedger.
func NewFileLedger() *FileLedger {
	return &FileLedger{}
}

// Load reads one company ledger. A missing file is created empty; a corrupt
// file yields an empty ledger plus an error wrapping store.ErrCorrupt.
func (f *FileLedger) Load(ctx context.Context, ledgerKey string) ([]Carton, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return store.Load[Carton](ledgerKey)
}

// Save writes one company ledger atomically.
func (f *FileLedger) Save(ctx context.Context, ledgerKey string, ledger []Carton) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return store.Save(ledgerKey, ledger)
}

// LoadSequences reads the per-product carton counters for a ledger.
func (f *FileLedger) LoadSequences(ctx context.Context, ledgerKey string) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return store.LoadMap[int](sequencePath(ledgerKey))
}

// SaveSequences writes the per-product carton counters for a ledger.
func (f *FileLedger) SaveSequences(ctx context.Context, ledgerKey string, seqs map[string]int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return store.SaveMap(sequencePath(ledgerKey), seqs)
}

func sequencePath(ledgerKey string) string {
	dir := filepath.Dir(ledgerKey)
	base := strings.TrimSuffix(filepath.Base(ledgerKey), filepath.Ext(ledgerKey))
	return filepath.Join(dir, fmt.Sprintf("%s_sequence.json", base))
}
