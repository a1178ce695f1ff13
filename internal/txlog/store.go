package txlog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/stockmitra/stockmitra/internal/platform/store"
)

// Store persists journals as JSON files next to the company ledger file: a
// ledger key data/acme.json owns data/acme_sales_log.json and
// data/acme_purchase_log.json.
type Store struct{}

// NewStore constructs a journal store.
func NewStore() *Store {
	return &Store{}
}

// Path derives the journal file path for a ledger key and scope.
func (s *Store) Path(ledgerKey string, scope Scope) string {
	dir := filepath.Dir(ledgerKey)
	base := strings.TrimSuffix(filepath.Base(ledgerKey), filepath.Ext(ledgerKey))
	logType := "sales"
	if scope == ScopePurchases {
		logType = "purchase"
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%s_log.json", base, logType))
}

// Append loads the journal, appends the entries and writes it back. The
// journal is append-only: existing records are never rewritten.
func (s *Store) Append(ctx context.Context, ledgerKey string, scope Scope, entries ...Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	path := s.Path(ledgerKey, scope)
	log, err := store.Load[Entry](path)
	if err != nil {
		return err
	}
	log = append(log, entries...)
	return store.Save(path, log)
}

// Load reads one journal. Returns store.ErrCorrupt (with an empty journal)
// when the file does not parse.
func (s *Store) Load(ctx context.Context, ledgerKey string, scope Scope) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return store.Load[Entry](s.Path(ledgerKey, scope))
}

// Clear truncates both journals for a company. Destructive and not
// recoverable; callers must require explicit confirmation.
func (s *Store) Clear(ctx context.Context, ledgerKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.Save(s.Path(ledgerKey, ScopeSales), []Entry{}); err != nil {
		return err
	}
	return store.Save(s.Path(ledgerKey, ScopePurchases), []Entry{})
}
