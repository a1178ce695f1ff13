// Package company manages the registry mapping company names to their ledger
// store keys. One company's ledger is in play per request; mutations to a
// company are serialized by the caller through shared.KeyedMutex.
package company

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/stockmitra/stockmitra/internal/platform/store"
)

// ErrUnknownCompany indicates a company name missing from the registry.
var ErrUnknownCompany = errors.New("company: unknown company")

// ErrCompanyExists indicates an attempt to register a duplicate name.
var ErrCompanyExists = errors.New("company: already registered")

// Company is one registry row.
type Company struct {
	Name     string `json:"name"`
	StoreKey string `json:"store_key"`
}

// Registry owns the company_config.json mapping. Writes to the registry file
// are serialized by the embedded mutex; ledger writes are not its concern.
type Registry struct {
	dataDir string
	path    string
	log     *slog.Logger
	mu      sync.Mutex
}

// NewRegistry builds a registry rooted at dataDir.
func NewRegistry(dataDir string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		dataDir: dataDir,
		path:    filepath.Join(dataDir, "company_config.json"),
		log:     logger,
	}
}

// List returns all registered companies sorted by name. A corrupt registry
// file degrades to an empty list plus a warning instead of failing the read.
func (r *Registry) List(ctx context.Context) ([]Company, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	warning := ""
	m, err := store.LoadMap[string](r.path)
	if err != nil {
		if !errors.Is(err, store.ErrCorrupt) {
			return nil, "", err
		}
		r.log.Warn("registry file corrupt, serving empty registry", "path", r.path, "error", err)
		warning = err.Error()
	}
	companies := make([]Company, 0, len(m))
	for name, key := range m {
		companies = append(companies, Company{Name: name, StoreKey: key})
	}
	sort.Slice(companies, func(i, j int) bool { return companies[i].Name < companies[j].Name })
	return companies, warning, nil
}

// Lookup resolves a company name to its registry row.
func (r *Registry) Lookup(ctx context.Context, name string) (Company, error) {
	if err := ctx.Err(); err != nil {
		return Company{}, err
	}
	m, err := store.LoadMap[string](r.path)
	if err != nil {
		if !errors.Is(err, store.ErrCorrupt) {
			return Company{}, err
		}
		r.log.Warn("registry file corrupt, lookups will fail", "path", r.path, "error", err)
	}
	for existing, key := range m {
		if strings.EqualFold(existing, name) {
			return Company{Name: existing, StoreKey: key}, nil
		}
	}
	return Company{}, fmt.Errorf("%w: %q", ErrUnknownCompany, name)
}

// Add registers a new company and assigns it a ledger file under the data
// directory.
func (r *Registry) Add(ctx context.Context, name string) (Company, error) {
	if err := ctx.Err(); err != nil {
		return Company{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Company{}, errors.New("company: name required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	// Refuse to rewrite the registry over a corrupt file; existing rows
	// would be lost on save.
	m, err := store.LoadMap[string](r.path)
	if err != nil {
		return Company{}, err
	}
	for existing := range m {
		if strings.EqualFold(existing, name) {
			return Company{}, fmt.Errorf("%w: %q", ErrCompanyExists, name)
		}
	}
	key := filepath.Join(r.dataDir, slug(name)+".json")
	m[name] = key
	if err := store.SaveMap(r.path, m); err != nil {
		return Company{}, err
	}
	return Company{Name: name, StoreKey: key}, nil
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

func slug(name string) string {
	s := slugPattern.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(s, "_")
}
