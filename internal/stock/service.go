package stock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/stockmitra/stockmitra/internal/platform/store"
	"github.com/stockmitra/stockmitra/internal/shared"
	"github.com/stockmitra/stockmitra/internal/txlog"
)

// JournalPort abstracts the transaction journal for the service.
type JournalPort interface {
	Append(ctx context.Context, ledgerKey string, scope txlog.Scope, entries ...txlog.Entry) error
	Load(ctx context.Context, ledgerKey string, scope txlog.Scope) ([]txlog.Entry, error)
	Clear(ctx context.Context, ledgerKey string) error
}

// Service coordinates ledger operations for all companies. Mutations take a
// per-ledger write lock so concurrent requests against one company cannot
// interleave load-modify-save cycles.
//
// Read operations tolerate a corrupt ledger file: they proceed over an empty
// ledger and surface a warning. Mutations refuse to run against a corrupt
// file, because saving over it would silently discard whatever the file still
// holds.
type Service struct {
	ledger  LedgerStore
	journal JournalPort
	locks   *shared.KeyedMutex
	clock   func() time.Time
	dash    DashboardConfig
	log     *slog.Logger
}

// ServiceConfig groups optional service settings.
type ServiceConfig struct {
	// Dashboard sets the alert thresholds. Nil means the defaults; an
	// explicit zero threshold disables that alert list.
	Dashboard *DashboardConfig
	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// NewService builds Service.
func NewService(ledger LedgerStore, journal JournalPort, cfg ServiceConfig, logger *slog.Logger) *Service {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	dash := DefaultDashboardConfig()
	if cfg.Dashboard != nil {
		dash = *cfg.Dashboard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		ledger:  ledger,
		journal: journal,
		locks:   shared.NewKeyedMutex(),
		clock:   clock,
		dash:    dash,
		log:     logger,
	}
}

// AddStockInput describes one inward batch: NumCartons identical cartons of
// the given product.
type AddStockInput struct {
	NewCartonParams
	NumCartons int
}

// AddStockResult reports the cartons created by one inward.
type AddStockResult struct {
	Cartons []Carton `json:"cartons"`
	Warning string   `json:"warning,omitempty"`
}

// AddStock appends NumCartons new cartons to the company ledger, assigns them
// monotonic carton ids and records one purchase journal entry per carton. The
// per-product sequence counter never goes backwards, so ids are not reused
// even after every carton of a product has been deleted.
func (s *Service) AddStock(ctx context.Context, ledgerKey string, in AddStockInput) (AddStockResult, error) {
	if in.NumCartons < 1 {
		return AddStockResult{}, &ValidationError{Field: "num_cartons", Reason: "must be >= 1"}
	}
	unlock := s.locks.Lock(ledgerKey)
	defer unlock()

	ledger, err := s.ledger.Load(ctx, ledgerKey)
	if err != nil {
		return AddStockResult{}, err
	}
	seqs, err := s.ledger.LoadSequences(ctx, ledgerKey)
	if err != nil {
		return AddStockResult{}, err
	}

	now := shared.TimestampOf(s.clock())
	productID := normalizeCode(in.ProductID)
	seq := max(seqs[productID], MaxCartonSequence(productID, ledger))

	// A differing display name for an existing product id is tolerated but
	// called out, matching the resolver's mismatch handling.
	conflict := ""
	for i := range ledger {
		if ledger[i].ProductID == productID && !strings.EqualFold(ledger[i].ProductName, in.ProductName) {
			conflict = fmt.Sprintf("product %s already recorded as %q; new cartons use %q",
				productID, ledger[i].ProductName, strings.TrimSpace(in.ProductName))
			break
		}
	}

	created := make([]Carton, 0, in.NumCartons)
	for i := 0; i < in.NumCartons; i++ {
		seq++
		c, err := NewCarton(in.NewCartonParams, seq, now)
		if err != nil {
			return AddStockResult{}, err
		}
		created = append(created, c)
	}
	ledger = append(ledger, created...)
	if err := s.ledger.Save(ctx, ledgerKey, ledger); err != nil {
		return AddStockResult{}, err
	}
	seqs[productID] = seq
	if err := s.ledger.SaveSequences(ctx, ledgerKey, seqs); err != nil {
		return AddStockResult{}, err
	}

	res := AddStockResult{Cartons: created, Warning: conflict}
	entries := make([]txlog.Entry, 0, len(created))
	for _, c := range created {
		entries = append(entries, purchaseEntry(c, now))
	}
	if err := s.journal.Append(ctx, ledgerKey, txlog.ScopePurchases, entries...); err != nil {
		s.log.Warn("purchase journal append failed", "ledger", ledgerKey, "error", err)
		res.Warning = joinWarnings(res.Warning, "stock saved but the purchase log could not be updated: "+err.Error())
	}
	s.log.Info("stock added",
		"ledger", ledgerKey,
		"product_id", productID,
		"cartons", len(created),
		"units_per_carton", in.Quantity,
	)
	return res, nil
}

// SellInput asks for full cartons plus loose pieces of the product matching
// the query.
type SellInput struct {
	Query       string
	FullCartons int
	LoosePieces int
}

// SellResult reports the committed outcome of a sale.
type SellResult struct {
	Receipt SaleReceipt `json:"receipt"`
	Warning string      `json:"warning,omitempty"`
}

// Sell resolves the query to a product, allocates stock FIFO by inward date
// and commits the result. Partial fulfilment is committed, not rolled back;
// the receipt's shortfall says what could not be served.
func (s *Service) Sell(ctx context.Context, ledgerKey string, in SellInput) (SellResult, error) {
	unlock := s.locks.Lock(ledgerKey)
	defer unlock()

	ledger, err := s.ledger.Load(ctx, ledgerKey)
	if err != nil {
		return SellResult{}, err
	}
	ref, err := Resolve(in.Query, ledger)
	if err != nil {
		return SellResult{}, err
	}

	byID := make(map[string]*Carton, len(ledger))
	for i := range ledger {
		byID[ledger[i].CartonID] = &ledger[i]
	}

	now := shared.TimestampOf(s.clock())
	today := shared.DateOf(s.clock())
	receipt, err := Allocate(ledger, SaleRequest{
		ProductID:   ref.ProductID,
		FullCartons: in.FullCartons,
		LoosePieces: in.LoosePieces,
	}, today, now)
	if err != nil {
		return SellResult{}, err
	}
	if err := s.ledger.Save(ctx, ledgerKey, ledger); err != nil {
		return SellResult{}, err
	}

	res := SellResult{Receipt: receipt}
	entries := make([]txlog.Entry, 0, len(receipt.Cartons))
	for _, sale := range receipt.Cartons {
		entries = append(entries, saleEntry(receipt, sale, byID[sale.CartonID], now))
	}
	if err := s.journal.Append(ctx, ledgerKey, txlog.ScopeSales, entries...); err != nil {
		s.log.Warn("sales journal append failed", "ledger", ledgerKey, "error", err)
		res.Warning = "sale committed but the sales log could not be updated: " + err.Error()
	}
	s.log.Info("stock sold",
		"ledger", ledgerKey,
		"product_id", receipt.ProductID,
		"units", receipt.TotalUnits,
		"cartons_touched", len(receipt.Cartons),
		"short", receipt.Shortfall != nil,
	)
	return res, nil
}

// FindResult is the answer to a stock query.
type FindResult struct {
	Summary ProductSummary `json:"summary"`
	Warning string         `json:"warning,omitempty"`
}

// FindStock resolves the query and summarizes the matching product.
func (s *Service) FindStock(ctx context.Context, ledgerKey, query string) (FindResult, error) {
	ledger, warning, err := s.loadForRead(ctx, ledgerKey)
	if err != nil {
		return FindResult{}, err
	}
	ref, err := Resolve(query, ledger)
	if err != nil {
		return FindResult{}, err
	}
	return FindResult{
		Summary: Summarize(ref.ProductID, ledger, shared.DateOf(s.clock())),
		Warning: warning,
	}, nil
}

// CompanyView is the aggregated per-product state of one company ledger.
type CompanyView struct {
	Products []ProductRollup `json:"products"`
	Warning  string          `json:"warning,omitempty"`
}

// Overview aggregates the ledger into one rollup row per product.
func (s *Service) Overview(ctx context.Context, ledgerKey string) (CompanyView, error) {
	ledger, warning, err := s.loadForRead(ctx, ledgerKey)
	if err != nil {
		return CompanyView{}, err
	}
	return CompanyView{
		Products: AggregateByProduct(ledger, shared.DateOf(s.clock())),
		Warning:  warning,
	}, nil
}

// DashboardView carries the headline stats plus any degraded-store warning.
type DashboardView struct {
	Stats   DashboardStats `json:"stats"`
	Warning string         `json:"warning,omitempty"`
}

// Dashboard computes the company's headline stats and alert lists.
func (s *Service) Dashboard(ctx context.Context, ledgerKey string) (DashboardView, error) {
	ledger, warning, err := s.loadForRead(ctx, ledgerKey)
	if err != nil {
		return DashboardView{}, err
	}
	return DashboardView{
		Stats:   Dashboard(ledger, shared.DateOf(s.clock()), s.dash),
		Warning: warning,
	}, nil
}

// UpdateCartonInput patches a single carton. Nil fields are left unchanged.
type UpdateCartonInput struct {
	ProductName   *string
	Quantity      *int
	DamagedUnits  *int
	Location      *string
	ExpiryDate    *shared.Date
	MRP           *decimal.Decimal
	PurchasePrice *decimal.Decimal
	SalesPrice    *decimal.Decimal
}

// UpdateCarton applies a partial update to one carton. Outwarded cartons are
// immutable. Correcting the quantity to zero empties the carton: damaged
// units drop to zero and the carton is outwarded as of today.
func (s *Service) UpdateCarton(ctx context.Context, ledgerKey, cartonID string, in UpdateCartonInput) (Carton, error) {
	unlock := s.locks.Lock(ledgerKey)
	defer unlock()

	ledger, err := s.ledger.Load(ctx, ledgerKey)
	if err != nil {
		return Carton{}, err
	}
	i := findCarton(ledger, cartonID)
	if i < 0 {
		return Carton{}, fmt.Errorf("%w: %s", ErrCartonNotFound, cartonID)
	}
	c := ledger[i]
	if c.Outwarded() {
		return Carton{}, fmt.Errorf("%w: %s", ErrCartonOutwarded, cartonID)
	}

	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return Carton{}, &ValidationError{Field: "quantity_per_carton", Reason: "must be >= 0"}
		}
		c.Quantity = *in.Quantity
	}
	if in.ProductName != nil {
		c.ProductName = *in.ProductName
	}
	if in.DamagedUnits != nil {
		c.DamagedUnits = *in.DamagedUnits
	}
	if in.Location != nil {
		c.Location = normalizeCode(*in.Location)
	}
	if in.ExpiryDate != nil {
		c.ExpiryDate = *in.ExpiryDate
	}
	if in.MRP != nil {
		c.MRP = *in.MRP
	}
	if in.PurchasePrice != nil {
		c.PurchasePrice = *in.PurchasePrice
	}
	if in.SalesPrice != nil {
		c.SalesPrice = *in.SalesPrice
	}
	if c.Quantity == 0 {
		c.DamagedUnits = 0
		c.DateOutwarded = shared.DateOf(s.clock())
	}
	if err := c.Validate(); err != nil {
		return Carton{}, err
	}
	c.LastUpdated = shared.TimestampOf(s.clock())
	ledger[i] = c
	if err := s.ledger.Save(ctx, ledgerKey, ledger); err != nil {
		return Carton{}, err
	}
	s.log.Info("carton updated", "ledger", ledgerKey, "carton_id", cartonID)
	return c, nil
}

// DeleteCarton removes a carton from the ledger permanently. The carton's id
// is never reassigned; journals keep whatever referenced it. Outwarded
// cartons can be deleted too.
func (s *Service) DeleteCarton(ctx context.Context, ledgerKey, cartonID string) (Carton, error) {
	unlock := s.locks.Lock(ledgerKey)
	defer unlock()

	ledger, err := s.ledger.Load(ctx, ledgerKey)
	if err != nil {
		return Carton{}, err
	}
	i := findCarton(ledger, cartonID)
	if i < 0 {
		return Carton{}, fmt.Errorf("%w: %s", ErrCartonNotFound, cartonID)
	}
	deleted := ledger[i]
	ledger = append(ledger[:i], ledger[i+1:]...)
	if err := s.ledger.Save(ctx, ledgerKey, ledger); err != nil {
		return Carton{}, err
	}
	s.log.Info("carton deleted", "ledger", ledgerKey, "carton_id", cartonID)
	return deleted, nil
}

// HistoryView is the merged purchase and sales history, newest first.
type HistoryView struct {
	Rows    []txlog.HistoryRow `json:"rows"`
	Warning string             `json:"warning,omitempty"`
}

// History merges both journals into one newest-first view. The two journal
// files load concurrently.
func (s *Service) History(ctx context.Context, ledgerKey string) (HistoryView, error) {
	var (
		purchases, sales []txlog.Entry
		pWarn, sWarn     string
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		purchases, pWarn, err = s.loadJournal(ctx, ledgerKey, txlog.ScopePurchases)
		return err
	})
	g.Go(func() error {
		var err error
		sales, sWarn, err = s.loadJournal(ctx, ledgerKey, txlog.ScopeSales)
		return err
	})
	if err := g.Wait(); err != nil {
		return HistoryView{}, err
	}
	return HistoryView{
		Rows:    txlog.History(purchases, sales),
		Warning: joinWarnings(pWarn, sWarn),
	}, nil
}

// MonthlyView is the monthly report over one journal scope.
type MonthlyView struct {
	Scope   txlog.Scope        `json:"scope"`
	Rows    []txlog.MonthlyRow `json:"rows"`
	Warning string             `json:"warning,omitempty"`
}

// Monthly summarizes one journal scope by (month, product).
func (s *Service) Monthly(ctx context.Context, ledgerKey string, scope txlog.Scope) (MonthlyView, error) {
	want := txlog.ScopeSales
	if scope == txlog.ScopePurchases {
		want = txlog.ScopePurchases
	}
	entries, warning, err := s.loadJournal(ctx, ledgerKey, want)
	if err != nil {
		return MonthlyView{}, err
	}
	return MonthlyView{
		Scope:   want,
		Rows:    txlog.MonthlySummary(entries, want),
		Warning: warning,
	}, nil
}

// ClearTransactions truncates both journals for a company. The ledger itself
// is untouched. Irreversible; handlers require explicit confirmation.
func (s *Service) ClearTransactions(ctx context.Context, ledgerKey string) error {
	unlock := s.locks.Lock(ledgerKey)
	defer unlock()
	if err := s.journal.Clear(ctx, ledgerKey); err != nil {
		return err
	}
	s.log.Info("transaction logs cleared", "ledger", ledgerKey)
	return nil
}

// loadForRead degrades a corrupt ledger file to an empty ledger plus a
// warning instead of failing the read.
func (s *Service) loadForRead(ctx context.Context, ledgerKey string) ([]Carton, string, error) {
	ledger, err := s.ledger.Load(ctx, ledgerKey)
	if err != nil {
		if errors.Is(err, store.ErrCorrupt) {
			s.log.Warn("ledger file corrupt, serving empty ledger", "ledger", ledgerKey, "error", err)
			return []Carton{}, err.Error(), nil
		}
		return nil, "", err
	}
	return ledger, "", nil
}

func (s *Service) loadJournal(ctx context.Context, ledgerKey string, scope txlog.Scope) ([]txlog.Entry, string, error) {
	entries, err := s.journal.Load(ctx, ledgerKey, scope)
	if err != nil {
		if errors.Is(err, store.ErrCorrupt) {
			s.log.Warn("journal file corrupt, serving empty journal",
				"ledger", ledgerKey, "scope", scope, "error", err)
			return []txlog.Entry{}, err.Error(), nil
		}
		return nil, "", err
	}
	return entries, "", nil
}

func findCarton(ledger []Carton, cartonID string) int {
	for i := range ledger {
		if ledger[i].CartonID == cartonID {
			return i
		}
	}
	return -1
}

func purchaseEntry(c Carton, now shared.Timestamp) txlog.Entry {
	qty := decimal.NewFromInt(int64(c.Quantity))
	return txlog.Entry{
		ID:            uuid.NewString(),
		Date:          now,
		ProductID:     c.ProductID,
		ProductName:   c.ProductName,
		CartonID:      c.CartonID,
		Quantity:      c.Quantity,
		MRP:           c.MRP,
		PurchasePrice: c.PurchasePrice,
		SalesPrice:    c.SalesPrice,
		PurchaseValue: c.PurchasePrice.Mul(qty),
		SalesValue:    c.SalesPrice.Mul(qty),
		Type:          txlog.TypePurchase,
	}
}

func saleEntry(receipt SaleReceipt, sale CartonSale, c *Carton, now shared.Timestamp) txlog.Entry {
	e := txlog.Entry{
		ID:            uuid.NewString(),
		Date:          now,
		ProductID:     receipt.ProductID,
		ProductName:   receipt.ProductName,
		CartonID:      sale.CartonID,
		Quantity:      sale.Units,
		PurchasePrice: sale.PurchasePrice,
		SalesPrice:    sale.SalesPrice,
		PurchaseValue: sale.PurchaseValue,
		SalesValue:    sale.SalesValue,
		Type:          txlog.TypeSale,
	}
	if c != nil {
		e.MRP = c.MRP
	}
	return e
}

func joinWarnings(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "; " + b
	}
}
