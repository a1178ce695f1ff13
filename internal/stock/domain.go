package stock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/stockmitra/stockmitra/internal/shared"
)

// Carton is the atomic unit of stock: one physical batch of a product with
// its own quantity, dates and pricing. The JSON field names match the ledger
// store format.
type Carton struct {
	CartonID      string           `json:"carton_id"`
	ProductID     string           `json:"product_id"`
	ProductName   string           `json:"product_name"`
	Company       string           `json:"company,omitempty"`
	Quantity      int              `json:"quantity_per_carton"`
	DamagedUnits  int              `json:"damaged_units"`
	Location      string           `json:"location"`
	DateInwarded  shared.Date      `json:"date_inwarded"`
	ExpiryDate    shared.Date      `json:"expiry_date"`
	DateOutwarded shared.Date      `json:"date_outwarded"`
	MRP           decimal.Decimal  `json:"mrp"`
	PurchasePrice decimal.Decimal  `json:"purchase_price"`
	SalesPrice    decimal.Decimal  `json:"sales_price"`
	LastUpdated   shared.Timestamp `json:"last_updated"`
}

var (
	// ErrNoSellableStock indicates every carton of the product is outwarded
	// or expired; the sale is blocked entirely.
	ErrNoSellableStock = errors.New("stock: no sellable stock")
	// ErrNothingRequested indicates an all-zero sell request.
	ErrNothingRequested = errors.New("stock: nothing requested")
	// ErrCartonNotFound indicates a carton lookup by id failed.
	ErrCartonNotFound = errors.New("stock: carton not found")
	// ErrCartonOutwarded indicates a mutation against an outwarded carton,
	// which is immutable except for permanent deletion.
	ErrCartonOutwarded = errors.New("stock: carton already outwarded")
)

// ValidationError reports an input rejected before any mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("stock: invalid %s: %s", e.Field, e.Reason)
}

// Outwarded reports whether the carton has been fully consumed/removed and is
// excluded from sellable and aggregation views.
func (c *Carton) Outwarded() bool { return !c.DateOutwarded.IsZero() }

// Expired classifies the carton against ref per the inclusive expiry policy.
func (c *Carton) Expired(ref shared.Date) bool { return shared.IsExpired(c.ExpiryDate, ref) }

// Sellable reports whether the carton can satisfy a sale as of ref.
func (c *Carton) Sellable(ref shared.Date) bool {
	return !c.Outwarded() && !c.Expired(ref)
}

// Validate enforces the carton invariants. It is called at construction and
// again before any accepted mutation is applied.
func (c *Carton) Validate() error {
	if c.ProductID == "" {
		return &ValidationError{Field: "product_id", Reason: "required"}
	}
	if c.ProductName == "" {
		return &ValidationError{Field: "product_name", Reason: "required"}
	}
	if c.Location == "" {
		return &ValidationError{Field: "location", Reason: "required"}
	}
	if c.DateInwarded.IsZero() {
		return &ValidationError{Field: "date_inwarded", Reason: "required"}
	}
	if c.Quantity < 0 {
		return &ValidationError{Field: "quantity_per_carton", Reason: "must be >= 0"}
	}
	if c.DamagedUnits < 0 || c.DamagedUnits > c.Quantity {
		return &ValidationError{Field: "damaged_units", Reason: "must be between 0 and quantity_per_carton"}
	}
	if c.MRP.IsNegative() {
		return &ValidationError{Field: "mrp", Reason: "must be >= 0"}
	}
	if c.PurchasePrice.IsNegative() {
		return &ValidationError{Field: "purchase_price", Reason: "must be >= 0"}
	}
	if c.SalesPrice.IsNegative() {
		return &ValidationError{Field: "sales_price", Reason: "must be >= 0"}
	}
	if c.Quantity == 0 && !c.Outwarded() {
		return &ValidationError{Field: "date_outwarded", Reason: "empty carton must be outwarded"}
	}
	return nil
}

// NewCartonParams carries the fields needed to construct one carton.
type NewCartonParams struct {
	ProductID     string
	ProductName   string
	Company       string
	Quantity      int
	DamagedUnits  int
	Location      string
	DateInwarded  shared.Date
	ExpiryDate    shared.Date
	MRP           decimal.Decimal
	PurchasePrice decimal.Decimal
	SalesPrice    decimal.Decimal
}

// NewCarton builds a validated carton. seq is the carton's sequence number
// within its product, assigned by the ledger service; sequence numbers are
// monotonic per product and never reused even after deletion.
func NewCarton(p NewCartonParams, seq int, now shared.Timestamp) (Carton, error) {
	if p.Quantity <= 0 {
		return Carton{}, &ValidationError{Field: "quantity_per_carton", Reason: "must be > 0"}
	}
	productID := normalizeCode(p.ProductID)
	c := Carton{
		CartonID:      FormatCartonID(productID, seq),
		ProductID:     productID,
		ProductName:   strings.TrimSpace(p.ProductName),
		Company:       p.Company,
		Quantity:      p.Quantity,
		DamagedUnits:  p.DamagedUnits,
		Location:      normalizeCode(p.Location),
		DateInwarded:  p.DateInwarded,
		ExpiryDate:    p.ExpiryDate,
		MRP:           p.MRP,
		PurchasePrice: p.PurchasePrice,
		SalesPrice:    p.SalesPrice,
		LastUpdated:   now,
	}
	if err := c.Validate(); err != nil {
		return Carton{}, err
	}
	return c, nil
}

// FormatCartonID renders a carton id as {PRODUCT}-C{NN} with a zero-padded
// sequence number.
func FormatCartonID(productID string, seq int) string {
	return fmt.Sprintf("%s-C%02d", productID, seq)
}

// MaxCartonSequence returns the highest sequence number present in the ledger
// for a product. Malformed carton ids are skipped rather than treated as
// errors.
func MaxCartonSequence(productID string, ledger []Carton) int {
	maxSeq := 0
	for i := range ledger {
		if ledger[i].ProductID != productID {
			continue
		}
		if seq, ok := cartonSequence(ledger[i].CartonID); ok && seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq
}

// normalizeCode upper-cases and trims user-entered product ids and locations.
func normalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func cartonSequence(cartonID string) (int, bool) {
	idx := strings.LastIndex(cartonID, "-C")
	if idx < 0 {
		return 0, false
	}
	seq, err := strconv.Atoi(cartonID[idx+2:])
	if err != nil {
		return 0, false
	}
	return seq, true
}
