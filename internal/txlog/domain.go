// Package txlog keeps the append-only journal of purchase and sale events per
// company, and derives transaction history and monthly summaries from it.
package txlog

import (
	"github.com/shopspring/decimal"

	"github.com/stockmitra/stockmitra/internal/shared"
)

// EntryType distinguishes purchase from sale events.
type EntryType string

const (
	// TypePurchase marks inbound stock additions.
	TypePurchase EntryType = "purchase"
	// TypeSale marks outbound sales.
	TypeSale EntryType = "sale"
)

// Scope selects which journal a report reads.
type Scope string

const (
	// ScopeSales reports over the sales journal.
	ScopeSales Scope = "sales"
	// ScopePurchases reports over the purchase journal.
	ScopePurchases Scope = "purchases"
)

// Entry is one immutable journal record. A single sale request can produce
// several entries, one per carton touched.
type Entry struct {
	ID            string           `json:"id"`
	Date          shared.Timestamp `json:"date"`
	ProductID     string           `json:"product_id"`
	ProductName   string           `json:"product_name"`
	CartonID      string           `json:"carton_id"`
	Quantity      int              `json:"quantity"`
	MRP           decimal.Decimal  `json:"mrp"`
	PurchasePrice decimal.Decimal  `json:"purchase_price"`
	SalesPrice    decimal.Decimal  `json:"sales_price"`
	PurchaseValue decimal.Decimal  `json:"purchase_value"`
	SalesValue    decimal.Decimal  `json:"sales_value"`
	Type          EntryType        `json:"type"`
}

// Month returns the entry's YYYY-MM grouping key.
func (e Entry) Month() string {
	s := e.Date.String()
	if len(s) < 7 {
		return s
	}
	return s[:7]
}
