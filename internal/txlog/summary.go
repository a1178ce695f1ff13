package txlog

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/stockmitra/stockmitra/internal/shared"
)

// MonthlyRow is one (month, product) group of the monthly report.
type MonthlyRow struct {
	Month            string          `json:"month"`
	ProductID        string          `json:"product_id"`
	ProductName      string          `json:"product_name"`
	Units            int             `json:"units"`
	SalesValue       decimal.Decimal `json:"sales_value"`
	PurchaseValue    decimal.Decimal `json:"purchase_value"`
	ProfitLoss       decimal.Decimal `json:"profit_loss"`
	ProfitMarginPct  decimal.Decimal `json:"profit_margin_pct"`
	AvgSalesPrice    decimal.Decimal `json:"avg_sales_price"`
	AvgPurchasePrice decimal.Decimal `json:"avg_purchase_price"`
}

type monthlyKey struct {
	month       string
	productID   string
	productName string
}

type monthlyAcc struct {
	units       int
	salesVal    decimal.Decimal
	purchaseVal decimal.Decimal
	salesSum    decimal.Decimal
	purchaseSum decimal.Decimal
	entries     int
}

// MonthlySummary groups journal entries by (month, product_id, product_name),
// summing units and values and deriving profit/loss. Per-unit prices are the
// arithmetic mean of the per-entry prices in the group, not weighted by
// quantity. Rows come back sorted by the group key ascending.
func MonthlySummary(entries []Entry, scope Scope) []MonthlyRow {
	want := TypeSale
	if scope == ScopePurchases {
		want = TypePurchase
	}
	groups := make(map[monthlyKey]*monthlyAcc)
	for _, e := range entries {
		if e.Type != want {
			continue
		}
		key := monthlyKey{month: e.Month(), productID: e.ProductID, productName: e.ProductName}
		acc, ok := groups[key]
		if !ok {
			acc = &monthlyAcc{
				salesVal:    decimal.Zero,
				purchaseVal: decimal.Zero,
				salesSum:    decimal.Zero,
				purchaseSum: decimal.Zero,
			}
			groups[key] = acc
		}
		acc.units += e.Quantity
		acc.salesVal = acc.salesVal.Add(e.SalesValue)
		acc.purchaseVal = acc.purchaseVal.Add(e.PurchaseValue)
		acc.salesSum = acc.salesSum.Add(e.SalesPrice)
		acc.purchaseSum = acc.purchaseSum.Add(e.PurchasePrice)
		acc.entries++
	}

	hundred := decimal.NewFromInt(100)
	rows := make([]MonthlyRow, 0, len(groups))
	for key, acc := range groups {
		row := MonthlyRow{
			Month:         key.month,
			ProductID:     key.productID,
			ProductName:   key.productName,
			Units:         acc.units,
			SalesValue:    acc.salesVal,
			PurchaseValue: acc.purchaseVal,
			ProfitLoss:    acc.salesVal.Sub(acc.purchaseVal),
		}
		if acc.purchaseVal.IsPositive() {
			row.ProfitMarginPct = row.ProfitLoss.Mul(hundred).DivRound(acc.purchaseVal, 2)
		} else {
			row.ProfitMarginPct = decimal.Zero
		}
		n := decimal.NewFromInt(int64(acc.entries))
		row.AvgSalesPrice = acc.salesSum.DivRound(n, 2)
		row.AvgPurchasePrice = acc.purchaseSum.DivRound(n, 2)
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		return a.ProductName < b.ProductName
	})
	return rows
}

// HistoryRow is one line of the combined purchase and sales history.
type HistoryRow struct {
	Date        shared.Timestamp `json:"date"`
	Type        EntryType        `json:"type"`
	ProductID   string           `json:"product_id"`
	ProductName string           `json:"product_name"`
	CartonID    string           `json:"carton_id"`
	Quantity    int              `json:"quantity"`
	Value       decimal.Decimal  `json:"value"`
}

// History merges purchase and sales entries into one view sorted newest
// first. A purchase row's value is its purchase value, a sale row's its
// sales value.
func History(purchases, sales []Entry) []HistoryRow {
	rows := make([]HistoryRow, 0, len(purchases)+len(sales))
	for _, e := range purchases {
		rows = append(rows, HistoryRow{
			Date:        e.Date,
			Type:        TypePurchase,
			ProductID:   e.ProductID,
			ProductName: e.ProductName,
			CartonID:    e.CartonID,
			Quantity:    e.Quantity,
			Value:       e.PurchaseValue,
		})
	}
	for _, e := range sales {
		rows = append(rows, HistoryRow{
			Date:        e.Date,
			Type:        TypeSale,
			ProductID:   e.ProductID,
			ProductName: e.ProductName,
			CartonID:    e.CartonID,
			Quantity:    e.Quantity,
			Value:       e.SalesValue,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date.Time().After(rows[j].Date.Time())
	})
	return rows
}
