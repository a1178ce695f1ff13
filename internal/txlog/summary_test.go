package txlog

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stockmitra/stockmitra/internal/shared"
)

func ts(day, hour int) shared.Timestamp {
	return shared.TimestampOf(time.Date(2025, time.March, day, hour, 0, 0, 0, time.UTC))
}

func saleEntry(day int, product string, qty int, salesPrice, purchasePrice int64) Entry {
	sp := decimal.NewFromInt(salesPrice)
	pp := decimal.NewFromInt(purchasePrice)
	q := decimal.NewFromInt(int64(qty))
	return Entry{
		ID:            product,
		Date:          ts(day, 10),
		ProductID:     product,
		ProductName:   product + " name",
		CartonID:      product + "-C01",
		Quantity:      qty,
		SalesPrice:    sp,
		PurchasePrice: pp,
		SalesValue:    sp.Mul(q),
		PurchaseValue: pp.Mul(q),
		Type:          TypeSale,
	}
}

func TestMonthlySummaryGroups(t *testing.T) {
	april := saleEntry(10, "A", 5, 10, 6)
	april.Date = shared.TimestampOf(time.Date(2025, time.April, 2, 9, 0, 0, 0, time.UTC))

	entries := []Entry{
		saleEntry(1, "A", 10, 10, 6),
		saleEntry(20, "A", 2, 14, 6),
		saleEntry(5, "B", 3, 20, 25),
		april,
	}

	rows := MonthlySummary(entries, ScopeSales)
	require.Len(t, rows, 3)

	// Sorted by (month, product id, product name) ascending.
	require.Equal(t, "2025-03", rows[0].Month)
	require.Equal(t, "A", rows[0].ProductID)
	require.Equal(t, "2025-03", rows[1].Month)
	require.Equal(t, "B", rows[1].ProductID)
	require.Equal(t, "2025-04", rows[2].Month)

	a := rows[0]
	require.Equal(t, 12, a.Units)
	require.True(t, a.SalesValue.Equal(decimal.NewFromInt(128)))   // 100 + 28
	require.True(t, a.PurchaseValue.Equal(decimal.NewFromInt(72))) // 60 + 12
	require.True(t, a.ProfitLoss.Equal(decimal.NewFromInt(56)))
	// 56 * 100 / 72, rounded to two decimals.
	require.True(t, a.ProfitMarginPct.Equal(decimal.RequireFromString("77.78")), "got %s", a.ProfitMarginPct)
	// Unweighted mean of per-entry prices: (10+14)/2, not weighted by units.
	require.True(t, a.AvgSalesPrice.Equal(decimal.NewFromInt(12)))
	require.True(t, a.AvgPurchasePrice.Equal(decimal.NewFromInt(6)))

	b := rows[1]
	require.True(t, b.ProfitLoss.Equal(decimal.NewFromInt(-15)), "loss-making rows keep their sign")
	require.True(t, b.ProfitMarginPct.Equal(decimal.NewFromInt(-20)))
}

func TestMonthlySummaryZeroPurchaseValue(t *testing.T) {
	e := saleEntry(1, "FREE", 5, 10, 0)
	rows := MonthlySummary([]Entry{e}, ScopeSales)
	require.Len(t, rows, 1)
	require.True(t, rows[0].ProfitMarginPct.IsZero(), "no margin against a zero purchase value")
}

func TestMonthlySummaryFiltersScope(t *testing.T) {
	purchase := saleEntry(1, "A", 10, 10, 6)
	purchase.Type = TypePurchase

	rows := MonthlySummary([]Entry{purchase, saleEntry(2, "A", 1, 10, 6)}, ScopePurchases)
	require.Len(t, rows, 1)
	require.Equal(t, 10, rows[0].Units)
}

func TestHistoryMergesNewestFirst(t *testing.T) {
	p1 := saleEntry(1, "A", 10, 10, 6)
	p1.Type = TypePurchase
	p2 := saleEntry(12, "B", 4, 20, 15)
	p2.Type = TypePurchase
	s1 := saleEntry(5, "A", 2, 10, 6)

	rows := History([]Entry{p1, p2}, []Entry{s1})
	require.Len(t, rows, 3)
	require.Equal(t, "B", rows[0].ProductID)
	require.Equal(t, TypeSale, rows[1].Type)
	require.Equal(t, "A", rows[2].ProductID)

	require.True(t, rows[0].Value.Equal(decimal.NewFromInt(60)), "purchase rows carry purchase value")
	require.True(t, rows[1].Value.Equal(decimal.NewFromInt(20)), "sale rows carry sales value")
}

func TestEntryMonth(t *testing.T) {
	require.Equal(t, "2025-03", saleEntry(1, "A", 1, 1, 1).Month())
	require.Equal(t, "", Entry{}.Month())
}
