package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stockmitra/stockmitra/internal/txlog"
)

func TestFormatter(t *testing.T) {
	f := NewFormatter("₹")
	require.Equal(t, "₹1,234.50", f.Money(decimal.RequireFromString("1234.5")))
	require.Equal(t, "₹0.00", f.Money(decimal.Zero))
	require.Equal(t, "₹-0.50", f.Money(decimal.RequireFromString("-0.5")))
	require.Equal(t, "77.78%", f.Percent(decimal.RequireFromString("77.78")))
	// Amounts beyond float64's exact integer range keep their digits.
	require.Equal(t, "₹9,007,199,254,740,993.25", f.Money(decimal.RequireFromString("9007199254740993.25")))
}

func TestMonthlyCSV(t *testing.T) {
	rows := []txlog.MonthlyRow{{
		Month:            "2025-03",
		ProductID:        "PARA01",
		ProductName:      "Paracetamol",
		Units:            12,
		SalesValue:       decimal.NewFromInt(128),
		PurchaseValue:    decimal.NewFromInt(72),
		ProfitLoss:       decimal.NewFromInt(56),
		ProfitMarginPct:  decimal.RequireFromString("77.78"),
		AvgSalesPrice:    decimal.NewFromInt(12),
		AvgPurchasePrice: decimal.NewFromInt(6),
	}}

	var buf bytes.Buffer
	require.NoError(t, MonthlyCSV(&buf, rows, NewFormatter("₹")))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "Month", records[0][0])
	require.Equal(t, []string{
		"2025-03", "PARA01", "Paracetamol", "12",
		"₹128.00", "₹72.00", "₹56.00", "77.78%", "₹12.00", "₹6.00",
	}, records[1])
}

func TestHistoryCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HistoryCSV(&buf, nil, NewFormatter("$")))
	require.True(t, strings.HasPrefix(buf.String(), "Date,Type,Product ID"))
}
