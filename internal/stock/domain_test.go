package stock

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stockmitra/stockmitra/internal/shared"
)

func testClock() time.Time {
	return time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
}

func newTestCarton(t *testing.T, id string, seq int) Carton {
	t.Helper()
	c, err := NewCarton(NewCartonParams{
		ProductID:    id,
		ProductName:  "Paracetamol 500mg",
		Quantity:     24,
		Location:     "a1",
		DateInwarded: shared.NewDate(2025, time.January, 10),
		MRP:          decimal.NewFromInt(50),
	}, seq, shared.TimestampOf(testClock()))
	require.NoError(t, err)
	return c
}

func TestNewCartonNormalizes(t *testing.T) {
	c, err := NewCarton(NewCartonParams{
		ProductID:    "  para01 ",
		ProductName:  " Paracetamol 500mg ",
		Quantity:     24,
		Location:     "a1",
		DateInwarded: shared.NewDate(2025, time.January, 10),
	}, 3, shared.TimestampOf(testClock()))
	require.NoError(t, err)
	require.Equal(t, "PARA01", c.ProductID)
	require.Equal(t, "PARA01-C03", c.CartonID)
	require.Equal(t, "Paracetamol 500mg", c.ProductName)
	require.Equal(t, "A1", c.Location)
}

func TestNewCartonRejectsBadInput(t *testing.T) {
	base := NewCartonParams{
		ProductID:    "PARA01",
		ProductName:  "Paracetamol",
		Quantity:     10,
		Location:     "A1",
		DateInwarded: shared.NewDate(2025, time.January, 10),
	}
	now := shared.TimestampOf(testClock())

	p := base
	p.Quantity = 0
	_, err := NewCarton(p, 1, now)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "quantity_per_carton", verr.Field)

	p = base
	p.DamagedUnits = 11
	_, err = NewCarton(p, 1, now)
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "damaged_units", verr.Field)

	p = base
	p.MRP = decimal.NewFromInt(-1)
	_, err = NewCarton(p, 1, now)
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "mrp", verr.Field)

	p = base
	p.Location = "  "
	_, err = NewCarton(p, 1, now)
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "location", verr.Field)
}

func TestCartonClassification(t *testing.T) {
	ref := shared.NewDate(2025, time.March, 15)
	c := newTestCarton(t, "PARA01", 1)

	require.True(t, c.Sellable(ref))

	c.ExpiryDate = ref
	require.True(t, c.Expired(ref), "expiry date itself counts as expired")
	require.False(t, c.Sellable(ref))

	c.ExpiryDate = ref.AddDays(1)
	require.False(t, c.Expired(ref))
	require.True(t, c.Sellable(ref))

	c.DateOutwarded = ref
	require.True(t, c.Outwarded())
	require.False(t, c.Sellable(ref))
}

func TestCartonIDSequencing(t *testing.T) {
	require.Equal(t, "PARA01-C07", FormatCartonID("PARA01", 7))
	require.Equal(t, "PARA01-C100", FormatCartonID("PARA01", 100))

	ledger := []Carton{
		newTestCarton(t, "PARA01", 1),
		newTestCarton(t, "PARA01", 9),
		newTestCarton(t, "IBU02", 4),
		{CartonID: "PARA01-junk", ProductID: "PARA01"},
	}
	require.Equal(t, 9, MaxCartonSequence("PARA01", ledger))
	require.Equal(t, 4, MaxCartonSequence("IBU02", ledger))
	require.Equal(t, 0, MaxCartonSequence("MISSING", ledger))
}
