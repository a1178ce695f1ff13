package stock

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/stockmitra/stockmitra/internal/shared"
)

// SaleMode distinguishes how a carton was consumed during allocation.
type SaleMode string

const (
	// SaleModeFull means the whole carton was sold, whatever it held.
	SaleModeFull SaleMode = "full"
	// SaleModeLoose means individual pieces were deducted.
	SaleModeLoose SaleMode = "loose"
)

// SaleRequest asks for N full cartons plus M loose pieces of one product.
type SaleRequest struct {
	ProductID   string
	FullCartons int
	LoosePieces int
}

// CartonSale records the slice of a sale taken from one carton.
type CartonSale struct {
	CartonID      string          `json:"carton_id"`
	Units         int             `json:"units"`
	Mode          SaleMode        `json:"mode"`
	SalesPrice    decimal.Decimal `json:"sales_price"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalesValue    decimal.Decimal `json:"sales_value"`
	PurchaseValue decimal.Decimal `json:"purchase_value"`
}

// Shortfall describes the unfulfilled remainder of a partially satisfied
// sale. It is a warning attached to a committed result, not an error.
type Shortfall struct {
	CartonsNeeded int `json:"cartons_needed"`
	PiecesNeeded  int `json:"pieces_needed"`
}

// SaleReceipt describes the outcome of one sell operation.
type SaleReceipt struct {
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	TotalUnits      int             `json:"total_units_deducted"`
	TotalSalesValue decimal.Decimal `json:"total_sales_value"`
	Cartons         []CartonSale    `json:"cartons_touched"`
	Shortfall       *Shortfall      `json:"shortfall,omitempty"`
}

// Allocate consumes sellable cartons of the requested product to satisfy a
// sell request, mutating the ledger in place.
//
// Candidates are the product's non-outwarded, non-expired cartons ordered by
// inward date ascending: consumption is strictly FIFO by inward date, which
// deliberately differs from the FEFO-by-expiry ordering the summary view
// recommends. Two phases walk that one ordering: the full-carton phase
// empties whole cartons, counting whatever each held as its units; the
// loose-piece phase then deducts piece by piece from where the first phase
// stopped. A carton drained to zero is outwarded and its damaged units
// cleared.
//
// Exhausting the candidates does not roll anything back: whatever was
// consumed stays committed and the receipt carries the shortfall as a
// warning. Only an empty candidate set (ErrNoSellableStock) or an all-zero
// request (ErrNothingRequested) blocks the sale.
func Allocate(ledger []Carton, req SaleRequest, ref shared.Date, now shared.Timestamp) (SaleReceipt, error) {
	if req.FullCartons < 0 || req.LoosePieces < 0 {
		return SaleReceipt{}, &ValidationError{Field: "quantity", Reason: "must be >= 0"}
	}
	if req.FullCartons == 0 && req.LoosePieces == 0 {
		return SaleReceipt{}, ErrNothingRequested
	}

	var candidates []*Carton
	for i := range ledger {
		c := &ledger[i]
		if c.ProductID == req.ProductID && c.Sellable(ref) {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return SaleReceipt{}, ErrNoSellableStock
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].DateInwarded.Before(candidates[j].DateInwarded)
	})

	receipt := SaleReceipt{
		ProductID:       req.ProductID,
		ProductName:     candidates[0].ProductName,
		TotalSalesValue: decimal.Zero,
	}

	fullConsumed := 0
	idx := 0
	for fullConsumed < req.FullCartons && idx < len(candidates) {
		c := candidates[idx]
		if c.Quantity > 0 {
			units := c.Quantity
			c.Quantity = 0
			c.DamagedUnits = 0
			c.DateOutwarded = ref
			c.LastUpdated = now
			receipt.Cartons = append(receipt.Cartons, cartonSale(c, units, SaleModeFull))
			receipt.TotalUnits += units
			fullConsumed++
		}
		idx++
	}

	remaining := req.LoosePieces
	for remaining > 0 && idx < len(candidates) {
		c := candidates[idx]
		if c.Quantity > 0 {
			units := min(remaining, c.Quantity)
			c.Quantity -= units
			remaining -= units
			if c.Quantity == 0 {
				c.DateOutwarded = ref
				c.DamagedUnits = 0
			}
			c.LastUpdated = now
			receipt.Cartons = append(receipt.Cartons, cartonSale(c, units, SaleModeLoose))
			receipt.TotalUnits += units
		}
		idx++
	}

	for _, sale := range receipt.Cartons {
		receipt.TotalSalesValue = receipt.TotalSalesValue.Add(sale.SalesValue)
	}
	if fullConsumed < req.FullCartons || remaining > 0 {
		receipt.Shortfall = &Shortfall{
			CartonsNeeded: req.FullCartons - fullConsumed,
			PiecesNeeded:  remaining,
		}
	}
	return receipt, nil
}

func cartonSale(c *Carton, units int, mode SaleMode) CartonSale {
	qty := decimal.NewFromInt(int64(units))
	return CartonSale{
		CartonID:      c.CartonID,
		Units:         units,
		Mode:          mode,
		SalesPrice:    c.SalesPrice,
		PurchasePrice: c.PurchasePrice,
		SalesValue:    c.SalesPrice.Mul(qty),
		PurchaseValue: c.PurchasePrice.Mul(qty),
	}
}
