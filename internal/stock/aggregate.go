package stock

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/stockmitra/stockmitra/internal/shared"
)

// Thresholds used by the advisory remarks on a product summary.
const (
	fifoAgeDays       = 90
	fefoUrgentDays    = 60
	fefoWarningDays   = 180
	defaultLowStock   = 10
	defaultExpirySoon = 60
)

// CartonDetail is one active carton row in a product summary, ordered for
// display by (expiry asc, absent last; then inward asc, absent first).
type CartonDetail struct {
	CartonID     string      `json:"carton_id"`
	Quantity     int         `json:"quantity_per_carton"`
	DamagedUnits int         `json:"damaged_units"`
	Location     string      `json:"location"`
	DateInwarded shared.Date `json:"date_inwarded"`
	ExpiryDate   shared.Date `json:"expiry_date"`
	Expired      bool        `json:"expired"`
}

// StockPointer names one carton singled out by the aggregator, either the
// oldest stock (FIFO candidate) or the nearest future expiry (FEFO candidate).
type StockPointer struct {
	CartonID string      `json:"carton_id"`
	Date     shared.Date `json:"date"`
}

// ProductSummary is the per-product rollup behind the find-stock view.
type ProductSummary struct {
	ProductID     string            `json:"product_id"`
	ProductName   string            `json:"product_name"`
	MRPs          []decimal.Decimal `json:"mrps"`
	TotalLive     int               `json:"total_live_units"`
	TotalDamaged  int               `json:"total_damaged_units"`
	TotalExpired  int               `json:"total_expired_units"`
	LiveCartons   int               `json:"live_cartons"`
	Locations     []string          `json:"locations"`
	OldestStock   *StockPointer     `json:"oldest_stock,omitempty"`
	NearestExpiry *StockPointer     `json:"nearest_expiry,omitempty"`
	Cartons       []CartonDetail    `json:"cartons"`
	Outwarded     []string          `json:"outwarded_cartons,omitempty"`
	Remarks       []string          `json:"remarks,omitempty"`
}

// Summarize computes the product summary over every carton of productID as of
// ref. Expired units count into both the expired and damaged totals, never
// into live; outwarded cartons are reported separately and join no total.
func Summarize(productID string, ledger []Carton, ref shared.Date) ProductSummary {
	s := ProductSummary{ProductID: productID}
	locations := make(map[string]struct{})
	mrps := make(map[string]decimal.Decimal)
	var oldest, nearest *StockPointer

	for i := range ledger {
		c := &ledger[i]
		if c.ProductID != productID {
			continue
		}
		if s.ProductName == "" {
			s.ProductName = c.ProductName
		}
		locations[c.Location] = struct{}{}
		if c.MRP.IsPositive() {
			mrps[c.MRP.String()] = c.MRP
		}
		if c.Outwarded() {
			s.Outwarded = append(s.Outwarded, c.CartonID)
			continue
		}

		expired := c.Expired(ref)
		if expired {
			s.TotalExpired += c.Quantity
			s.TotalDamaged += c.Quantity
		} else {
			s.TotalLive += c.Quantity
			s.TotalDamaged += c.DamagedUnits
			s.LiveCartons++
			if oldest == nil || c.DateInwarded.Before(oldest.Date) {
				oldest = &StockPointer{CartonID: c.CartonID, Date: c.DateInwarded}
			}
			if !c.ExpiryDate.IsZero() && (nearest == nil || c.ExpiryDate.Before(nearest.Date)) {
				nearest = &StockPointer{CartonID: c.CartonID, Date: c.ExpiryDate}
			}
		}
		s.Cartons = append(s.Cartons, CartonDetail{
			CartonID:     c.CartonID,
			Quantity:     c.Quantity,
			DamagedUnits: c.DamagedUnits,
			Location:     c.Location,
			DateInwarded: c.DateInwarded,
			ExpiryDate:   c.ExpiryDate,
			Expired:      expired,
		})
	}

	sort.SliceStable(s.Cartons, func(i, j int) bool {
		a, b := s.Cartons[i], s.Cartons[j]
		if !a.ExpiryDate.Equal(b.ExpiryDate) {
			// Absent expiry sorts last, treated as far future.
			if a.ExpiryDate.IsZero() {
				return false
			}
			if b.ExpiryDate.IsZero() {
				return true
			}
			return a.ExpiryDate.Before(b.ExpiryDate)
		}
		// Absent inward date sorts first, treated as far past.
		if a.DateInwarded.IsZero() != b.DateInwarded.IsZero() {
			return a.DateInwarded.IsZero()
		}
		return a.DateInwarded.Before(b.DateInwarded)
	})

	s.Locations = sortedKeys(locations)
	for _, mrp := range mrps {
		s.MRPs = append(s.MRPs, mrp)
	}
	sort.Slice(s.MRPs, func(i, j int) bool { return s.MRPs[i].LessThan(s.MRPs[j]) })
	s.OldestStock = oldest
	s.NearestExpiry = nearest
	s.Remarks = summaryRemarks(oldest, nearest, s.Outwarded, ref)
	return s
}

// summaryRemarks emits the advisory FIFO/FEFO notes. The two signals are
// independent and may both appear; a nearest expiry at or past ref is
// suppressed since those units are already counted as expired.
func summaryRemarks(oldest, nearest *StockPointer, outwarded []string, ref shared.Date) []string {
	var remarks []string
	if oldest != nil {
		if age := ref.Sub(oldest.Date); age > fifoAgeDays {
			remarks = append(remarks, fmt.Sprintf(
				"Carton %s (inwarded %s) is older stock. Consider prioritizing its sale (FIFO).",
				oldest.CartonID, oldest.Date))
		} else {
			remarks = append(remarks, fmt.Sprintf(
				"The oldest active sellable stock is carton %s (inwarded %s).",
				oldest.CartonID, oldest.Date))
		}
	}
	if nearest != nil {
		switch days := shared.DaysUntil(nearest.Date, ref); {
		case days <= 0:
			// Already expired, counted elsewhere.
		case days <= fefoUrgentDays:
			remarks = append(remarks, fmt.Sprintf(
				"URGENT: carton %s expires on %s (in %d days). Prioritize selling this carton (FEFO).",
				nearest.CartonID, nearest.Date, days))
		case days <= fefoWarningDays:
			remarks = append(remarks, fmt.Sprintf(
				"Warning: carton %s expires on %s (in %d days). Keep an eye on this stock.",
				nearest.CartonID, nearest.Date, days))
		default:
			remarks = append(remarks, fmt.Sprintf(
				"The earliest expiring active sellable stock is carton %s (expires %s).",
				nearest.CartonID, nearest.Date))
		}
	}
	if len(outwarded) > 0 {
		remarks = append(remarks, fmt.Sprintf(
			"Some cartons of this product have been outwarded previously: %s.",
			strings.Join(outwarded, ", ")))
	}
	return remarks
}

// StockAlert is one dashboard alert row.
type StockAlert struct {
	ProductID   string      `json:"product_id"`
	ProductName string      `json:"product_name"`
	CartonID    string      `json:"carton_id"`
	Quantity    int         `json:"quantity_per_carton"`
	ExpiryDate  shared.Date `json:"expiry_date,omitempty"`
}

// DashboardStats folds the whole ledger into the dashboard KPIs.
type DashboardStats struct {
	TotalLive           int             `json:"total_live_units"`
	TotalDamagedExpired int             `json:"total_damaged_expired_units"`
	TotalCartons        int             `json:"total_cartons"`
	TotalStockValue     decimal.Decimal `json:"total_stock_value"`
	LowStockAlerts      []StockAlert    `json:"low_stock_alerts"`
	ExpiryAlerts        []StockAlert    `json:"expiry_alerts"`
}

// DashboardConfig carries the alert thresholds. A zero threshold or window
// disables that alert list; defaults are applied at construction, not here.
type DashboardConfig struct {
	LowStockThreshold int
	ExpirySoonDays    int
}

// DefaultDashboardConfig returns the stock alert defaults.
func DefaultDashboardConfig() DashboardConfig {
	return DashboardConfig{LowStockThreshold: defaultLowStock, ExpirySoonDays: defaultExpirySoon}
}

// Dashboard computes whole-ledger KPIs using the same per-carton
// classification as Summarize. Stock value covers non-expired, non-outwarded
// cartons only, at MRP.
func Dashboard(ledger []Carton, ref shared.Date, cfg DashboardConfig) DashboardStats {
	stats := DashboardStats{TotalCartons: len(ledger), TotalStockValue: decimal.Zero}
	for i := range ledger {
		c := &ledger[i]
		if c.Outwarded() {
			continue
		}
		if c.Expired(ref) {
			stats.TotalDamagedExpired += c.Quantity
			continue
		}
		stats.TotalLive += c.Quantity
		stats.TotalDamagedExpired += c.DamagedUnits
		stats.TotalStockValue = stats.TotalStockValue.Add(c.MRP.Mul(decimal.NewFromInt(int64(c.Quantity))))
		if c.Quantity <= cfg.LowStockThreshold {
			stats.LowStockAlerts = append(stats.LowStockAlerts, StockAlert{
				ProductID:   c.ProductID,
				ProductName: c.ProductName,
				CartonID:    c.CartonID,
				Quantity:    c.Quantity,
			})
		}
		if !c.ExpiryDate.IsZero() {
			if days := shared.DaysUntil(c.ExpiryDate, ref); days > 0 && days <= cfg.ExpirySoonDays {
				stats.ExpiryAlerts = append(stats.ExpiryAlerts, StockAlert{
					ProductID:   c.ProductID,
					ProductName: c.ProductName,
					CartonID:    c.CartonID,
					Quantity:    c.Quantity,
					ExpiryDate:  c.ExpiryDate,
				})
			}
		}
	}
	return stats
}

// RollupStatus tags a product rollup row.
type RollupStatus string

const (
	// StatusOutOfStock means no live pieces and nothing damaged or expired.
	StatusOutOfStock RollupStatus = "OUT_OF_STOCK"
	// StatusAllExpired means the product has expired stock and no live pieces.
	StatusAllExpired RollupStatus = "ALL_EXPIRED"
	// StatusSomeDamagedOrExpired means live stock exists alongside damaged or
	// expired units.
	StatusSomeDamagedOrExpired RollupStatus = "SOME_DAMAGED_OR_EXPIRED"
	// StatusInStock is the default healthy state.
	StatusInStock RollupStatus = "IN_STOCK"
)

// ProductRollup is one row of the whole-ledger company stock view.
type ProductRollup struct {
	ProductID           string          `json:"product_id"`
	ProductName         string          `json:"product_name"`
	LiveCartons         int             `json:"live_cartons"`
	LivePieces          int             `json:"live_pieces"`
	DamagedExpiredUnits int             `json:"damaged_expired_units"`
	EarliestInwarded    shared.Date     `json:"earliest_inwarded"`
	EarliestExpiry      shared.Date     `json:"earliest_expiry"`
	LatestOutwarded     shared.Date     `json:"latest_outwarded"`
	AvgMRP              decimal.Decimal `json:"avg_mrp"`
	AvgPurchasePrice    decimal.Decimal `json:"avg_purchase_price"`
	AvgSalesPrice       decimal.Decimal `json:"avg_sales_price"`
	Locations           []string        `json:"locations"`
	Status              RollupStatus    `json:"status"`
}

type rollupAccumulator struct {
	rollup      ProductRollup
	locations   map[string]struct{}
	mrpSum      decimal.Decimal
	mrpCount    int
	purchaseSum decimal.Decimal
	purchaseCnt int
	salesSum    decimal.Decimal
	salesCount  int
	hasExpired  bool
	hasDamaged  bool
}

// AggregateByProduct groups the whole ledger by product id and computes one
// rollup per group, sorted by product id ascending. Price averages are the
// arithmetic mean of per-unit prices across cartons carrying one, not
// weighted by quantity.
func AggregateByProduct(ledger []Carton, ref shared.Date) []ProductRollup {
	groups := make(map[string]*rollupAccumulator)
	for i := range ledger {
		c := &ledger[i]
		acc, ok := groups[c.ProductID]
		if !ok {
			acc = &rollupAccumulator{
				rollup: ProductRollup{
					ProductID:   c.ProductID,
					ProductName: c.ProductName,
				},
				locations:   make(map[string]struct{}),
				mrpSum:      decimal.Zero,
				purchaseSum: decimal.Zero,
				salesSum:    decimal.Zero,
			}
			groups[c.ProductID] = acc
		}
		acc.locations[c.Location] = struct{}{}
		if c.MRP.IsPositive() {
			acc.mrpSum = acc.mrpSum.Add(c.MRP)
			acc.mrpCount++
		}
		if c.PurchasePrice.IsPositive() {
			acc.purchaseSum = acc.purchaseSum.Add(c.PurchasePrice)
			acc.purchaseCnt++
		}
		if c.SalesPrice.IsPositive() {
			acc.salesSum = acc.salesSum.Add(c.SalesPrice)
			acc.salesCount++
		}

		if c.Outwarded() {
			if acc.rollup.LatestOutwarded.IsZero() || c.DateOutwarded.After(acc.rollup.LatestOutwarded) {
				acc.rollup.LatestOutwarded = c.DateOutwarded
			}
			continue
		}
		if c.Expired(ref) {
			acc.hasExpired = true
			acc.rollup.DamagedExpiredUnits += c.Quantity
			continue
		}
		acc.rollup.LiveCartons++
		acc.rollup.LivePieces += c.Quantity
		acc.rollup.DamagedExpiredUnits += c.DamagedUnits
		if c.DamagedUnits > 0 {
			acc.hasDamaged = true
		}
		if acc.rollup.EarliestInwarded.IsZero() || c.DateInwarded.Before(acc.rollup.EarliestInwarded) {
			acc.rollup.EarliestInwarded = c.DateInwarded
		}
		if !c.ExpiryDate.IsZero() && (acc.rollup.EarliestExpiry.IsZero() || c.ExpiryDate.Before(acc.rollup.EarliestExpiry)) {
			acc.rollup.EarliestExpiry = c.ExpiryDate
		}
	}

	rollups := make([]ProductRollup, 0, len(groups))
	for _, acc := range groups {
		r := acc.rollup
		r.Locations = sortedKeys(acc.locations)
		if acc.mrpCount > 0 {
			r.AvgMRP = acc.mrpSum.DivRound(decimal.NewFromInt(int64(acc.mrpCount)), 2)
		}
		if acc.purchaseCnt > 0 {
			r.AvgPurchasePrice = acc.purchaseSum.DivRound(decimal.NewFromInt(int64(acc.purchaseCnt)), 2)
		}
		if acc.salesCount > 0 {
			r.AvgSalesPrice = acc.salesSum.DivRound(decimal.NewFromInt(int64(acc.salesCount)), 2)
		}
		r.Status = rollupStatus(r.LivePieces, acc.hasExpired, acc.hasDamaged)
		rollups = append(rollups, r)
	}
	sort.Slice(rollups, func(i, j int) bool { return rollups[i].ProductID < rollups[j].ProductID })
	return rollups
}

func rollupStatus(livePieces int, hasExpired, hasDamaged bool) RollupStatus {
	switch {
	case livePieces == 0 && !hasExpired && !hasDamaged:
		return StatusOutOfStock
	case hasExpired && livePieces == 0:
		return StatusAllExpired
	case hasExpired || hasDamaged:
		return StatusSomeDamagedOrExpired
	default:
		return StatusInStock
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
