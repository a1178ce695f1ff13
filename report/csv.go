package report

import (
	"bufio"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/stockmitra/stockmitra/internal/stock"
	"github.com/stockmitra/stockmitra/internal/txlog"
)

func joinLocations(locations []string) string {
	return strings.Join(locations, "; ")
}

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

// csvStreamer buffers and periodically flushes rows so large exports do not
// hold everything in memory.
type csvStreamer struct {
	buf     *bufio.Writer
	csv     *csv.Writer
	pending int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer}
}

func (s *csvStreamer) writeRow(row []string) error {
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pending++
	if s.pending >= csvFlushEvery {
		return s.flush()
	}
	return nil
}

func (s *csvStreamer) flush() error {
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	s.pending = 0
	return s.buf.Flush()
}

// MonthlyCSV streams a monthly summary report.
func MonthlyCSV(w io.Writer, rows []txlog.MonthlyRow, f *Formatter) error {
	s := newCSVStreamer(w)
	header := []string{
		"Month", "Product ID", "Product Name", "Units",
		"Sales Value", "Purchase Value", "Profit/Loss", "Margin",
		"Avg Sales Price", "Avg Purchase Price",
	}
	if err := s.writeRow(header); err != nil {
		return err
	}
	for _, r := range rows {
		row := []string{
			r.Month,
			r.ProductID,
			r.ProductName,
			strconv.Itoa(r.Units),
			f.Money(r.SalesValue),
			f.Money(r.PurchaseValue),
			f.Money(r.ProfitLoss),
			f.Percent(r.ProfitMarginPct),
			f.Money(r.AvgSalesPrice),
			f.Money(r.AvgPurchasePrice),
		}
		if err := s.writeRow(row); err != nil {
			return err
		}
	}
	return s.flush()
}

// StockCSV streams the per-product company stock view.
func StockCSV(w io.Writer, rollups []stock.ProductRollup, f *Formatter) error {
	s := newCSVStreamer(w)
	header := []string{
		"Product ID", "Product Name", "Live Cartons", "Live Pieces",
		"Damaged/Expired", "Earliest Inwarded", "Earliest Expiry",
		"Avg MRP", "Avg Sales Price", "Locations", "Status",
	}
	if err := s.writeRow(header); err != nil {
		return err
	}
	for _, r := range rollups {
		row := []string{
			r.ProductID,
			r.ProductName,
			strconv.Itoa(r.LiveCartons),
			strconv.Itoa(r.LivePieces),
			strconv.Itoa(r.DamagedExpiredUnits),
			f.Date(r.EarliestInwarded),
			f.Date(r.EarliestExpiry),
			f.Money(r.AvgMRP),
			f.Money(r.AvgSalesPrice),
			joinLocations(r.Locations),
			string(r.Status),
		}
		if err := s.writeRow(row); err != nil {
			return err
		}
	}
	return s.flush()
}

// HistoryCSV streams the merged transaction history.
func HistoryCSV(w io.Writer, rows []txlog.HistoryRow, f *Formatter) error {
	s := newCSVStreamer(w)
	header := []string{"Date", "Type", "Product ID", "Product Name", "Carton ID", "Quantity", "Value"}
	if err := s.writeRow(header); err != nil {
		return err
	}
	for _, r := range rows {
		row := []string{
			r.Date.String(),
			string(r.Type),
			r.ProductID,
			r.ProductName,
			r.CartonID,
			strconv.Itoa(r.Quantity),
			f.Money(r.Value),
		}
		if err := s.writeRow(row); err != nil {
			return err
		}
	}
	return s.flush()
}
