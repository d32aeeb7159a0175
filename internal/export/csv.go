// Package export renders stored receipts as CSV and XLSX downloads.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/starford/fehu/internal/models"
)

// ItemRow is one line item flattened with its parent receipt, the shape both
// the items CSV and the workbook Items sheet use.
type ItemRow struct {
	ReceiptID int64
	Store     string
	Date      string
	Name      string
	Price     float64
}

// ReceiptsCSV writes one row per receipt. An unknown total renders as an
// empty cell, not as zero.
func ReceiptsCSV(w io.Writer, recs []models.Receipt) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "store", "date", "total", "created_at"}); err != nil {
		return err
	}
	for _, r := range recs {
		if err := cw.Write([]string{
			strconv.FormatInt(r.ID, 10),
			r.Store,
			r.Date,
			totalCell(r.Total),
			r.CreatedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ItemsCSV writes one row per line item.
func ItemsCSV(w io.Writer, rows []ItemRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"receipt_id", "store", "date", "name", "price"}); err != nil {
		return err
	}
	for _, it := range rows {
		if err := cw.Write([]string{
			strconv.FormatInt(it.ReceiptID, 10),
			it.Store,
			it.Date,
			it.Name,
			strconv.FormatFloat(it.Price, 'f', 2, 64),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func totalCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
