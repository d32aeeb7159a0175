package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/starford/fehu/internal/models"
)

// WorkbookXLSX builds a two-sheet workbook: Receipts and Items. Unknown
// totals render as empty cells.
func WorkbookXLSX(recs []models.Receipt, rows []ItemRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const receiptsSheet = "Receipts"
	const itemsSheet = "Items"

	// The default sheet becomes Receipts.
	if err := f.SetSheetName("Sheet1", receiptsSheet); err != nil {
		return nil, fmt.Errorf("export: rename sheet: %w", err)
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return nil, fmt.Errorf("export: add sheet: %w", err)
	}

	setRow := func(sheet string, row int, values []any) error {
		for i, v := range values {
			cell, err := excelize.CoordinatesToCellName(i+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
		return nil
	}

	if err := setRow(receiptsSheet, 1, []any{"ID", "Store", "Date", "Total", "Created At"}); err != nil {
		return nil, err
	}
	for i, r := range recs {
		var total any
		if r.Total != nil {
			total = *r.Total
		} else {
			total = ""
		}
		vals := []any{r.ID, r.Store, r.Date, total, r.CreatedAt.UTC().Format(time.RFC3339)}
		if err := setRow(receiptsSheet, i+2, vals); err != nil {
			return nil, err
		}
	}

	if err := setRow(itemsSheet, 1, []any{"Receipt ID", "Store", "Date", "Item", "Price"}); err != nil {
		return nil, err
	}
	for i, it := range rows {
		vals := []any{it.ReceiptID, it.Store, it.Date, it.Name, it.Price}
		if err := setRow(itemsSheet, i+2, vals); err != nil {
			return nil, err
		}
	}

	idx, err := f.GetSheetIndex(receiptsSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("export: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
