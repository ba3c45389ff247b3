package portfolio

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"Excelerate/api/funder"
	"Excelerate/internal/config"
	"Excelerate/internal/store"
)

// The portfolio workbook tracks every funded advance, one sheet per funder.
// Sheet tabs use the workbook's own short names.
var sheetFunders = map[string]string{
	"BHB":   "BHB",
	"BIG":   "BIG",
	"CV":    "Clear View",
	"EFin":  "eFin",
	"InAd":  "In Advance",
	"Kings": "Kings",
	"Boom":  "Boom",
}

// Column headers drift across workbook revisions; each field accepts any of
// its known spellings.
var (
	advanceIDHeaders = []string{"advance id", "advanceid", "funding id", "deal id", "id"}
	merchantHeaders  = []string{"merchant name", "merchant", "business name", "deal name", "dba"}
	dateHeaders      = []string{"funding date", "date funded", "funded date", "date"}
	amountHeaders    = []string{"amount", "funded amount", "purchase price", "funding amount"}
)

const headerRowIndex = 1

// ExtractMerchants reads the merchant roster out of a portfolio workbook.
// Sheets that are not funder tabs are skipped.
func ExtractMerchants(portfolio, path string) ([]store.Merchant, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close()

	var merchants []store.Merchant
	for _, sheet := range f.GetSheetList() {
		funderName, ok := sheetFunders[strings.TrimSpace(sheet)]
		if !ok {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %q of %s: %w", sheet, path, err)
		}
		if len(rows) <= headerRowIndex+1 {
			continue
		}

		header := rows[headerRowIndex]
		idCol := findColumn(header, advanceIDHeaders)
		nameCol := findColumn(header, merchantHeaders)
		if idCol < 0 || nameCol < 0 {
			continue
		}
		dateCol := findColumn(header, dateHeaders)
		amountCol := findColumn(header, amountHeaders)

		for _, row := range rows[headerRowIndex+1:] {
			advanceID := strings.TrimSpace(cellAt(row, idCol))
			name := strings.TrimSpace(cellAt(row, nameCol))
			if advanceID == "" || name == "" {
				continue
			}
			m := store.Merchant{
				Portfolio:    portfolio,
				Funder:       funderName,
				AdvanceID:    advanceID,
				MerchantName: name,
			}
			if dateCol >= 0 {
				m.FundingDate = normalizeDate(cellAt(row, dateCol))
			}
			if amountCol >= 0 {
				m.Amount = funder.CurrencyToFloatOrZero(cellAt(row, amountCol))
			}
			merchants = append(merchants, m)
		}
	}
	if len(merchants) == 0 {
		return nil, fmt.Errorf("workbook %s: no funder sheets with merchant data", path)
	}
	return merchants, nil
}

func findColumn(header []string, names []string) int {
	for i, cell := range header {
		h := strings.ToLower(strings.TrimSpace(cell))
		for _, name := range names {
			if h == name {
				return i
			}
		}
	}
	return -1
}

func cellAt(row []string, idx int) string {
	if idx >= 0 && idx < len(row) {
		return row[idx]
	}
	return ""
}

// normalizeDate renders a cell as a display date. Cells read from unstyled
// columns come through as raw Excel day serials, counted from 1899-12-31
// with the historical phantom leap day after serial 59.
func normalizeDate(cell string) string {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return ""
	}
	if serial, err := strconv.Atoi(cell); err == nil && serial > 0 {
		days := serial
		if days > 59 {
			days--
		}
		base := time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC)
		return base.AddDate(0, 0, days).Format(config.DisplayDateFormat)
	}
	for _, format := range []string{config.DisplayDateFormat, "2006-01-02", "01-02-2006", "1/2/2006", "1/2/06"} {
		if t, err := time.Parse(format, cell); err == nil {
			return t.Format(config.DisplayDateFormat)
		}
	}
	return cell
}
