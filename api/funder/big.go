package funder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"Excelerate/api/pivot"
	"Excelerate/internal/notification"
)

// BIG ledger workbooks carry one sheet per portfolio. Data columns are
// positional: the collected total sits in column AI, and when that cell is
// blank the weekly breakdown in AJ through AP is summed instead.
const (
	bigIDCol       = 0  // A
	bigMerchantCol = 2  // C
	bigTotalCol    = 34 // AI
	bigWeekFirst   = 35 // AJ
	bigWeekLast    = 41 // AP

	// The header row is found by scanning this many rows for an id anchor.
	bigAnchorScan = 10
	// Fallback data start when no anchor row is present.
	bigDefaultDataStart = 3
)

var bigIDAnchors = []string{"funding id", "fundingid", "funding_id", "id", "advance id", "advanceid"}

type BIG struct {
	// Portfolio selects which sheet to read: "Alder" matches the sheet
	// containing "R&H", anything else matches "White Rabbit".
	Portfolio string
}

func (BIG) FunderName() string { return "BIG" }

func (b BIG) sheetName(f *excelize.File) (string, error) {
	marker := "White Rabbit"
	if b.Portfolio == "Alder" {
		marker = "R&H"
	}
	for _, name := range f.GetSheetList() {
		if strings.Contains(name, marker) {
			return name, nil
		}
	}
	return "", errors.New("Could not find portfolio sheet")
}

func (b BIG) Process(path string) (*pivot.Table, error) {
	if fileExt(path) != ".xlsx" {
		return nil, ErrUnsupportedFormat
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close()

	sheet, err := b.sheetName(f)
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q of %s: %w", sheet, path, err)
	}

	dataStart := bigDefaultDataStart
	for i := 0; i < bigAnchorScan && i < len(rows); i++ {
		first := strings.ToLower(strings.TrimSpace(cellAt(rows[i], bigIDCol)))
		if containsAny(first, bigIDAnchors) {
			dataStart = i + 1
			break
		}
	}

	var records []pivot.Record
	for _, row := range rows[min(dataStart, len(rows)):] {
		id := strings.TrimSpace(cellAt(row, bigIDCol))
		if id == "" {
			continue
		}
		merchant := strings.TrimSpace(cellAt(row, bigMerchantCol))
		amount := CurrencyToFloatOrZero(cellAt(row, bigTotalCol))
		if amount == 0 {
			for col := bigWeekFirst; col <= bigWeekLast; col++ {
				amount += CurrencyToFloatOrZero(cellAt(row, col))
			}
		}
		if amount == 0 && merchant == "" {
			continue
		}
		records = append(records, pivot.Record{
			AdvanceID:    id,
			MerchantName: merchant,
			Gross:        amount,
			Net:          amount,
		})
	}
	if len(records) == 0 {
		return nil, errors.New("No valid data found")
	}
	return pivot.FromRecords(records, pivot.GroupOptions{ByMerchant: true}), nil
}

// ValidateStructure checks the workbook has the expected portfolio sheet and
// an id anchor, since the positional layout has no named columns to probe.
func (b BIG) ValidateStructure(path string) notification.ValidationResult {
	return validateWorkbook(path, b.FunderName(), func(f *excelize.File) error {
		sheet, err := b.sheetName(f)
		if err != nil {
			return err
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return err
		}
		for i := 0; i < bigAnchorScan && i < len(rows); i++ {
			first := strings.ToLower(strings.TrimSpace(cellAt(rows[i], bigIDCol)))
			if containsAny(first, bigIDAnchors) {
				return nil
			}
		}
		if len(rows) <= bigDefaultDataStart {
			return errors.New("sheet has no data rows")
		}
		return nil
	})
}

func cellAt(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func containsAny(s string, anchors []string) bool {
	for _, a := range anchors {
		if strings.Contains(s, a) {
			return true
		}
	}
	return false
}
