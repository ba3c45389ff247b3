package funder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"Excelerate/api/pivot"
	"Excelerate/internal/notification"
)

// Boom remittance workbooks put ten rows of report banner above the header,
// and the data columns are positional: advance id in B, merchant in D, then
// gross, fee and net in O, P and Q.
const (
	boomHeaderRow = 10 // Excel row 11

	boomIDCol       = 1  // B
	boomMerchantCol = 3  // D
	boomGrossCol    = 14 // O
	boomFeeCol      = 15 // P
	boomNetCol      = 16 // Q
)

type Boom struct{}

func (Boom) FunderName() string { return "Boom" }

func (Boom) Process(path string) (*pivot.Table, error) {
	if fileExt(path) != ".xlsx" {
		return nil, ErrUnsupportedFormat
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook %s: no sheets found", path)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q of %s: %w", sheet, path, err)
	}
	if len(rows) <= boomHeaderRow {
		return nil, errors.New("No valid data found")
	}
	if err := checkBoomHeader(rows[boomHeaderRow]); err != nil {
		return nil, err
	}

	var records []pivot.Record
	for _, row := range rows[boomHeaderRow+1:] {
		id := strings.TrimSpace(cellAt(row, boomIDCol))
		merchant := strings.TrimSpace(cellAt(row, boomMerchantCol))
		if id == "" || merchant == "" {
			continue
		}
		gross := CurrencyToFloatOrZero(cellAt(row, boomGrossCol))
		fee := CurrencyToFloatOrZero(cellAt(row, boomFeeCol))
		net := CurrencyToFloatOrZero(cellAt(row, boomNetCol))
		if gross == 0 && fee == 0 && net == 0 {
			continue
		}
		records = append(records, pivot.Record{
			AdvanceID:    id,
			MerchantName: merchant,
			Gross:        gross,
			Fee:          fee,
			Net:          net,
		})
	}
	if len(records) == 0 {
		return nil, errors.New("No valid data found")
	}
	return pivot.FromRecords(records, pivot.GroupOptions{ByMerchant: true}), nil
}

// checkBoomHeader confirms the anchor cells really are the header, since a
// layout shift would otherwise silently read the wrong columns.
func checkBoomHeader(header []string) error {
	anchors := []struct {
		col  int
		want string
	}{
		{boomIDCol, "advance"},
		{boomMerchantCol, "merchant"},
		{boomGrossCol, "gross"},
	}
	for _, a := range anchors {
		cell := strings.ToLower(strings.TrimSpace(cellAt(header, a.col)))
		if !strings.Contains(cell, a.want) {
			return fmt.Errorf("header row missing %q anchor", a.want)
		}
	}
	return nil
}

func (b Boom) ValidateStructure(path string) notification.ValidationResult {
	return validateWorkbook(path, b.FunderName(), func(f *excelize.File) error {
		sheet := f.GetSheetName(0)
		if sheet == "" {
			return errors.New("no sheets found")
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return err
		}
		if len(rows) <= boomHeaderRow {
			return errors.New("sheet has no data rows")
		}
		return checkBoomHeader(rows[boomHeaderRow])
	})
}
