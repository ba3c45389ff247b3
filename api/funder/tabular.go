package funder

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

func fileExt(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// ReadCSVRows reads a headered CSV into one map per data row, keyed by
// header name. Rows with fewer fields than the header and report summary
// rows (e.g. "235 Deal(s)") are dropped here, before any funder rule runs.
func ReadCSVRows(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	headers := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < len(headers) {
			continue
		}
		if len(record) > 0 && strings.Contains(record[0], "Deal(s)") {
			continue
		}
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadCSVHeaders reads only the header row.
func ReadCSVHeaders(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	headers, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("parsing csv %s: %w", path, err)
	}
	return headers, nil
}

func readSheetRows(path, sheet string) ([]map[string]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close()

	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q of %s: %w", sheet, path, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	headers := raw[0]
	rows := make([]map[string]string, 0, len(raw)-1)
	for _, record := range raw[1:] {
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = record[i]
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readLegacySheetRows(path string) ([]map[string]string, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("opening xls %s: %w", path, err)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("xls %s: no sheets found", path)
	}

	var headers []string
	var rows []map[string]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		var cells []string
		for j := 0; j < row.LastCol(); j++ {
			cells = append(cells, row.Col(j))
		}
		if i == 0 {
			headers = cells
			continue
		}
		m := make(map[string]string, len(headers))
		for j, header := range headers {
			if j < len(cells) {
				m[header] = cells[j]
			} else {
				m[header] = ""
			}
		}
		rows = append(rows, m)
	}
	return rows, nil
}

// ReadFileRows reads a headered tabular file of any supported format into
// header-keyed row maps. sheet applies to xlsx files only; legacy xls files
// are read from their first sheet.
func ReadFileRows(path, sheet string) ([]map[string]string, error) {
	switch fileExt(path) {
	case ".csv":
		return ReadCSVRows(path)
	case ".xlsx":
		return readSheetRows(path, sheet)
	case ".xls":
		return readLegacySheetRows(path)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// FileHeaders probes only the header row of a file, for validation. For
// workbooks this is the first row of the first sheet.
func FileHeaders(path string) ([]string, error) {
	switch fileExt(path) {
	case ".csv":
		return ReadCSVHeaders(path)
	case ".xlsx":
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
		if len(rows) == 0 {
			return nil, fmt.Errorf("workbook %s: could not read headers", path)
		}
		return rows[0], nil
	case ".xls":
		wb, err := xls.Open(path, "utf-8")
		if err != nil {
			return nil, fmt.Errorf("opening xls %s: %w", path, err)
		}
		sheet := wb.GetSheet(0)
		if sheet == nil {
			return nil, fmt.Errorf("xls %s: no sheets found", path)
		}
		row := sheet.Row(0)
		if row == nil {
			return nil, fmt.Errorf("xls %s: could not read headers", path)
		}
		var headers []string
		for j := 0; j < row.LastCol(); j++ {
			headers = append(headers, row.Col(j))
		}
		return headers, nil
	default:
		return nil, ErrUnsupportedFormat
	}
}
