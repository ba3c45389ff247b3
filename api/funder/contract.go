package funder

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"Excelerate/api/pivot"
	"Excelerate/internal/notification"
)

// RowExtractor is implemented by funders whose reports are flat headered
// tables. The shared Process pipeline handles reading, grouping and totals;
// the extractor contributes only the per-row rules.
type RowExtractor interface {
	FunderName() string
	RequiredColumns() []string
	// SheetName returns the xlsx sheet data lives on, or "" for csv-only funders.
	SheetName() string
	// ExtractRow maps one raw row to a pivot record. Returning (nil, nil)
	// skips the row without error.
	ExtractRow(row map[string]string) (*pivot.Record, error)
	GroupOptions() pivot.GroupOptions
}

// FileExtractor is implemented by funders whose reports need whole-workbook
// handling, such as positional columns or sheet discovery.
type FileExtractor interface {
	FunderName() string
	Process(path string) (*pivot.Table, error)
}

// Process runs the shared row pipeline: read the file, check required
// columns, extract each row, then group and total the records.
func Process(e RowExtractor, path string) (*pivot.Table, error) {
	rows, err := ReadFileRows(path, e.SheetName())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: no data rows found", e.FunderName())
	}

	if missing := missingColumns(rows[0], e.RequiredColumns()); len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	var records []pivot.Record
	for _, row := range rows {
		rec, err := e.ExtractRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.FunderName(), err)
		}
		if rec == nil {
			continue
		}
		records = append(records, *rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: no valid data found", e.FunderName())
	}

	return pivot.FromRecords(records, e.GroupOptions()), nil
}

// ValidateStructure probes a file's headers against an extractor's required
// columns without reading the full file.
func ValidateStructure(e RowExtractor, path string) notification.ValidationResult {
	var result notification.ValidationResult
	result.IsValid = true

	headers, err := FileHeaders(path)
	if err != nil {
		result.AddError(notification.ValidationError{
			Field:    "file",
			Expected: "readable " + e.FunderName() + " report",
			Found:    err.Error(),
		})
		return result
	}

	have := make(map[string]bool, len(headers))
	for _, h := range headers {
		have[normalizeHeader(h)] = true
	}
	for _, col := range e.RequiredColumns() {
		if !have[normalizeHeader(col)] {
			result.AddError(notification.ValidationError{
				Field:    "Column",
				Expected: col,
				Found:    "Missing",
			})
		}
	}
	return result
}

// validateWorkbook probes a positional-layout workbook with a funder-specific
// structural check, mapping failures into a validation result.
func validateWorkbook(path, funderName string, check func(*excelize.File) error) notification.ValidationResult {
	var result notification.ValidationResult
	result.IsValid = true

	if fileExt(path) != ".xlsx" {
		result.AddError(notification.ValidationError{
			Field:    "file",
			Expected: "xlsx workbook",
			Found:    fileExt(path),
		})
		return result
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		result.AddError(notification.ValidationError{
			Field:    "file",
			Expected: "readable " + funderName + " report",
			Found:    err.Error(),
		})
		return result
	}
	defer f.Close()

	if err := check(f); err != nil {
		result.AddError(notification.ValidationError{
			Field:    "structure",
			Expected: funderName + " report layout",
			Found:    err.Error(),
		})
	}
	return result
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func missingColumns(row map[string]string, required []string) []string {
	have := make(map[string]bool, len(row))
	for key := range row {
		have[normalizeHeader(key)] = true
	}
	var missing []string
	for _, col := range required {
		if !have[normalizeHeader(col)] {
			missing = append(missing, col)
		}
	}
	return missing
}
