package clearview

import (
	"fmt"
	"math"
	"strings"

	"Excelerate/api/funder"
	"Excelerate/api/pivot"
)

// Daily reports accumulate over a week, one or more files per day, and the
// daily pivot is rebuilt from the whole pool each time a file arrives. The
// report has no fee column; the fee per advance is recovered as the spread
// between summed gross and summed net.
var dailyRequiredColumns = []string{
	"Syn Net Amount",
	"Syn Gross Amount",
	"AdvanceID",
	"Advance Status",
}

// ProcessDailyFiles builds one pivot from every daily file in a week's pool.
func ProcessDailyFiles(paths []string) (*pivot.Table, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no daily files found in folder")
	}

	type sums struct {
		gross, net float64
	}
	grouped := make(map[string]*sums)
	order := make([]string, 0)

	for _, path := range paths {
		rows, err := funder.ReadFileRows(path, "Sheet1")
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("daily file %s has no data rows", path)
		}
		if missing := missingFrom(rows[0], dailyRequiredColumns); len(missing) > 0 {
			return nil, &funder.MissingColumnsError{Columns: missing}
		}
		for _, row := range rows {
			advanceID := strings.TrimSpace(row["AdvanceID"])
			if advanceID == "" || advanceID == "0" {
				continue
			}
			gross, err := parseAmount("Syn Gross Amount", row["Syn Gross Amount"])
			if err != nil {
				return nil, err
			}
			net, err := parseAmount("Syn Net Amount", row["Syn Net Amount"])
			if err != nil {
				return nil, err
			}
			if gross == 0 && net == 0 {
				continue
			}
			s, ok := grouped[advanceID]
			if !ok {
				s = &sums{}
				grouped[advanceID] = s
				order = append(order, advanceID)
			}
			s.gross += gross
			s.net += net
		}
	}
	if len(grouped) == 0 {
		return nil, fmt.Errorf("no valid data found")
	}

	records := make([]pivot.Record, 0, len(order))
	for _, id := range order {
		s := grouped[id]
		records = append(records, pivot.Record{
			AdvanceID:    id,
			MerchantName: id,
			Gross:        s.gross,
			Fee:          math.Abs(s.gross - s.net),
			Net:          s.net,
		})
	}
	return pivot.FromRecords(records, pivot.GroupOptions{}), nil
}

// parseAmount zeroes empty cells only. A malformed value fails the file
// rather than flowing into the pivot as a silent zero.
func parseAmount(column, value string) (float64, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}
	v, err := funder.CurrencyToFloat(value)
	if err != nil {
		return 0, &funder.ConversionError{Column: column, Value: value, Err: err}
	}
	return v, nil
}

func missingFrom(row map[string]string, required []string) []string {
	have := make(map[string]bool, len(row))
	for key := range row {
		have[strings.ToLower(strings.TrimSpace(key))] = true
	}
	var missing []string
	for _, col := range required {
		if !have[strings.ToLower(col)] {
			missing = append(missing, col)
		}
	}
	return missing
}
