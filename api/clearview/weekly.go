package clearview

import (
	"fmt"
	"strings"

	"Excelerate/api/funder"
	"Excelerate/api/pivot"
)

// The weekly settlement report arrives once per week as a participation
// statement. It carries no merchant names, so the deal id doubles as the
// merchant, and the Fee column keeps its sign.
var weeklyRequiredColumns = []string{
	"Deal Id",
	"Participator Gross Amount",
	"Fee",
	"Net Payment Amount",
}

// ProcessWeeklyFile builds the weekly pivot from the settlement report.
func ProcessWeeklyFile(path string) (*pivot.Table, error) {
	rows, err := funder.ReadFileRows(path, "Sheet1")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("weekly file %s has no data rows", path)
	}
	if missing := missingFrom(rows[0], weeklyRequiredColumns); len(missing) > 0 {
		return nil, &funder.MissingColumnsError{Columns: missing}
	}

	var records []pivot.Record
	for _, row := range rows {
		dealID := strings.TrimSpace(row["Deal Id"])
		if dealID == "" {
			continue
		}
		gross, err := parseAmount("Participator Gross Amount", row["Participator Gross Amount"])
		if err != nil {
			return nil, err
		}
		fee, err := parseAmount("Fee", row["Fee"])
		if err != nil {
			return nil, err
		}
		net, err := parseAmount("Net Payment Amount", row["Net Payment Amount"])
		if err != nil {
			return nil, err
		}
		if gross == 0 && fee == 0 && net == 0 {
			continue
		}
		records = append(records, pivot.Record{
			AdvanceID:    dealID,
			MerchantName: dealID,
			Gross:        gross,
			Fee:          fee,
			Net:          net,
		})
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no valid data found")
	}
	return pivot.FromRecords(records, pivot.GroupOptions{}), nil
}
