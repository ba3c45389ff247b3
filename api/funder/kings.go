package funder

import (
	"strings"

	"Excelerate/api/pivot"
)

// Kings payable reports are strict: a malformed amount fails the file, and
// rows where all three amounts are zero are placeholders the report includes
// for advances with no activity this period.
type Kings struct{}

func (Kings) FunderName() string { return "Kings" }

func (Kings) SheetName() string { return "Sheet1" }

func (Kings) RequiredColumns() []string {
	return []string{
		"Advance ID",
		"Business Name",
		"Payable Amt (Gross)",
		"Servicing Fee $",
		"Payable Amt (Net)",
	}
}

func (Kings) GroupOptions() pivot.GroupOptions {
	return pivot.GroupOptions{}
}

func (Kings) ExtractRow(row map[string]string) (*pivot.Record, error) {
	advanceID := strings.TrimSpace(row["Advance ID"])
	merchant := strings.TrimSpace(row["Business Name"])
	if advanceID == "" || merchant == "" {
		return nil, nil
	}

	gross, err := CurrencyToFloat(row["Payable Amt (Gross)"])
	if err != nil {
		return nil, &ConversionError{Column: "Payable Amt (Gross)", Value: row["Payable Amt (Gross)"], Err: err}
	}
	fee, err := CurrencyToFloat(row["Servicing Fee $"])
	if err != nil {
		return nil, &ConversionError{Column: "Servicing Fee $", Value: row["Servicing Fee $"], Err: err}
	}
	net, err := CurrencyToFloat(row["Payable Amt (Net)"])
	if err != nil {
		return nil, &ConversionError{Column: "Payable Amt (Net)", Value: row["Payable Amt (Net)"], Err: err}
	}
	if gross == 0 && fee == 0 && net == 0 {
		return nil, nil
	}

	return &pivot.Record{
		AdvanceID:    advanceID,
		MerchantName: merchant,
		Gross:        gross,
		Fee:          fee,
		Net:          net,
	}, nil
}
