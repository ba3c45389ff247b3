package funder

import (
	"math"
	"strconv"
	"strings"

	"Excelerate/api/pivot"
)

// InAdvance remittance reports arrive as csv or as xlsx with data on Sheet1.
// Only rows whose Status is Cleared are settled funds; everything else is
// pending and excluded. The report has no merchant name column, so the
// Contact ID stands in as the merchant.
type InAdvance struct{}

func (InAdvance) FunderName() string { return "In Advance" }

func (InAdvance) SheetName() string { return "Sheet1" }

func (InAdvance) RequiredColumns() []string {
	return []string{"Status", "Mgmt Fee", "Advance Id", "Amount", "Gross Amount", "Contact ID"}
}

func (InAdvance) GroupOptions() pivot.GroupOptions {
	return pivot.GroupOptions{ByMerchant: true, RoundCents: true}
}

func (InAdvance) ExtractRow(row map[string]string) (*pivot.Record, error) {
	advanceID := strings.TrimSpace(row["Advance Id"])
	if advanceID == "" {
		return nil, nil
	}
	if _, err := strconv.ParseFloat(advanceID, 64); err != nil {
		return nil, nil
	}
	if strings.TrimSpace(row["Status"]) != "Cleared" {
		return nil, nil
	}

	gross, err := CurrencyToFloat(row["Gross Amount"])
	if err != nil {
		return nil, &ConversionError{Column: "Gross Amount", Value: row["Gross Amount"], Err: err}
	}
	net, err := CurrencyToFloat(row["Amount"])
	if err != nil {
		return nil, &ConversionError{Column: "Amount", Value: row["Amount"], Err: err}
	}
	fee, err := CurrencyToFloat(row["Mgmt Fee"])
	if err != nil {
		return nil, &ConversionError{Column: "Mgmt Fee", Value: row["Mgmt Fee"], Err: err}
	}

	return &pivot.Record{
		AdvanceID:    advanceID,
		MerchantName: strings.TrimSpace(row["Contact ID"]),
		Gross:        gross,
		Fee:          math.Abs(fee),
		Net:          net,
	}, nil
}
