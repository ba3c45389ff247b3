package funder

import (
	"math"
	"strconv"
	"strings"

	"Excelerate/api/pivot"
)

// BHB participation reports carry a numeric Deal ID per row plus section
// headers and subtotal lines that have no Deal ID at all; the numeric check
// drops those. The same deal can appear under more than one deal name, so
// grouping keys on both.
type BHB struct{}

func (BHB) FunderName() string { return "BHB" }

func (BHB) SheetName() string { return "Sheet1" }

func (BHB) RequiredColumns() []string {
	return []string{
		"Deal ID",
		"Deal Name",
		"Participator Gross Amount",
		"Non Qualifying Collections",
		"Total Reversals",
		"Fee",
		"Res. Commission",
		"Net Payment Amount",
		"Balance",
	}
}

func (BHB) GroupOptions() pivot.GroupOptions {
	return pivot.GroupOptions{ByMerchant: true, RoundCents: true}
}

func (BHB) ExtractRow(row map[string]string) (*pivot.Record, error) {
	dealID := strings.TrimSpace(row["Deal ID"])
	if dealID == "" {
		return nil, nil
	}
	if _, err := strconv.ParseFloat(dealID, 64); err != nil {
		return nil, nil
	}

	gross, err := CurrencyToFloat(row["Participator Gross Amount"])
	if err != nil {
		return nil, &ConversionError{Column: "Participator Gross Amount", Value: row["Participator Gross Amount"], Err: err}
	}
	fee, err := CurrencyToFloat(row["Fee"])
	if err != nil {
		return nil, &ConversionError{Column: "Fee", Value: row["Fee"], Err: err}
	}
	net, err := CurrencyToFloat(row["Net Payment Amount"])
	if err != nil {
		return nil, &ConversionError{Column: "Net Payment Amount", Value: row["Net Payment Amount"], Err: err}
	}

	return &pivot.Record{
		AdvanceID:    dealID,
		MerchantName: strings.TrimSpace(row["Deal Name"]),
		Gross:        gross,
		Fee:          math.Abs(fee),
		Net:          net,
	}, nil
}
