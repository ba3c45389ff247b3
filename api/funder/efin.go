package funder

import (
	"math"
	"strings"

	"Excelerate/api/pivot"
)

// EFin payable reports are lenient about amounts: blank or malformed cells
// read as zero rather than failing the whole file, because the report mixes
// funded and not-yet-payable rows with partially filled amounts.
type EFin struct{}

func (EFin) FunderName() string { return "eFin" }

func (EFin) SheetName() string { return "Sheet1" }

func (EFin) RequiredColumns() []string {
	return []string{
		"Funding Date",
		"Advance ID",
		"Business Name",
		"Advance Status",
		"Payable Amt (Gross)",
		"Servicing Fee $",
		"Payable Amt (Net)",
		"Payable Status",
	}
}

func (EFin) GroupOptions() pivot.GroupOptions {
	return pivot.GroupOptions{}
}

func (EFin) ExtractRow(row map[string]string) (*pivot.Record, error) {
	advanceID := strings.TrimSpace(row["Advance ID"])
	if advanceID == "" {
		return nil, nil
	}

	return &pivot.Record{
		AdvanceID:    advanceID,
		MerchantName: strings.TrimSpace(row["Business Name"]),
		Gross:        CurrencyToFloatOrZero(row["Payable Amt (Gross)"]),
		Fee:          math.Abs(CurrencyToFloatOrZero(row["Servicing Fee $"])),
		Net:          CurrencyToFloatOrZero(row["Payable Amt (Net)"]),
	}, nil
}
