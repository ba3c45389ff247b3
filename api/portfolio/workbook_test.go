package portfolio

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeWorkbookFixture(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()

	f.NewSheet("Kings")
	f.SetCellValue("Kings", "A1", "Kings Portfolio Tracker")
	f.SetCellValue("Kings", "A2", "Advance ID")
	f.SetCellValue("Kings", "B2", "Business Name")
	f.SetCellValue("Kings", "C2", "Funding Date")
	f.SetCellValue("Kings", "D2", "Amount")
	f.SetCellValue("Kings", "A3", "K100")
	f.SetCellValue("Kings", "B3", "Alpha Deli")
	f.SetCellValue("Kings", "C3", 45000)
	f.SetCellValue("Kings", "D3", "$25,000.00")
	f.SetCellValue("Kings", "A4", "K200")
	f.SetCellValue("Kings", "B4", "Beta Motors")
	f.SetCellValue("Kings", "C4", "03/01/2023")
	f.SetCellValue("Kings", "D4", 10000)

	f.NewSheet("CV")
	f.SetCellValue("CV", "A2", "Deal ID")
	f.SetCellValue("CV", "B2", "Merchant Name")
	f.SetCellValue("CV", "A3", "CV9")
	f.SetCellValue("CV", "B3", "Gamma Salon")

	// not a funder tab, must be ignored
	f.NewSheet("Notes")
	f.SetCellValue("Notes", "A2", "Advance ID")
	f.SetCellValue("Notes", "B2", "Merchant Name")
	f.SetCellValue("Notes", "A3", "X1")
	f.SetCellValue("Notes", "B3", "Should Not Appear")

	path := filepath.Join(t.TempDir(), "workbook.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractMerchants(t *testing.T) {
	path := writeWorkbookFixture(t)
	merchants, err := ExtractMerchants("Alder", path)
	if err != nil {
		t.Fatal(err)
	}
	if len(merchants) != 3 {
		t.Fatalf("merchants = %d, want 3", len(merchants))
	}

	byID := make(map[string]int)
	for i, m := range merchants {
		byID[m.AdvanceID] = i
		if m.Portfolio != "Alder" {
			t.Errorf("portfolio = %q", m.Portfolio)
		}
	}

	k100 := merchants[byID["K100"]]
	if k100.Funder != "Kings" || k100.MerchantName != "Alpha Deli" {
		t.Errorf("K100 = %s/%s", k100.Funder, k100.MerchantName)
	}
	if k100.FundingDate != "03/15/2023" {
		t.Errorf("K100 funding date = %q, want 03/15/2023 from serial 45000", k100.FundingDate)
	}
	if math.Abs(k100.Amount-25000) > 1e-2 {
		t.Errorf("K100 amount = %v, want 25000", k100.Amount)
	}

	k200 := merchants[byID["K200"]]
	if k200.FundingDate != "03/01/2023" {
		t.Errorf("K200 funding date = %q, want 03/01/2023", k200.FundingDate)
	}

	cv := merchants[byID["CV9"]]
	if cv.Funder != "Clear View" {
		t.Errorf("CV9 funder = %q, want Clear View", cv.Funder)
	}

	if _, ok := byID["X1"]; ok {
		t.Error("rows from non-funder sheets should be ignored")
	}
}

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"45000", "03/15/2023"},
		{"60", "02/28/1900"},
		{"03/15/2023", "03/15/2023"},
		{"2023-03-15", "03/15/2023"},
		{"", ""},
		{"not a date", "not a date"},
	}
	for _, c := range cases {
		if got := normalizeDate(c.in); got != c.want {
			t.Errorf("normalizeDate(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
