package funder

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeBoomFixture(t *testing.T, rows [][3]string, amounts [][3]float64) string {
	t.Helper()
	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "Boom Funding Weekly Remittance")
	f.SetCellValue("Sheet1", "B11", "Advance ID")
	f.SetCellValue("Sheet1", "D11", "Merchant Name")
	f.SetCellValue("Sheet1", "O11", "Gross Amount")
	f.SetCellValue("Sheet1", "P11", "Servicing Fee")
	f.SetCellValue("Sheet1", "Q11", "Net Amount")
	for i, row := range rows {
		line := 12 + i
		f.SetCellValue("Sheet1", fmt.Sprintf("B%d", line), row[0])
		f.SetCellValue("Sheet1", fmt.Sprintf("D%d", line), row[1])
		f.SetCellValue("Sheet1", fmt.Sprintf("O%d", line), amounts[i][0])
		f.SetCellValue("Sheet1", fmt.Sprintf("P%d", line), amounts[i][1])
		f.SetCellValue("Sheet1", fmt.Sprintf("Q%d", line), amounts[i][2])
	}
	path := filepath.Join(t.TempDir(), "boom.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBoomProcess(t *testing.T) {
	path := writeBoomFixture(t,
		[][3]string{
			{"ADV1", "Alpha", ""},
			{"ADV2", "Beta", ""},
			{"", "Orphan", ""},
			{"ADV3", "Idle", ""},
		},
		[][3]float64{
			{100.50, 10.00, 90.50},
			{200.00, 20.00, 180.00},
			{5.00, 0.50, 4.50},
			{0, 0, 0},
		})

	table, err := Boom{}.Process(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := table.DataRowCount(); got != 2 {
		t.Fatalf("DataRowCount = %d, want 2", got)
	}
	first := table.Rows[0]
	if first.AdvanceID != "ADV1" || first.MerchantName != "Alpha" {
		t.Errorf("first row = %s/%s", first.AdvanceID, first.MerchantName)
	}
	if math.Abs(first.Gross-100.50) > 1e-2 || math.Abs(first.Fee-10) > 1e-2 || math.Abs(first.Net-90.50) > 1e-2 {
		t.Errorf("ADV1 = %v/%v/%v, want 100.50/10/90.50", first.Gross, first.Fee, first.Net)
	}
}

func TestBoomRejectsShiftedLayout(t *testing.T) {
	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "Advance ID")
	f.SetCellValue("Sheet1", "B1", "Merchant Name")
	for i := 2; i <= 15; i++ {
		f.SetCellValue("Sheet1", fmt.Sprintf("A%d", i), fmt.Sprintf("ADV%d", i))
	}
	path := filepath.Join(t.TempDir(), "shifted.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	if _, err := (Boom{}).Process(path); err == nil {
		t.Fatal("expected header anchor error")
	}
	if result := (Boom{}).ValidateStructure(path); result.IsValid {
		t.Error("expected invalid validation result")
	}
}

func writeBIGFixture(t *testing.T, sheet string) string {
	t.Helper()
	f := excelize.NewFile()
	f.NewSheet(sheet)
	f.SetCellValue(sheet, "A1", "Funding ID")
	f.SetCellValue(sheet, "C1", "Merchant")

	f.SetCellValue(sheet, "A2", "F100")
	f.SetCellValue(sheet, "C2", "Alpha")
	f.SetCellValue(sheet, "AI2", 250.75)

	// no collected total, weekly breakdown instead
	f.SetCellValue(sheet, "A3", "F200")
	f.SetCellValue(sheet, "C3", "Beta")
	f.SetCellValue(sheet, "AJ3", 10.00)
	f.SetCellValue(sheet, "AK3", 20.00)
	f.SetCellValue(sheet, "AP3", 30.00)

	f.SetCellValue(sheet, "A4", "F300")

	path := filepath.Join(t.TempDir(), "big.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBIGProcessAlderSheet(t *testing.T) {
	path := writeBIGFixture(t, "R&H Portfolio")

	table, err := BIG{Portfolio: "Alder"}.Process(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := table.DataRowCount(); got != 2 {
		t.Fatalf("DataRowCount = %d, want 2", got)
	}

	f100 := table.Rows[0]
	if math.Abs(f100.Gross-250.75) > 1e-2 || math.Abs(f100.Net-250.75) > 1e-2 || f100.Fee != 0 {
		t.Errorf("F100 = %v/%v/%v, want 250.75/0/250.75", f100.Gross, f100.Fee, f100.Net)
	}
	f200 := table.Rows[1]
	if math.Abs(f200.Gross-60) > 1e-2 {
		t.Errorf("F200 gross = %v, want 60 from weekly breakdown", f200.Gross)
	}
}

func TestBIGMissingPortfolioSheet(t *testing.T) {
	path := writeBIGFixture(t, "R&H Portfolio")
	_, err := BIG{Portfolio: "White Rabbit"}.Process(path)
	if err == nil {
		t.Fatal("expected missing sheet error")
	}
}

func TestBIGRejectsCSV(t *testing.T) {
	path := writeFixture(t, "big.csv", "Funding ID,,Merchant\n")
	if _, err := (BIG{Portfolio: "Alder"}).Process(path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}
