package funder

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFixture(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcessKingsReport(t *testing.T) {
	path := writeFixture(t, "kings.csv",
		"Advance ID,Business Name,Payable Amt (Gross),Servicing Fee $,Payable Amt (Net)\n"+
			"K100,Alpha Deli,50.00,1.50,48.50\n"+
			"K200,Beta Motors,60.49,2.00,58.49\n"+
			"K300,Gamma Salon,43.00,1.10,41.90\n"+
			"K400,Idle Co,0,0,0\n")

	table, err := Process(Kings{}, path)
	if err != nil {
		t.Fatal(err)
	}
	if got := table.DataRowCount(); got != 3 {
		t.Fatalf("DataRowCount = %d, want 3 (all-zero row kept?)", got)
	}
	if table.Rows[0].AdvanceID != "K100" || table.Rows[2].AdvanceID != "K300" {
		t.Errorf("rows not sorted: %q .. %q", table.Rows[0].AdvanceID, table.Rows[2].AdvanceID)
	}
	if math.Abs(table.TotalGross-153.49) > 1e-2 ||
		math.Abs(table.TotalFee-4.60) > 1e-2 ||
		math.Abs(table.TotalNet-148.89) > 1e-2 {
		t.Errorf("totals = %v/%v/%v, want 153.49/4.60/148.89",
			table.TotalGross, table.TotalFee, table.TotalNet)
	}
}

func TestProcessReportsMissingColumns(t *testing.T) {
	path := writeFixture(t, "kings.csv",
		"Advance ID,Business Name\nK100,Alpha Deli\n")

	_, err := Process(Kings{}, path)
	var missing *MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want MissingColumnsError", err)
	}
	if len(missing.Columns) != 3 {
		t.Errorf("missing = %v, want 3 columns", missing.Columns)
	}
}

func TestProcessRejectsUnsupportedFormat(t *testing.T) {
	path := writeFixture(t, "kings.pdf", "not a report")
	if _, err := Process(Kings{}, path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestValidateStructureWrongFileType(t *testing.T) {
	path := writeFixture(t, "wrong.csv", "Foo,Bar\n1,2\n")

	result := ValidateStructure(Kings{}, path)
	if result.IsValid {
		t.Fatal("expected invalid result")
	}
	note := result.ToNotification("wrong.csv")
	if note.Title != "Wrong file type" {
		t.Errorf("title = %q, want Wrong file type", note.Title)
	}
}

func TestValidateStructureListsMissingColumns(t *testing.T) {
	path := writeFixture(t, "almost.csv",
		"Advance ID,Business Name,Payable Amt (Gross),Servicing Fee $\nK1,A,1,1\n")

	result := ValidateStructure(Kings{}, path)
	if result.IsValid {
		t.Fatal("expected invalid result")
	}
	note := result.ToNotification("almost.csv")
	if note.Title != "Missing required columns" {
		t.Errorf("title = %q, want Missing required columns", note.Title)
	}
	if !strings.Contains(note.Description, "'Payable Amt (Net)'") {
		t.Errorf("description %q does not name the missing column", note.Description)
	}
}

func TestValidateStructureIgnoresHeaderCase(t *testing.T) {
	path := writeFixture(t, "kings.csv",
		"ADVANCE ID,business name,Payable Amt (Gross),Servicing Fee $,Payable Amt (Net)\n")
	if result := ValidateStructure(Kings{}, path); !result.IsValid {
		t.Errorf("expected valid result, got missing %v", result.MissingColumns())
	}
}

func TestReadCSVRowsSkipsSummaryAndShortRows(t *testing.T) {
	path := writeFixture(t, "rows.csv",
		"A,B,C\n"+
			"1,2,3\n"+
			"only,two\n"+
			"235 Deal(s),,\n"+
			"4,5,6\n")

	rows, err := ReadCSVRows(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[1]["C"] != "6" {
		t.Errorf(`rows[1]["C"] = %q, want "6"`, rows[1]["C"])
	}
}
