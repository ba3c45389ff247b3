package funder

import (
	"math"
	"testing"
)

func TestInAdvanceExtractRow(t *testing.T) {
	path := writeFixture(t, "inadvance.csv",
		"Status,Mgmt Fee,Advance Id,Amount,Gross Amount,Contact ID\n"+
			"Cleared,-5.00,1001,95.00,100.00,M1\n"+
			"Pending,-5.00,1001,95.00,100.00,M1\n"+
			"Cleared,-2.50,1002,47.50,50.00,M2\n"+
			"Cleared,-1.00,ABC,10.00,11.00,M3\n"+
			"Cleared,-1.00,,10.00,11.00,M4\n")

	table, err := Process(InAdvance{}, path)
	if err != nil {
		t.Fatal(err)
	}
	if got := table.DataRowCount(); got != 2 {
		t.Fatalf("DataRowCount = %d, want 2", got)
	}

	first := table.Rows[0]
	if first.AdvanceID != "1001" || first.MerchantName != "M1" {
		t.Errorf("first row = %s/%s, want 1001/M1", first.AdvanceID, first.MerchantName)
	}
	if math.Abs(first.Gross-100) > 1e-2 || math.Abs(first.Fee-5) > 1e-2 || math.Abs(first.Net-95) > 1e-2 {
		t.Errorf("first row amounts = %v/%v/%v, want 100/5/95", first.Gross, first.Fee, first.Net)
	}
}

func TestBHBGroupsByDealAndName(t *testing.T) {
	path := writeFixture(t, "bhb.csv",
		"Deal ID,Deal Name,Participator Gross Amount,Non Qualifying Collections,Total Reversals,Fee,Res. Commission,Net Payment Amount,Balance\n"+
			"501,Corner Cafe,100.00,0,0,-10.00,0,90.00,500.00\n"+
			"501,Corner Cafe,50.00,0,0,-5.00,0,45.00,450.00\n"+
			"Subtotal,,150.00,0,0,-15.00,0,135.00,\n"+
			"502,Side Bakery,200.00,0,0,-20.00,0,180.00,300.00\n")

	table, err := Process(BHB{}, path)
	if err != nil {
		t.Fatal(err)
	}
	if got := table.DataRowCount(); got != 2 {
		t.Fatalf("DataRowCount = %d, want 2", got)
	}
	first := table.Rows[0]
	if first.AdvanceID != "501" {
		t.Fatalf("first row id = %q, want 501", first.AdvanceID)
	}
	if math.Abs(first.Gross-150) > 1e-2 || math.Abs(first.Fee-15) > 1e-2 || math.Abs(first.Net-135) > 1e-2 {
		t.Errorf("501 = %v/%v/%v, want 150/15/135", first.Gross, first.Fee, first.Net)
	}
	if first.Fee < 0 {
		t.Error("fee should be absolute")
	}
}

func TestEFinLenientAmounts(t *testing.T) {
	path := writeFixture(t, "efin.csv",
		"Funding Date,Advance ID,Business Name,Advance Status,Payable Amt (Gross),Servicing Fee $,Payable Amt (Net),Payable Status\n"+
			"01/02/2026,E1,Alpha,Funded,100.00,-10.00,90.00,Paid\n"+
			"01/02/2026,E1,Alpha,Funded,,,,Pending\n"+
			"01/02/2026,E2,Beta,Funded,N/A,5.00,bad,Paid\n"+
			"01/02/2026,,Ghost,Funded,1.00,0.10,0.90,Paid\n")

	table, err := Process(EFin{}, path)
	if err != nil {
		t.Fatal(err)
	}
	if got := table.DataRowCount(); got != 2 {
		t.Fatalf("DataRowCount = %d, want 2", got)
	}
	e1 := table.Rows[0]
	if math.Abs(e1.Gross-100) > 1e-2 || math.Abs(e1.Fee-10) > 1e-2 || math.Abs(e1.Net-90) > 1e-2 {
		t.Errorf("E1 = %v/%v/%v, want 100/10/90", e1.Gross, e1.Fee, e1.Net)
	}
	e2 := table.Rows[1]
	if math.Abs(e2.Gross) > 1e-9 || math.Abs(e2.Fee-5) > 1e-2 || math.Abs(e2.Net) > 1e-9 {
		t.Errorf("E2 = %v/%v/%v, want 0/5/0", e2.Gross, e2.Fee, e2.Net)
	}
}

func TestKingsRejectsMalformedAmount(t *testing.T) {
	path := writeFixture(t, "kings.csv",
		"Advance ID,Business Name,Payable Amt (Gross),Servicing Fee $,Payable Amt (Net)\n"+
			"K1,Alpha,not-a-number,1.00,2.00\n")

	if _, err := Process(Kings{}, path); err == nil {
		t.Fatal("expected error for malformed amount")
	}
}

func TestKingsKeepsSubCentPrecision(t *testing.T) {
	path := writeFixture(t, "kings.csv",
		"Advance ID,Business Name,Payable Amt (Gross),Servicing Fee $,Payable Amt (Net)\n"+
			"K1,Alpha,10.005,0.001,10.004\n")

	table, err := Process(Kings{}, path)
	if err != nil {
		t.Fatal(err)
	}
	if got := table.Rows[0].Gross; math.Abs(got-10.005) > 1e-9 {
		t.Errorf("gross = %v, want 10.005 unrounded", got)
	}
}

func TestEFinKeepsSubCentPrecision(t *testing.T) {
	path := writeFixture(t, "efin.csv",
		"Funding Date,Advance ID,Business Name,Advance Status,Payable Amt (Gross),Servicing Fee $,Payable Amt (Net),Payable Status\n"+
			"01/02/2026,E1,Alpha,Funded,10.005,0.001,10.004,Paid\n")

	table, err := Process(EFin{}, path)
	if err != nil {
		t.Fatal(err)
	}
	if got := table.Rows[0].Gross; math.Abs(got-10.005) > 1e-9 {
		t.Errorf("gross = %v, want 10.005 unrounded", got)
	}
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"In Advance", "BHB", "eFin", "Kings", "Boom", "BIG"} {
		if _, ok := Lookup(name); !ok {
			t.Errorf("Lookup(%q) not found", name)
		}
	}
	if _, ok := Lookup("Clear View"); ok {
		t.Error("Clear View should not be in the flat-file registry")
	}
}
