package clearview

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"Excelerate/internal/directories"
)

const (
	testPortfolio = "Alder"
	wednesday     = "07/15/2026"
	thursday      = "07/16/2026"
	sunday        = "07/12/2026"
)

func newTestReconciler(t *testing.T) *Reconciler {
	t.Helper()
	dirs := directories.Layout{Base: t.TempDir()}
	if err := dirs.Ensure(); err != nil {
		t.Fatal(err)
	}
	return NewReconciler(dirs)
}

func writeDailyFile(t *testing.T, r *Reconciler, reportDate, name, body string) {
	t.Helper()
	dir := r.Dirs.ClearViewDailyUploadDir(testPortfolio, reportDate)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

const dailyHeader = "Syn Net Amount,Syn Gross Amount,AdvanceID,Advance Status\n"

func TestRebuildDailyPivotAggregatesPool(t *testing.T) {
	r := newTestReconciler(t)
	writeDailyFile(t, r, wednesday, "wed.csv", dailyHeader+
		"900.00,1000.00,DEAL001,Active\n"+
		"1800.00,2000.00,DEAL002,Active\n")
	writeDailyFile(t, r, thursday, "thu.csv", dailyHeader+
		"450.00,500.00,DEAL001,Active\n"+
		"0,0,DEAL009,Active\n"+
		"1.00,1.00,0,Active\n")

	table, err := r.RebuildDailyPivot(testPortfolio, thursday)
	if err != nil {
		t.Fatal(err)
	}
	if got := table.DataRowCount(); got != 2 {
		t.Fatalf("DataRowCount = %d, want 2", got)
	}
	deal1 := table.Rows[0]
	if deal1.AdvanceID != "DEAL001" {
		t.Fatalf("first row = %q, want DEAL001", deal1.AdvanceID)
	}
	if math.Abs(deal1.Gross-1500) > 1e-2 || math.Abs(deal1.Net-1350) > 1e-2 {
		t.Errorf("DEAL001 = %v/%v, want 1500/1350", deal1.Gross, deal1.Net)
	}
	if math.Abs(deal1.Fee-150) > 1e-2 {
		t.Errorf("DEAL001 fee = %v, want 150 (gross-net spread)", deal1.Fee)
	}

	if r.WeekStateFor(testPortfolio, sunday) != StateDailyOnly {
		t.Errorf("state = %v, want daily_only", r.WeekStateFor(testPortfolio, sunday))
	}
	combinedPath := r.Dirs.ClearViewPivotPath(testPortfolio, directories.ClearViewCombined, sunday)
	if _, err := os.Stat(combinedPath); !os.IsNotExist(err) {
		t.Error("combined pivot should not exist with only daily files")
	}
}

func TestRebuildDailyPivotIsIdempotent(t *testing.T) {
	r := newTestReconciler(t)
	writeDailyFile(t, r, wednesday, "wed.csv", dailyHeader+
		"90.00,100.00,DEAL001,Active\n")

	if _, err := r.RebuildDailyPivot(testPortfolio, wednesday); err != nil {
		t.Fatal(err)
	}
	path := r.Dirs.ClearViewPivotPath(testPortfolio, directories.ClearViewDaily, sunday)
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.RebuildDailyPivot(testPortfolio, wednesday); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Error("rebuilding from the same pool should write identical output")
	}
}

const weeklyHeader = "Deal Id,Participator Gross Amount,Fee,Net Payment Amount\n"

func writeWeeklyFile(t *testing.T, r *Reconciler, name, body string) string {
	t.Helper()
	dir := r.Dirs.ClearViewWeeklyUploadDir(testPortfolio)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCombinedPivotRequiresBothSides(t *testing.T) {
	r := newTestReconciler(t)

	weeklyPath := writeWeeklyFile(t, r, "weekly.csv", weeklyHeader+
		"DEAL002,1500.00,150.00,1350.00\n"+
		"DEAL003,3000.00,300.00,2700.00\n")
	if _, err := r.BuildWeeklyPivot(testPortfolio, wednesday, weeklyPath); err != nil {
		t.Fatal(err)
	}
	if got := r.WeekStateFor(testPortfolio, sunday); got != StateWeeklyOnly {
		t.Fatalf("state = %v, want weekly_only", got)
	}

	writeDailyFile(t, r, wednesday, "wed.csv", dailyHeader+
		"900.00,1000.00,DEAL001,Active\n"+
		"1800.00,2000.00,DEAL002,Active\n")
	if _, err := r.RebuildDailyPivot(testPortfolio, wednesday); err != nil {
		t.Fatal(err)
	}
	if got := r.WeekStateFor(testPortfolio, sunday); got != StateBoth {
		t.Fatalf("state = %v, want both", got)
	}

	combined, err := r.UpdateCombinedPivot(testPortfolio, sunday)
	if err != nil {
		t.Fatal(err)
	}
	if combined == nil {
		t.Fatal("combined pivot expected with both sides present")
	}
	if got := combined.DataRowCount(); got != 3 {
		t.Fatalf("combined DataRowCount = %d, want 3", got)
	}
	if math.Abs(combined.TotalGross-7500) > 1e-2 ||
		math.Abs(combined.TotalFee-750) > 1e-2 ||
		math.Abs(combined.TotalNet-6750) > 1e-2 {
		t.Errorf("combined totals = %v/%v/%v, want 7500/750/6750",
			combined.TotalGross, combined.TotalFee, combined.TotalNet)
	}
}

func TestRemoveLastDailyFileTearsDownPivots(t *testing.T) {
	r := newTestReconciler(t)
	writeDailyFile(t, r, wednesday, "wed.csv", dailyHeader+
		"90.00,100.00,DEAL001,Active\n")
	weeklyPath := writeWeeklyFile(t, r, "weekly.csv", weeklyHeader+
		"DEAL001,100.00,10.00,90.00\n")
	if _, err := r.RebuildDailyPivot(testPortfolio, wednesday); err != nil {
		t.Fatal(err)
	}
	if _, err := r.BuildWeeklyPivot(testPortfolio, wednesday, weeklyPath); err != nil {
		t.Fatal(err)
	}
	if got := r.WeekStateFor(testPortfolio, sunday); got != StateBoth {
		t.Fatalf("state = %v, want both", got)
	}

	if err := r.RemoveDailyFile(testPortfolio, wednesday, "wed.csv"); err != nil {
		t.Fatal(err)
	}
	if got := r.WeekStateFor(testPortfolio, sunday); got != StateWeeklyOnly {
		t.Errorf("state = %v, want weekly_only after last daily file removed", got)
	}
	combinedPath := r.Dirs.ClearViewPivotPath(testPortfolio, directories.ClearViewCombined, sunday)
	if _, err := os.Stat(combinedPath); !os.IsNotExist(err) {
		t.Error("combined pivot should be removed with the daily pivot")
	}
}

func TestRemoveOneDailyFileRebuilds(t *testing.T) {
	r := newTestReconciler(t)
	writeDailyFile(t, r, wednesday, "wed.csv", dailyHeader+
		"90.00,100.00,DEAL001,Active\n")
	writeDailyFile(t, r, thursday, "thu.csv", dailyHeader+
		"45.00,50.00,DEAL001,Active\n")
	if _, err := r.RebuildDailyPivot(testPortfolio, wednesday); err != nil {
		t.Fatal(err)
	}

	if err := r.RemoveDailyFile(testPortfolio, thursday, "thu.csv"); err != nil {
		t.Fatal(err)
	}
	if got := r.WeekStateFor(testPortfolio, sunday); got != StateDailyOnly {
		t.Fatalf("state = %v, want daily_only", got)
	}
	daily, err := r.DailyFilesForWeek(testPortfolio, sunday)
	if err != nil {
		t.Fatal(err)
	}
	if len(daily) != 1 {
		t.Fatalf("daily pool = %d files, want 1", len(daily))
	}
}

func TestRemoveWeeklyPivotKeepsDaily(t *testing.T) {
	r := newTestReconciler(t)
	writeDailyFile(t, r, wednesday, "wed.csv", dailyHeader+
		"90.00,100.00,DEAL001,Active\n")
	weeklyPath := writeWeeklyFile(t, r, "weekly.csv", weeklyHeader+
		"DEAL001,100.00,10.00,90.00\n")
	if _, err := r.RebuildDailyPivot(testPortfolio, wednesday); err != nil {
		t.Fatal(err)
	}
	if _, err := r.BuildWeeklyPivot(testPortfolio, wednesday, weeklyPath); err != nil {
		t.Fatal(err)
	}

	if err := r.RemoveWeeklyPivot(testPortfolio, sunday); err != nil {
		t.Fatal(err)
	}
	if got := r.WeekStateFor(testPortfolio, sunday); got != StateDailyOnly {
		t.Errorf("state = %v, want daily_only after weekly teardown", got)
	}
}

func TestProcessDailyFilesEmptyPool(t *testing.T) {
	if _, err := ProcessDailyFiles(nil); err == nil {
		t.Fatal("expected error for empty pool")
	}
}
