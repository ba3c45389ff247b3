package clearview

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"Excelerate/api/pivot"
	"Excelerate/internal/directories"
)

// WeekState says which pivots exist for a Clear View week. The combined
// pivot is only ever present in StateBoth.
type WeekState int

const (
	StateNone WeekState = iota
	StateDailyOnly
	StateWeeklyOnly
	StateBoth
)

func (s WeekState) String() string {
	switch s {
	case StateDailyOnly:
		return "daily_only"
	case StateWeeklyOnly:
		return "weekly_only"
	case StateBoth:
		return "both"
	default:
		return "none"
	}
}

// Reconciler keeps the three pivots of each Clear View week consistent with
// the raw files on disk: the daily pivot is rebuilt from the whole pool of
// daily files, the weekly pivot from the settlement report, and the combined
// pivot exists exactly when both sides do.
type Reconciler struct {
	Dirs directories.Layout
}

func NewReconciler(dirs directories.Layout) *Reconciler {
	return &Reconciler{Dirs: dirs}
}

// WeekStateFor probes which pivots are on disk for a week.
func (r *Reconciler) WeekStateFor(portfolio, weekStart string) WeekState {
	daily := fileExists(r.Dirs.ClearViewPivotPath(portfolio, directories.ClearViewDaily, weekStart))
	weekly := fileExists(r.Dirs.ClearViewPivotPath(portfolio, directories.ClearViewWeekly, weekStart))
	switch {
	case daily && weekly:
		return StateBoth
	case daily:
		return StateDailyOnly
	case weekly:
		return StateWeeklyOnly
	default:
		return StateNone
	}
}

// DailyFilesForWeek lists every raw daily file whose date folder falls in
// the given week, sorted for deterministic pivot rebuilds.
func (r *Reconciler) DailyFilesForWeek(portfolio, weekStart string) ([]string, error) {
	root := filepath.Dir(r.Dirs.ClearViewDailyUploadDir(portfolio, weekStart))
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing daily uploads: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		ws, err := WeekStart(entry.Name())
		if err != nil || ws != weekStart {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		children, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("listing daily uploads: %w", err)
		}
		for _, child := range children {
			if child.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(child.Name())) {
			case ".csv", ".xlsx", ".xls":
				files = append(files, filepath.Join(dir, child.Name()))
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// RebuildDailyPivot regenerates the week's daily pivot from the current pool
// of raw daily files and refreshes the combined pivot.
func (r *Reconciler) RebuildDailyPivot(portfolio, reportDate string) (*pivot.Table, error) {
	weekStart, err := WeekStart(reportDate)
	if err != nil {
		return nil, err
	}
	files, err := r.DailyFilesForWeek(portfolio, weekStart)
	if err != nil {
		return nil, err
	}
	table, err := ProcessDailyFiles(files)
	if err != nil {
		return nil, err
	}
	if err := savePivot(table, r.Dirs.ClearViewPivotPath(portfolio, directories.ClearViewDaily, weekStart)); err != nil {
		return nil, err
	}
	if _, err := r.UpdateCombinedPivot(portfolio, weekStart); err != nil {
		return nil, err
	}
	return table, nil
}

// BuildWeeklyPivot generates the week's weekly pivot from a settlement
// report and refreshes the combined pivot.
func (r *Reconciler) BuildWeeklyPivot(portfolio, reportDate, path string) (*pivot.Table, error) {
	weekStart, err := WeekStart(reportDate)
	if err != nil {
		return nil, err
	}
	table, err := ProcessWeeklyFile(path)
	if err != nil {
		return nil, err
	}
	if err := savePivot(table, r.Dirs.ClearViewPivotPath(portfolio, directories.ClearViewWeekly, weekStart)); err != nil {
		return nil, err
	}
	if _, err := r.UpdateCombinedPivot(portfolio, weekStart); err != nil {
		return nil, err
	}
	return table, nil
}

// UpdateCombinedPivot merges the daily and weekly pivots when both exist.
// With only one side present it returns nil without error; the combined
// pivot never exists for a half-reconciled week.
func (r *Reconciler) UpdateCombinedPivot(portfolio, weekStart string) (*pivot.Table, error) {
	if r.WeekStateFor(portfolio, weekStart) != StateBoth {
		return nil, nil
	}
	daily, err := pivot.LoadCSV(r.Dirs.ClearViewPivotPath(portfolio, directories.ClearViewDaily, weekStart))
	if err != nil {
		return nil, err
	}
	weekly, err := pivot.LoadCSV(r.Dirs.ClearViewPivotPath(portfolio, directories.ClearViewWeekly, weekStart))
	if err != nil {
		return nil, err
	}
	combined := pivot.Merge(daily, weekly)
	if err := savePivot(combined, r.Dirs.ClearViewPivotPath(portfolio, directories.ClearViewCombined, weekStart)); err != nil {
		return nil, err
	}
	return combined, nil
}

// RemoveDailyFile deletes one raw daily file. With files left in the week
// the daily and combined pivots are rebuilt; removing the last file tears
// down the daily pivot and with it the combined one.
func (r *Reconciler) RemoveDailyFile(portfolio, reportDate, fileName string) error {
	weekStart, err := WeekStart(reportDate)
	if err != nil {
		return err
	}
	path := filepath.Join(r.Dirs.ClearViewDailyUploadDir(portfolio, reportDate), fileName)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing daily file: %w", err)
	}

	files, err := r.DailyFilesForWeek(portfolio, weekStart)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		if err := removeIfExists(r.Dirs.ClearViewPivotPath(portfolio, directories.ClearViewDaily, weekStart)); err != nil {
			return err
		}
		return removeIfExists(r.Dirs.ClearViewPivotPath(portfolio, directories.ClearViewCombined, weekStart))
	}
	_, err = r.RebuildDailyPivot(portfolio, reportDate)
	return err
}

// RemoveWeeklyPivot tears down the weekly and combined pivots for a week.
// The daily pivot stays; it is still valid on its own.
func (r *Reconciler) RemoveWeeklyPivot(portfolio, weekStart string) error {
	if err := removeIfExists(r.Dirs.ClearViewPivotPath(portfolio, directories.ClearViewWeekly, weekStart)); err != nil {
		return err
	}
	return removeIfExists(r.Dirs.ClearViewPivotPath(portfolio, directories.ClearViewCombined, weekStart))
}

func savePivot(t *pivot.Table, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating pivot directory: %w", err)
	}
	return t.SaveCSV(path)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing pivot: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
