package directories

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"Excelerate/internal/config"
)

// Layout resolves every path in the on-disk document tree. The tree is two
// parallel hierarchies per portfolio: raw funder uploads and the pivot
// tables generated from them.
type Layout struct {
	Base string
}

const appDirName = "Excelerate"

// ClearViewKind names the three pivot stages of a Clear View week.
type ClearViewKind string

const (
	ClearViewDaily    ClearViewKind = "Daily"
	ClearViewWeekly   ClearViewKind = "Weekly"
	ClearViewCombined ClearViewKind = "Combined"
)

var funderDirs = []string{"BHB", "BIG", "Boom", "eFin", "In Advance", "Kings"}

// DefaultLayout roots the tree under the user's home directory, honoring the
// data-root override when set.
func DefaultLayout() (Layout, error) {
	if root := config.DataRoot(); root != "" {
		return Layout{Base: root}, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return Layout{}, fmt.Errorf("resolving home directory: %w", err)
	}
	return Layout{Base: filepath.Join(home, appDirName)}, nil
}

// Ensure creates the full tree for every portfolio.
func (l Layout) Ensure() error {
	for _, portfolio := range config.Portfolios {
		dirs := []string{
			l.WorkbookDir(portfolio),
		}
		for _, funder := range funderDirs {
			dirs = append(dirs,
				filepath.Join(l.Base, portfolio, "Funder Uploads", "Weekly", funder),
				filepath.Join(l.Base, portfolio, "Funder Pivot Tables", "Weekly", funder),
			)
		}
		dirs = append(dirs,
			filepath.Join(l.Base, portfolio, "Funder Uploads", "Weekly", "Clear View", "Daily"),
			filepath.Join(l.Base, portfolio, "Funder Uploads", "Weekly", "Clear View", "Weekly"),
		)
		for _, kind := range []ClearViewKind{ClearViewDaily, ClearViewWeekly, ClearViewCombined} {
			dirs = append(dirs, l.clearViewPivotDir(portfolio, kind))
		}
		for _, dir := range dirs {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", dir, err)
			}
		}
	}
	return nil
}

func (l Layout) WorkbookDir(portfolio string) string {
	return filepath.Join(l.Base, portfolio, "Workbooks")
}

// FunderUploadDir is where raw weekly reports for a non Clear View funder land.
func (l Layout) FunderUploadDir(portfolio, funder string) string {
	return filepath.Join(l.Base, portfolio, "Funder Uploads", "Weekly", funder)
}

// FunderPivotPath is the pivot CSV for one funder and report date.
func (l Layout) FunderPivotPath(portfolio, funder, reportDate string) string {
	name := DateSegment(reportDate) + ".csv"
	return filepath.Join(l.Base, portfolio, "Funder Pivot Tables", "Weekly", funder, name)
}

// ClearViewDailyUploadDir holds the raw daily files for one report date.
func (l Layout) ClearViewDailyUploadDir(portfolio, reportDate string) string {
	return filepath.Join(l.Base, portfolio, "Funder Uploads", "Weekly", "Clear View", "Daily", DateSegment(reportDate))
}

// ClearViewWeeklyUploadDir holds the raw weekly file for one week.
func (l Layout) ClearViewWeeklyUploadDir(portfolio string) string {
	return filepath.Join(l.Base, portfolio, "Funder Uploads", "Weekly", "Clear View", "Weekly")
}

func (l Layout) clearViewPivotDir(portfolio string, kind ClearViewKind) string {
	return filepath.Join(l.Base, portfolio, "Funder Pivot Tables", "Weekly", "Clear View", string(kind))
}

// ClearViewPivotPath is the pivot CSV for one stage of a Clear View week,
// named for the week start date.
func (l Layout) ClearViewPivotPath(portfolio string, kind ClearViewKind, weekStart string) string {
	return filepath.Join(l.clearViewPivotDir(portfolio, kind), DateSegment(weekStart)+".csv")
}

// DateSegment makes a display date safe as a path component.
func DateSegment(date string) string {
	return strings.ReplaceAll(date, "/", "-")
}
