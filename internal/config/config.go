package config

import "os"

// Portfolios are the two books every upload, pivot and workbook is filed
// under. Directory trees and dashboards are built per portfolio.
var Portfolios = []string{"Alder", "White Rabbit"}

const (
	// DisplayDateFormat is how report dates appear in the UI and in file
	// names (after slashes are swapped for dashes).
	DisplayDateFormat = "01/02/2006"

	// TempFilePrefix marks scratch copies written during validated uploads.
	TempFilePrefix = "excelerate-"

	// CleanupSchedule is the cron spec for pruning stale temp files.
	CleanupSchedule = "0 3 * * *"
)

// DatabaseURL returns the metadata store DSN from the environment.
func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// DataRoot returns an override for the document tree base, if set.
func DataRoot() string {
	return os.Getenv("EXCELERATE_DATA_ROOT")
}

func ValidPortfolio(name string) bool {
	for _, p := range Portfolios {
		if p == name {
			return true
		}
	}
	return false
}
