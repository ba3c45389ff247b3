package clearview

import (
	"fmt"
	"time"

	"Excelerate/internal/config"
)

var dateFormats = []string{
	config.DisplayDateFormat,
	"2006-01-02",
	"01-02-2006",
}

// WeekStart snaps any supported date form to the Sunday that starts its
// week, in display format. Every pivot of a Clear View week is keyed on
// this date regardless of which day the underlying file covers.
func WeekStart(date string) (string, error) {
	var parsed time.Time
	var err error
	for _, format := range dateFormats {
		parsed, err = time.Parse(format, date)
		if err == nil {
			break
		}
	}
	if err != nil {
		return "", fmt.Errorf("unrecognized date %q", date)
	}
	sunday := parsed.AddDate(0, 0, -int(parsed.Weekday()))
	return sunday.Format(config.DisplayDateFormat), nil
}
