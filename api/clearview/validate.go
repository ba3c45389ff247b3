package clearview

import (
	"strings"

	"Excelerate/api/funder"
	"Excelerate/internal/notification"
)

// ValidateDaily probes a daily report's headers before it joins the pool.
func ValidateDaily(path string) notification.ValidationResult {
	return validateColumns(path, "Clear View daily", dailyRequiredColumns)
}

// ValidateWeekly probes a weekly settlement report's headers.
func ValidateWeekly(path string) notification.ValidationResult {
	return validateColumns(path, "Clear View weekly", weeklyRequiredColumns)
}

func validateColumns(path, label string, required []string) notification.ValidationResult {
	var result notification.ValidationResult
	result.IsValid = true

	headers, err := funder.FileHeaders(path)
	if err != nil {
		result.AddError(notification.ValidationError{
			Field:    "file",
			Expected: "readable " + label + " report",
			Found:    err.Error(),
		})
		return result
	}
	have := make(map[string]bool, len(headers))
	for _, h := range headers {
		have[strings.ToLower(strings.TrimSpace(h))] = true
	}
	for _, col := range required {
		if !have[strings.ToLower(col)] {
			result.AddError(notification.ValidationError{
				Field:    "Column",
				Expected: col,
				Found:    "Missing",
			})
		}
	}
	return result
}
