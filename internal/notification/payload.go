package notification

import (
	"fmt"
	"strings"
)

type NotificationType string

const (
	TypeSuccess NotificationType = "success"
	TypeError   NotificationType = "error"
	TypeWarning NotificationType = "warning"
	TypeInfo    NotificationType = "info"
)

// Payload is what the desktop shell renders. Duration is in milliseconds;
// zero means the notification stays until dismissed.
type Payload struct {
	Type        NotificationType `json:"notification_type"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Duration    int              `json:"duration,omitempty"`
}

func Success(title, description string) Payload {
	return Payload{Type: TypeSuccess, Title: title, Description: description, Duration: 3000}
}

func Error(title, description string) Payload {
	return Payload{Type: TypeError, Title: title, Description: description}
}

func Warning(title, description string) Payload {
	return Payload{Type: TypeWarning, Title: title, Description: description, Duration: 5000}
}

func Info(title, description string) Payload {
	return Payload{Type: TypeInfo, Title: title, Description: description, Duration: 4000}
}

// ValidationError describes one structural problem found while probing a
// funder file. Field is "Column" for missing-column errors.
type ValidationError struct {
	Field    string `json:"field"`
	Expected string `json:"expected"`
	Found    string `json:"found"`
	Line     int    `json:"line,omitempty"`
}

type ValidationResult struct {
	IsValid  bool              `json:"is_valid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []string          `json:"warnings"`
}

func Valid() ValidationResult {
	return ValidationResult{IsValid: true}
}

func (r *ValidationResult) AddError(e ValidationError) {
	r.IsValid = false
	r.Errors = append(r.Errors, e)
}

func (r *ValidationResult) AddWarning(w string) {
	r.Warnings = append(r.Warnings, w)
}

func (r *ValidationResult) MissingColumns() []string {
	var cols []string
	for _, e := range r.Errors {
		if e.Field == "Column" && e.Found == "Missing" {
			cols = append(cols, e.Expected)
		}
	}
	return cols
}

// wrongFileThreshold: at this many missing columns the file is almost
// certainly the wrong report entirely, so the per-column listing is noise.
const wrongFileThreshold = 3

// ToNotification converts a validation result into the payload shown to the
// user for the given file.
func (r ValidationResult) ToNotification(fileName string) Payload {
	if r.IsValid {
		if len(r.Warnings) > 0 {
			return Warning(
				fmt.Sprintf("File validated with warnings: %s", fileName),
				strings.Join(r.Warnings, ", "),
			)
		}
		return Success(fmt.Sprintf("File validated successfully: %s", fileName), "")
	}

	missing := r.MissingColumns()
	switch {
	case len(missing) >= wrongFileThreshold:
		return Error(
			"Wrong file type",
			"This doesn't appear to be the correct file format for this funder. Please check that you've selected the right file.",
		)
	case len(missing) > 0:
		quoted := make([]string, len(missing))
		for i, c := range missing {
			quoted[i] = fmt.Sprintf("'%s'", c)
		}
		return Error(
			"Missing required columns",
			fmt.Sprintf("File is missing: %s", strings.Join(quoted, ", ")),
		)
	case len(r.Errors) == 1:
		e := r.Errors[0]
		return Error(
			"Validation error",
			fmt.Sprintf("%s: Expected '%s', found '%s'", e.Field, e.Expected, e.Found),
		)
	default:
		return Error(
			"File format issues",
			fmt.Sprintf("Found %d issues with the file structure. Please check the file format.", len(r.Errors)),
		)
	}
}
