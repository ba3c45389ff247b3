package notification

import (
	"strings"
	"testing"
)

func missingColumnResult(cols ...string) ValidationResult {
	var r ValidationResult
	r.IsValid = true
	for _, c := range cols {
		r.AddError(ValidationError{Field: "Column", Expected: c, Found: "Missing"})
	}
	return r
}

func TestToNotificationWrongFileType(t *testing.T) {
	r := missingColumnResult("A", "B", "C")
	note := r.ToNotification("report.csv")
	if note.Type != TypeError {
		t.Errorf("type = %q, want error", note.Type)
	}
	if note.Title != "Wrong file type" {
		t.Errorf("title = %q", note.Title)
	}
	if strings.Contains(note.Description, "'A'") {
		t.Error("wrong-file notification should not list individual columns")
	}
}

func TestToNotificationListsFewMissingColumns(t *testing.T) {
	r := missingColumnResult("Fee", "Balance")
	note := r.ToNotification("report.csv")
	if note.Title != "Missing required columns" {
		t.Errorf("title = %q", note.Title)
	}
	if !strings.Contains(note.Description, "'Fee'") || !strings.Contains(note.Description, "'Balance'") {
		t.Errorf("description %q should name both columns", note.Description)
	}
}

func TestToNotificationSingleStructuralError(t *testing.T) {
	var r ValidationResult
	r.IsValid = true
	r.AddError(ValidationError{Field: "file", Expected: "xlsx workbook", Found: ".pdf"})
	note := r.ToNotification("report.pdf")
	if note.Title != "Validation error" {
		t.Errorf("title = %q", note.Title)
	}
}

func TestToNotificationValid(t *testing.T) {
	r := Valid()
	note := r.ToNotification("report.csv")
	if note.Type != TypeSuccess {
		t.Errorf("type = %q, want success", note.Type)
	}
	if note.Duration == 0 {
		t.Error("success notifications should auto-dismiss")
	}
}

func TestToNotificationValidWithWarnings(t *testing.T) {
	r := Valid()
	r.AddWarning("trailing empty rows ignored")
	note := r.ToNotification("report.csv")
	if note.Type != TypeWarning {
		t.Errorf("type = %q, want warning", note.Type)
	}
}

func TestServiceFeedIsBounded(t *testing.T) {
	s := NewService()
	for i := 0; i < 250; i++ {
		s.Push(Info("n", ""))
	}
	if got := len(s.Notifications()); got != 200 {
		t.Errorf("feed length = %d, want 200", got)
	}
	s.Clear()
	if got := len(s.Notifications()); got != 0 {
		t.Errorf("feed length after clear = %d", got)
	}
}
