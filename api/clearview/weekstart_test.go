package clearview

import "testing"

func TestWeekStart(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"07/15/2026", "07/12/2026"}, // Wednesday
		{"2026-07-15", "07/12/2026"},
		{"07-15-2026", "07/12/2026"},
		{"07/12/2026", "07/12/2026"}, // already Sunday
		{"07/18/2026", "07/12/2026"}, // Saturday, same week
		{"07/19/2026", "07/19/2026"}, // next Sunday
		{"01/01/2026", "12/28/2025"}, // week spans the year boundary
	}
	for _, c := range cases {
		got, err := WeekStart(c.in)
		if err != nil {
			t.Errorf("WeekStart(%q) error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("WeekStart(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestWeekStartRejectsUnknownFormat(t *testing.T) {
	for _, in := range []string{"", "July 15 2026", "15/07/2026"} {
		if _, err := WeekStart(in); err == nil {
			t.Errorf("WeekStart(%q) expected error", in)
		}
	}
}
