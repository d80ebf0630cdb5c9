package valueobject

import (
	"testing"
	"time"
)

func TestComputeWindow(t *testing.T) {
	tests := []struct {
		name      string
		target    time.Time
		wantFirst string
		wantLast  string
	}{
		{"leap year February", time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC), "2024-02-01", "2024-02-29"},
		{"non-leap February", time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC), "2023-02-01", "2023-02-28"},
		{"century non-leap February", time.Date(1900, time.February, 1, 0, 0, 0, 0, time.UTC), "1900-02-01", "1900-02-28"},
		{"quad-century leap February", time.Date(2000, time.February, 10, 0, 0, 0, 0, time.UTC), "2000-02-01", "2000-02-29"},
		{"April has 30 days", time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC), "2024-04-01", "2024-04-30"},
		{"December stays in its year", time.Date(2024, time.December, 31, 23, 59, 0, 0, time.UTC), "2024-12-01", "2024-12-31"},
		{"January", time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), "2025-01-01", "2025-01-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ComputeWindow(tt.target)
			if w.FirstDay != tt.wantFirst {
				t.Errorf("expected first day %s, got %s", tt.wantFirst, w.FirstDay)
			}
			if w.LastDay != tt.wantLast {
				t.Errorf("expected last day %s, got %s", tt.wantLast, w.LastDay)
			}
			if w.FirstDay > w.LastDay {
				t.Errorf("first day %s is after last day %s", w.FirstDay, w.LastDay)
			}
		})
	}
}

func TestComputeWindow_IgnoresLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	w := ComputeWindow(time.Date(2024, time.March, 1, 0, 30, 0, 0, tokyo))
	if w.FirstDay != "2024-03-01" || w.LastDay != "2024-03-31" {
		t.Errorf("expected March window, got %s", w)
	}
}

func TestMonthWindow_Contains(t *testing.T) {
	w := ComputeWindow(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC))

	cases := map[string]bool{
		"2024-01-31": false,
		"2024-02-01": true,
		"2024-02-15": true,
		"2024-02-29": true,
		"2024-03-01": false,
	}
	for date, want := range cases {
		if got := w.Contains(date); got != want {
			t.Errorf("Contains(%s) = %v, want %v", date, got, want)
		}
	}
}

func TestShiftMonth(t *testing.T) {
	tests := []struct {
		name   string
		target time.Time
		delta  int
		want   string
	}{
		{"next from end of January", time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC), 1, "2024-02-01"},
		{"previous from March", time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), -1, "2024-02-01"},
		{"next across year end", time.Date(2024, time.December, 15, 0, 0, 0, 0, time.UTC), 1, "2025-01-01"},
		{"previous across year start", time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), -1, "2024-12-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShiftMonth(tt.target, tt.delta).Format(dateLayout)
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestParseMonth(t *testing.T) {
	got, err := ParseMonth("2024-02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if FormatMonth(got) != "2024-02" || got.Day() != 1 {
		t.Errorf("unexpected parsed month %v", got)
	}

	if _, err := ParseMonth("2024-13"); err == nil {
		t.Error("expected error for invalid month")
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2024-02-29"); err != nil {
		t.Errorf("unexpected error for leap day: %v", err)
	}
	for _, bad := range []string{"2023-02-29", "2024-2-1", "2024/02/01", ""} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
