package utils

import (
	"testing"
	"time"
)

func TestMonthsAgo(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		n    int
		want string
	}{
		{"same year", time.Date(2026, 8, 15, 12, 0, 0, 0, time.Local), 3, "2026-05"},
		{"across year boundary", time.Date(2026, 1, 31, 23, 0, 0, 0, time.Local), 3, "2025-10"},
		{"from a month end", time.Date(2026, 3, 31, 0, 0, 0, 0, time.Local), 1, "2026-02"},
		{"zero months", time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local), 0, "2026-08"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthsAgo(tt.from, tt.n); got != tt.want {
				t.Errorf("MonthsAgo(%v, %d) = %q, want %q", tt.from, tt.n, got, tt.want)
			}
		})
	}
}

func TestMonthBefore(t *testing.T) {
	if !MonthBefore("2025-12", "2026-01") {
		t.Error("MonthBefore(2025-12, 2026-01) = false, want true")
	}
	if MonthBefore("2026-08", "2026-08") {
		t.Error("MonthBefore(2026-08, 2026-08) = true, want false")
	}
	if MonthBefore("2026-09", "2026-08") {
		t.Error("MonthBefore(2026-09, 2026-08) = true, want false")
	}
}

func TestIsYesterday(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.Local)

	if !IsYesterday("2026-02-28", now) {
		t.Error("IsYesterday(2026-02-28) = false on 2026-03-01, want true")
	}
	if IsYesterday("2026-02-27", now) {
		t.Error("IsYesterday(2026-02-27) = true on 2026-03-01, want false")
	}
	if IsYesterday("", now) {
		t.Error("IsYesterday(empty) = true, want false")
	}
}

func TestLocalDate(t *testing.T) {
	got := LocalDate(time.Date(2026, 8, 31, 23, 59, 0, 0, time.Local))
	if got != "2026-08-31" {
		t.Errorf("LocalDate() = %q, want 2026-08-31", got)
	}
}
