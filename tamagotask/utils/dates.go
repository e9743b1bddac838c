package utils

import "time"

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// LocalDate formats t as a calendar date in the machine's local timezone.
// All daily counters (caps, streaks) are keyed by this value.
func LocalDate(t time.Time) string {
	return t.Local().Format(dayLayout)
}

// Month formats t as a calendar month key, e.g. "2026-08".
func Month(t time.Time) string {
	return t.Local().Format(monthLayout)
}

// MonthsAgo returns the month key of the first day of the month n calendar
// months before t.
func MonthsAgo(t time.Time, n int) string {
	y, m, _ := t.Local().Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	return first.AddDate(0, -n, 0).Format(monthLayout)
}

// MonthBefore reports whether month a sorts strictly before month b. Month
// keys are zero-padded so lexicographic order matches chronological order.
func MonthBefore(a, b string) bool {
	return a < b
}

// IsYesterday reports whether date (a day key) is exactly one calendar day
// before t's local date.
func IsYesterday(date string, t time.Time) bool {
	return date == LocalDate(t.AddDate(0, 0, -1))
}
