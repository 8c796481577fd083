package service

import "time"

// ShouldRun reports whether a transfer run may execute at the given fire
// time. Runs are blacked out on the last day of the month to stay clear of
// the month-end maintenance window.
func ShouldRun(fireTime time.Time) bool {
	return !isLastDayOfMonth(fireTime)
}

func isLastDayOfMonth(t time.Time) bool {
	return t.AddDate(0, 0, 1).Month() != t.Month()
}
