package service

import (
	"time"
)

// ActivityWindowStart returns UTC midnight of the first day of a window of days ending today
func ActivityWindowStart(now time.Time, days int) time.Time {
	if days < 1 {
		days = 1
	}
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start.AddDate(0, 0, -(days - 1))
}
