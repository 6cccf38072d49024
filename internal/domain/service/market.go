package service

import (
	"fmt"
	"time"
)

// Mainland fund trading sessions, local wall clock, minutes since midnight.
const (
	morningOpen    = 9*60 + 30
	morningClose   = 11*60 + 30
	afternoonOpen  = 13 * 60
	afternoonClose = 15 * 60
)

// InTradingSession reports whether t falls inside a trading session
// (Mon-Fri, 09:30-11:30 or 13:00-15:00, bounds inclusive). Intraday
// collection only runs inside these windows.
func InTradingSession(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	m := t.Hour()*60 + t.Minute()
	return (m >= morningOpen && m <= morningClose) || (m >= afternoonOpen && m <= afternoonClose)
}

// DayKey formats t as the YYYY-MM-DD key used to date intraday series.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// ClockKey formats t as the zero-padded HH:MM key used for intraday
// points. Zero padding keeps lexicographic order chronological.
func ClockKey(t time.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}
