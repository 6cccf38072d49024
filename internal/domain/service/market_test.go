package service

import (
	"testing"
	"time"
)

func at(weekday time.Weekday, hour, min int) time.Time {
	// 2024-04-01 is a Monday
	base := time.Date(2024, 4, 1, hour, min, 0, 0, time.Local)
	return base.AddDate(0, 0, int(weekday-time.Monday))
}

func TestInTradingSession(t *testing.T) {
	cases := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"morning open", at(time.Monday, 9, 30), true},
		{"morning close", at(time.Tuesday, 11, 30), true},
		{"lunch break", at(time.Wednesday, 12, 0), false},
		{"afternoon open", at(time.Thursday, 13, 0), true},
		{"afternoon close", at(time.Friday, 15, 0), true},
		{"after close", at(time.Friday, 15, 1), false},
		{"before open", at(time.Monday, 9, 29), false},
		{"saturday", at(time.Saturday, 10, 0), false},
		{"sunday", at(time.Sunday, 14, 0), false},
	}
	for _, c := range cases {
		if got := InTradingSession(c.t); got != c.want {
			t.Errorf("%s (%v): expected %v, got %v", c.name, c.t, c.want, got)
		}
	}
}

func TestDayKey(t *testing.T) {
	d := time.Date(2024, 3, 5, 10, 0, 0, 0, time.Local)
	if got := DayKey(d); got != "2024-03-05" {
		t.Errorf("expected 2024-03-05, got %q", got)
	}
}

func TestClockKeyZeroPadded(t *testing.T) {
	d := time.Date(2024, 3, 5, 9, 5, 0, 0, time.Local)
	if got := ClockKey(d); got != "09:05" {
		t.Errorf("expected 09:05, got %q", got)
	}
}
