package models

import "time"

// DayRecord accumulates one calendar day of activity for a user.
type DayRecord struct {
	Date   time.Time `json:"date"` // timestamp of the first submission that day
	Steps  int64     `json:"steps"`
	Energy float64   `json:"energy"`
}

// Day returns the calendar date of the record in loc, time zeroed.
func (d DayRecord) Day(loc *time.Location) time.Time {
	return StartOfDay(d.Date, loc)
}

// StartOfDay truncates t to midnight of its calendar date in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
