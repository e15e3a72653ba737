package models

import (
	"fmt"
	"time"
)

// Period is one calendar month in a fixed location. Its range is half-open:
// [first instant of the month, first instant of the next month).
type Period struct {
	Year     int
	Month    time.Month
	Location *time.Location
}

// DateRange filters transactions by date. A zero To means no upper bound.
type DateRange struct {
	From time.Time
	To   time.Time
}

func (r DateRange) Contains(t time.Time) bool {
	if t.Before(r.From) {
		return false
	}
	return r.To.IsZero() || t.Before(r.To)
}

func NewPeriod(year, month int, loc *time.Location) (Period, error) {
	if year < 1000 || year > 9999 {
		return Period{}, fmt.Errorf("%w: year %d", ErrInvalidPeriod, year)
	}
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
	}
	if loc == nil {
		loc = time.UTC
	}
	return Period{Year: year, Month: time.Month(month), Location: loc}, nil
}

// PeriodOf returns the period containing t, evaluated in loc.
func PeriodOf(t time.Time, loc *time.Location) Period {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return Period{Year: local.Year(), Month: local.Month(), Location: loc}
}

func (p Period) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, p.location())
}

func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

func (p Period) Range() DateRange {
	return DateRange{From: p.Start(), To: p.End()}
}

func (p Period) Contains(t time.Time) bool {
	return p.Range().Contains(t)
}

// DaysInMonth is the calendar length of the month (28 to 31).
func (p Period) DaysInMonth() int {
	return time.Date(p.Year, p.Month+1, 0, 0, 0, 0, 0, p.location()).Day()
}

// DayOf returns the day of month of t in the period's location.
func (p Period) DayOf(t time.Time) int {
	return t.In(p.location()).Day()
}

// Label is the human readable form, e.g. "March 2025".
func (p Period) Label() string {
	return fmt.Sprintf("%s %d", p.Month, p.Year)
}
