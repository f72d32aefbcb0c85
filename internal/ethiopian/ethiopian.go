// Package ethiopian converts between the Gregorian and the 13-month Ethiopian calendar.
//
// The arithmetic uses a fixed epoch (Meskerem 1, year 1) and treats every
// fourth year as a leap year with a 6-day Pagumen. It is an approximation of
// the civil calendar, good enough for labelling weeks; it is not an
// authoritative converter.
package ethiopian

import (
	"errors"
	"fmt"
	"time"
)

// ErrBeforeEpoch is returned for Gregorian dates earlier than Meskerem 1, year 1.
var ErrBeforeEpoch = errors.New("date is before the ethiopian epoch")

// Pagumen is the short 13th month (5 days, 6 in leap years).
const Pagumen = 13

const (
	daysPerMonth  = 30
	secondsPerDay = 24 * 60 * 60
)

// epoch is August 29, 8 AD (Julian), expressed in the proleptic Gregorian
// calendar used by package time.
var epoch = time.Date(8, time.August, 27, 0, 0, 0, 0, time.UTC)

var monthNames = [13]string{
	"Meskerem", "Tikimt", "Hidar", "Tahsas", "Tir", "Yekatit",
	"Megabit", "Miazia", "Genbot", "Sene", "Hamle", "Nehase", "Pagumen",
}

// Date is a day in the Ethiopian calendar.
type Date struct {
	Year  int
	Month int // 1-13
	Day   int // 1-30, 1-6 in Pagumen
}

// MonthName returns the Amharic month name, or "" for an out-of-range month.
func (d Date) MonthName() string {
	if d.Month < 1 || d.Month > Pagumen {
		return ""
	}
	return monthNames[d.Month-1]
}

// DayOfYear returns the 1-based day within the Ethiopian year.
func (d Date) DayOfYear() int {
	return (d.Month-1)*daysPerMonth + d.Day
}

// String renders the date as "4 Tahsas 2017 EC".
func (d Date) String() string {
	return fmt.Sprintf("%d %s %d EC", d.Day, d.MonthName(), d.Year)
}

// Gregorian returns the Gregorian date for d.
func (d Date) Gregorian() time.Time {
	return ToGregorian(d.Year, d.Month, d.Day)
}

// IsLeapYear reports whether the Ethiopian year has a 6-day Pagumen.
func IsLeapYear(year int) bool {
	return yearLength(year) == 366
}

// FromGregorian converts the calendar day of t (in t's location) to an Ethiopian date.
func FromGregorian(t time.Time) (Date, error) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := int((day.Unix() - epoch.Unix()) / secondsPerDay)
	if offset < 0 {
		return Date{}, fmt.Errorf("%w: %s", ErrBeforeEpoch, day.Format("2006-01-02"))
	}

	// First estimate from the mean year length, then settle on the year whose
	// day range actually contains the offset.
	year := offset*4/1461 + 1
	remaining := offset - yearStart(year)
	for remaining < 0 {
		year--
		remaining = offset - yearStart(year)
	}
	for remaining >= yearLength(year) {
		year++
		remaining = offset - yearStart(year)
	}

	month := remaining/daysPerMonth + 1
	dom := remaining%daysPerMonth + 1
	if month > Pagumen {
		month = Pagumen
	}
	if dom < 1 {
		dom = 1
	}
	if month == Pagumen && dom > 6 {
		dom = 6
	}

	return Date{Year: year, Month: month, Day: dom}, nil
}

// ToGregorian converts an Ethiopian date to the Gregorian calendar (UTC midnight).
// Out-of-range months and days are not rejected; they overflow arithmetically.
func ToGregorian(year, month, day int) time.Time {
	total := yearStart(year) + (month-1)*daysPerMonth + (day - 1)
	return epoch.AddDate(0, 0, total)
}

// Validate checks that d names a real day in this calendar.
func (d Date) Validate() error {
	if d.Year < 1 {
		return fmt.Errorf("year %d out of range", d.Year)
	}
	if d.Month < 1 || d.Month > Pagumen {
		return fmt.Errorf("month %d out of range", d.Month)
	}
	maxDay := daysPerMonth
	if d.Month == Pagumen {
		maxDay = 5
		if IsLeapYear(d.Year) {
			maxDay = 6
		}
	}
	if d.Day < 1 || d.Day > maxDay {
		return fmt.Errorf("day %d out of range for %s", d.Day, d.MonthName())
	}
	return nil
}

// yearStart returns the day offset of Meskerem 1 of year from the epoch.
func yearStart(year int) int {
	return (year-1)*365 + (year-1)/4
}

func yearLength(year int) int {
	return yearStart(year+1) - yearStart(year)
}
