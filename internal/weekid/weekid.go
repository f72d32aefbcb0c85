// Package weekid derives canonical week identifiers for the Gregorian and
// Ethiopian calendars and maps them back to their seven days.
//
// Gregorian IDs follow ISO-8601 ("2025-W10"). Ethiopian IDs ("ETH-2017-W26")
// count weeks from Meskerem 1 as ceil(dayOfYear/7). That count is a local
// convention and does not match any external Ethiopian week-numbering standard.
package weekid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/javiermolinar/shcadule/internal/ethiopian"
)

// Validation errors.
var (
	ErrInvalidID     = errors.New("week id must look like 2025-W10 or ETH-2017-W26")
	ErrInvalidSystem = errors.New("calendar must be 'gregorian' or 'ethiopian'")
)

// WeeksPerYear is the fixed wrap-around point for week navigation. ISO years
// with 53 weeks are not accounted for.
const WeeksPerYear = 52

const ethiopianPrefix = "ETH-"

// System is a calendar system.
type System string

const (
	Gregorian System = "gregorian"
	Ethiopian System = "ethiopian"
)

// ParseSystem parses a calendar preference. An empty string means Gregorian.
func ParseSystem(s string) (System, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "gregorian":
		return Gregorian, nil
	case "ethiopian":
		return Ethiopian, nil
	default:
		return "", fmt.Errorf("%w, got %q", ErrInvalidSystem, s)
	}
}

// ID addresses one calendar week in one calendar system.
type ID string

// Parts is the decoded form of an ID.
type Parts struct {
	System System
	Year   int
	Week   int
}

// ID encodes p. Week numbers are zero padded to two digits.
func (p Parts) ID() ID {
	id := fmt.Sprintf("%d-W%02d", p.Year, p.Week)
	if p.System == Ethiopian {
		id = ethiopianPrefix + id
	}
	return ID(id)
}

// Parse decodes an ID. Only the canonical form produced by Parts.ID is
// accepted, so "2025-W1" and "2025-W001" are rejected.
func Parse(id ID) (Parts, error) {
	s := string(id)
	p := Parts{System: Gregorian}
	if rest, ok := strings.CutPrefix(s, ethiopianPrefix); ok {
		p.System = Ethiopian
		s = rest
	}

	yearStr, weekStr, ok := strings.Cut(s, "-W")
	if !ok {
		return Parts{}, fmt.Errorf("%w, got %q", ErrInvalidID, id)
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return Parts{}, fmt.Errorf("%w, got %q", ErrInvalidID, id)
	}
	week, err := strconv.Atoi(weekStr)
	if err != nil || week < 1 {
		return Parts{}, fmt.Errorf("%w, got %q", ErrInvalidID, id)
	}

	p.Year = year
	p.Week = week
	if p.ID() != id {
		return Parts{}, fmt.Errorf("%w, got %q (want %q)", ErrInvalidID, id, p.ID())
	}
	return p, nil
}

// System returns the calendar system encoded in id. It only inspects the prefix.
func (id ID) System() System {
	if strings.HasPrefix(string(id), ethiopianPrefix) {
		return Ethiopian
	}
	return Gregorian
}

// String implements fmt.Stringer.
func (id ID) String() string {
	return string(id)
}

// For returns the ID of the week containing t in the given calendar system.
func For(t time.Time, system System) (ID, error) {
	switch system {
	case Ethiopian:
		eth, err := ethiopian.FromGregorian(t)
		if err != nil {
			return "", fmt.Errorf("converting to ethiopian: %w", err)
		}
		week := (eth.DayOfYear() + 6) / 7
		return Parts{System: Ethiopian, Year: eth.Year, Week: week}.ID(), nil
	case Gregorian, "":
		year, week := t.ISOWeek()
		return Parts{System: Gregorian, Year: year, Week: week}.ID(), nil
	default:
		return "", fmt.Errorf("%w, got %q", ErrInvalidSystem, system)
	}
}

// Dates returns the seven dates, Monday through Sunday, belonging to id.
// Dates are UTC midnights.
func Dates(id ID) ([7]time.Time, error) {
	var days [7]time.Time

	p, err := Parse(id)
	if err != nil {
		return days, err
	}

	var monday time.Time
	if p.System == Ethiopian {
		// Meskerem 1 is approximated as September 11 of the Gregorian year
		// seven years later.
		anchor := time.Date(p.Year+7, time.September, 11+(p.Week-1)*7, 0, 0, 0, 0, time.UTC)
		monday = startOfWeek(anchor)
	} else {
		simple := time.Date(p.Year, time.January, 1+(p.Week-1)*7, 0, 0, 0, 0, time.UTC)
		dow := int(simple.Weekday())
		if dow <= int(time.Thursday) {
			monday = simple.AddDate(0, 0, 1-dow)
		} else {
			monday = simple.AddDate(0, 0, 8-dow)
		}
	}

	for i := range days {
		days[i] = monday.AddDate(0, 0, i)
	}
	return days, nil
}

// Step moves id by delta weeks one week at a time. Leaving [1, 52] rolls the
// year and resets the week to 1 (forward) or 52 (backward).
func Step(id ID, delta int) (ID, error) {
	p, err := Parse(id)
	if err != nil {
		return "", err
	}

	for ; delta > 0; delta-- {
		p.Week++
		if p.Week > WeeksPerYear {
			p.Year++
			p.Week = 1
		}
	}
	for ; delta < 0; delta++ {
		p.Week--
		if p.Week < 1 {
			p.Year--
			p.Week = WeeksPerYear
		}
	}

	return p.ID(), nil
}

// Next returns the week after id.
func Next(id ID) (ID, error) {
	return Step(id, 1)
}

// Prev returns the week before id.
func Prev(id ID) (ID, error) {
	return Step(id, -1)
}

// Advance adds n weeks to id and folds overflow in blocks of 52 weeks. It is
// the arithmetic used when pre-generating future weeks; unlike Step it keeps
// the overflow, so 2026-W53 advanced by 1 is 2027-W02.
func Advance(id ID, n int) (ID, error) {
	p, err := Parse(id)
	if err != nil {
		return "", err
	}

	p.Week += n
	for p.Week > WeeksPerYear {
		p.Week -= WeeksPerYear
		p.Year++
	}
	for p.Week < 1 {
		p.Week += WeeksPerYear
		p.Year--
	}

	return p.ID(), nil
}

// startOfWeek returns the Monday of the week containing t.
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return t.AddDate(0, 0, -(weekday - 1))
}
