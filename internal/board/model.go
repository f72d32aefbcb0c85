// Package board implements the weekly time-slot and activity grid, template
// propagation between weeks, and the background generator that pre-fills
// future weeks.
package board

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/javiermolinar/shcadule/internal/weekid"
)

// Validation errors.
var (
	ErrMissingUser     = errors.New("missing user id")
	ErrMissingWeek     = errors.New("missing week id")
	ErrInvalidTime     = errors.New("time must be in HH:MM format")
	ErrEmptyTitle      = errors.New("activity title cannot be empty")
	ErrInvalidDay      = errors.New("day must be monday through sunday")
	ErrInvalidColor    = errors.New("unknown activity color")
	ErrInvalidCategory = errors.New("unknown activity category")
)

// Not-found errors.
var (
	ErrSlotNotFound     = errors.New("time slot not found")
	ErrActivityNotFound = errors.New("activity not found")
	ErrBoardNotFound    = errors.New("board not found")
)

// Day is a lowercase English weekday name used as the first half of an ActivityKey.
type Day string

const (
	Monday    Day = "monday"
	Tuesday   Day = "tuesday"
	Wednesday Day = "wednesday"
	Thursday  Day = "thursday"
	Friday    Day = "friday"
	Saturday  Day = "saturday"
	Sunday    Day = "sunday"
)

// Days lists the board columns in display order.
var Days = [7]Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseDay accepts a day name in any case.
func ParseDay(s string) (Day, error) {
	d := Day(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDay, s)
	}
	return d, nil
}

// Valid reports whether d is one of the seven board days.
func (d Day) Valid() bool {
	return slices.Contains(Days[:], d)
}

// Color is an activity's display color.
type Color string

const (
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorPurple Color = "purple"
	ColorPink   Color = "pink"
	ColorIndigo Color = "indigo"
	ColorOrange Color = "orange"
)

// Colors lists the accepted activity colors. The first is the default.
var Colors = []Color{ColorBlue, ColorGreen, ColorRed, ColorYellow, ColorPurple, ColorPink, ColorIndigo, ColorOrange}

// ParseColor returns ColorBlue for an empty string.
func ParseColor(s string) (Color, error) {
	if s == "" {
		return ColorBlue, nil
	}
	c := Color(strings.ToLower(s))
	if !slices.Contains(Colors, c) {
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return c, nil
}

// Category classifies an activity for the weekly summary.
type Category string

const (
	CategoryStudy  Category = "study"
	CategoryWork   Category = "work"
	CategoryRest   Category = "rest"
	CategoryGym    Category = "gym"
	CategoryMeal   Category = "meal"
	CategorySocial Category = "social"
	CategoryOther  Category = "other"
)

// Categories lists the accepted activity categories.
var Categories = []Category{CategoryStudy, CategoryWork, CategoryRest, CategoryGym, CategoryMeal, CategorySocial, CategoryOther}

// ParseCategory returns CategoryOther for an empty string.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return CategoryOther, nil
	}
	c := Category(strings.ToLower(s))
	if !slices.Contains(Categories, c) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

// TimeSlot is a time range shared by all seven days of a board.
type TimeSlot struct {
	ID        string    `json:"id"`
	StartTime string    `json:"startTime"` // "HH:MM"
	EndTime   string    `json:"endTime"`   // "HH:MM"
	CreatedAt time.Time `json:"createdAt"`
}

// Activity is an item placed in one (day, slot) cell.
type Activity struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Color       Color     `json:"color"`
	Category    Category  `json:"category"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ActivityKey addresses a board cell as "<day>_<slotID>".
type ActivityKey string

// Key builds the ActivityKey for a cell.
func Key(day Day, slotID string) ActivityKey {
	return ActivityKey(string(day) + "_" + slotID)
}

// Split returns the day and slot ID of k.
func (k ActivityKey) Split() (Day, string, bool) {
	day, slotID, ok := strings.Cut(string(k), "_")
	if !ok || !Day(day).Valid() {
		return "", "", false
	}
	return Day(day), slotID, true
}

// Board is the persisted per-user, per-week document.
type Board struct {
	WeekID         weekid.ID                  `json:"weekId"`
	TimeSlots      []TimeSlot                 `json:"timeSlots"`
	Activities     map[ActivityKey][]Activity `json:"activities"`
	CreatedAt      time.Time                  `json:"createdAt"`
	UpdatedAt      time.Time                  `json:"updatedAt"`
	AutoGenerated  bool                       `json:"autoGenerated,omitempty"`
	TemplateWeekID weekid.ID                  `json:"templateWeekId,omitempty"`
}

// newBoard returns an empty board stamped with now.
func newBoard(id weekid.ID, now time.Time) Board {
	return Board{
		WeekID:     id,
		TimeSlots:  []TimeSlot{},
		Activities: map[ActivityKey][]Activity{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Slot returns the slot with the given ID.
func (b Board) Slot(id string) (TimeSlot, bool) {
	i := b.slotIndex(id)
	if i < 0 {
		return TimeSlot{}, false
	}
	return b.TimeSlots[i], true
}

// Cell returns the activities at (day, slotID).
func (b Board) Cell(day Day, slotID string) []Activity {
	return b.Activities[Key(day, slotID)]
}

func (b Board) slotIndex(id string) int {
	return slices.IndexFunc(b.TimeSlots, func(s TimeSlot) bool { return s.ID == id })
}

// normalize replaces nil collections left by decoding sparse documents.
func (b *Board) normalize() {
	if b.TimeSlots == nil {
		b.TimeSlots = []TimeSlot{}
	}
	if b.Activities == nil {
		b.Activities = map[ActivityKey][]Activity{}
	}
}

// clone returns a deep copy of b.
func (b Board) clone() Board {
	out := b
	out.TimeSlots = slices.Clone(b.TimeSlots)
	out.Activities = maps.Clone(b.Activities)
	for k, list := range out.Activities {
		out.Activities[k] = slices.Clone(list)
	}
	out.normalize()
	return out
}
