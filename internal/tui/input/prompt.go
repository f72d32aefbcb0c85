// Package input parses the one-line prompts of the board browser.
package input

import (
	"errors"
	"strings"

	"github.com/javiermolinar/shcadule/internal/board"
)

// ErrSlotFormat is returned when a slot prompt is not two times.
var ErrSlotFormat = errors.New("enter a slot as HH:MM HH:MM")

// ParseSlot splits "09:00 10:00" or "09:00-10:00" into start and end.
// The times themselves are validated by the board.
func ParseSlot(s string) (start, end string, err error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '\t'
	})
	if len(fields) != 2 {
		return "", "", ErrSlotFormat
	}
	return fields[0], fields[1], nil
}

// ParseActivity reads "Title words #category @color". Tags may appear anywhere;
// the remaining words form the title.
func ParseActivity(s string) (board.ActivityInput, error) {
	var in board.ActivityInput
	var title []string

	for _, word := range strings.Fields(s) {
		switch {
		case len(word) > 1 && word[0] == '#':
			cat, err := board.ParseCategory(word[1:])
			if err != nil {
				return in, err
			}
			in.Category = cat
		case len(word) > 1 && word[0] == '@':
			c, err := board.ParseColor(word[1:])
			if err != nil {
				return in, err
			}
			in.Color = c
		default:
			title = append(title, word)
		}
	}

	in.Title = strings.Join(title, " ")
	if in.Title == "" {
		return in, board.ErrEmptyTitle
	}
	return in, nil
}
