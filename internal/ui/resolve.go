package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/javiermolinar/shcadule/internal/board"
)

var errAmbiguous = errors.New("ambiguous reference")

// resolveSlot finds a slot by 1-based position, start time ("09:00"), or ID prefix.
func resolveSlot(b board.Board, ref string) (board.TimeSlot, error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(b.TimeSlots) {
			return board.TimeSlot{}, fmt.Errorf("%w: no slot #%d", board.ErrSlotNotFound, n)
		}
		return b.TimeSlots[n-1], nil
	}

	var matches []board.TimeSlot
	for _, s := range b.TimeSlots {
		if s.ID == ref {
			return s, nil
		}
		if s.StartTime == ref || (ref != "" && strings.HasPrefix(s.ID, ref)) {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 0:
		return board.TimeSlot{}, fmt.Errorf("%w: %q", board.ErrSlotNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return board.TimeSlot{}, fmt.Errorf("%w: %q matches %d slots", errAmbiguous, ref, len(matches))
	}
}

// resolveActivity finds an activity in a cell by 1-based position or ID prefix.
func resolveActivity(list []board.Activity, ref string) (board.Activity, error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(list) {
			return board.Activity{}, fmt.Errorf("%w: no activity #%d in this cell", board.ErrActivityNotFound, n)
		}
		return list[n-1], nil
	}

	var matches []board.Activity
	for _, a := range list {
		if a.ID == ref {
			return a, nil
		}
		if ref != "" && strings.HasPrefix(a.ID, ref) {
			matches = append(matches, a)
		}
	}
	switch len(matches) {
	case 0:
		return board.Activity{}, fmt.Errorf("%w: %q", board.ErrActivityNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return board.Activity{}, fmt.Errorf("%w: %q matches %d activities", errAmbiguous, ref, len(matches))
	}
}

// resolveRef finds an item by 1-based position or ID prefix.
func resolveRef[T any](items []T, ref string, id func(T) string, notFound error) (T, error) {
	var zero T
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(items) {
			return zero, fmt.Errorf("%w: no #%d", notFound, n)
		}
		return items[n-1], nil
	}

	var matches []T
	for _, it := range items {
		if id(it) == ref {
			return it, nil
		}
		if ref != "" && strings.HasPrefix(id(it), ref) {
			matches = append(matches, it)
		}
	}
	switch len(matches) {
	case 0:
		return zero, fmt.Errorf("%w: %q", notFound, ref)
	case 1:
		return matches[0], nil
	default:
		return zero, fmt.Errorf("%w: %q matches %d items", errAmbiguous, ref, len(matches))
	}
}
