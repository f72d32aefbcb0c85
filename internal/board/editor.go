package board

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/javiermolinar/shcadule/internal/weekid"
)

// Editor mutates one loaded board. Each mutation writes the whole document
// and replaces the in-memory copy only after the write succeeds.
//
// Operations on one Editor are serialized. Two Editors for the same board do
// not coordinate: the last successful write wins.
type Editor struct {
	svc    *Service
	userID string
	weekID weekid.ID

	mu    sync.Mutex
	board Board
	raw   []byte
}

// SlotUpdate holds the slot fields to change. Nil fields are kept.
type SlotUpdate struct {
	StartTime *string
	EndTime   *string
}

// ActivityInput describes a new activity. Empty Color and Category take their defaults.
type ActivityInput struct {
	Title       string
	Description string
	Color       Color
	Category    Category
}

// ActivityUpdate holds the activity fields to change. Nil fields are kept.
type ActivityUpdate struct {
	Title       *string
	Description *string
	Color       *Color
	Category    *Category
}

// WeekID returns the week being edited.
func (e *Editor) WeekID() weekid.ID { return e.weekID }

// Board returns a deep copy of the current board.
func (e *Editor) Board() Board {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.board.clone()
}

// AddTimeSlot appends a slot and keeps the slot list ordered by start time.
// The first slot on an empty board queues generation of the following weeks.
func (e *Editor) AddTimeSlot(ctx context.Context, start, end string) (TimeSlot, error) {
	if err := validateTime(start); err != nil {
		return TimeSlot{}, fmt.Errorf("start time: %w", err)
	}
	if err := validateTime(end); err != nil {
		return TimeSlot{}, fmt.Errorf("end time: %w", err)
	}

	slot := TimeSlot{
		ID:        e.svc.newID(),
		StartTime: start,
		EndTime:   end,
		CreatedAt: e.svc.now(),
	}

	var first bool
	err := e.mutate(ctx, func(b *Board) error {
		first = len(b.TimeSlots) == 0
		b.TimeSlots = append(b.TimeSlots, slot)
		sortSlots(b.TimeSlots)
		return nil
	})
	if err != nil {
		return TimeSlot{}, err
	}

	if first {
		e.svc.generator.Enqueue(ctx, Job{UserID: e.userID, Template: e.weekID, WeeksAhead: e.svc.weeksAhead})
	}
	return slot, nil
}

// UpdateTimeSlot changes a slot's times and re-sorts the slot list.
func (e *Editor) UpdateTimeSlot(ctx context.Context, slotID string, u SlotUpdate) error {
	if u.StartTime != nil {
		if err := validateTime(*u.StartTime); err != nil {
			return fmt.Errorf("start time: %w", err)
		}
	}
	if u.EndTime != nil {
		if err := validateTime(*u.EndTime); err != nil {
			return fmt.Errorf("end time: %w", err)
		}
	}

	return e.mutate(ctx, func(b *Board) error {
		i := b.slotIndex(slotID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrSlotNotFound, slotID)
		}
		if u.StartTime != nil {
			b.TimeSlots[i].StartTime = *u.StartTime
		}
		if u.EndTime != nil {
			b.TimeSlots[i].EndTime = *u.EndTime
		}
		sortSlots(b.TimeSlots)
		return nil
	})
}

// DeleteTimeSlot removes a slot and every activity placed in it.
func (e *Editor) DeleteTimeSlot(ctx context.Context, slotID string) error {
	return e.mutate(ctx, func(b *Board) error {
		i := b.slotIndex(slotID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrSlotNotFound, slotID)
		}
		b.TimeSlots = slices.Delete(b.TimeSlots, i, i+1)
		for _, day := range Days {
			delete(b.Activities, Key(day, slotID))
		}
		return nil
	})
}

// AddActivity appends an activity to the (day, slotID) cell.
func (e *Editor) AddActivity(ctx context.Context, day Day, slotID string, in ActivityInput) (Activity, error) {
	if !day.Valid() {
		return Activity{}, fmt.Errorf("%w: %q", ErrInvalidDay, day)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Activity{}, ErrEmptyTitle
	}
	color, err := ParseColor(string(in.Color))
	if err != nil {
		return Activity{}, err
	}
	category, err := ParseCategory(string(in.Category))
	if err != nil {
		return Activity{}, err
	}

	now := e.svc.now()
	act := Activity{
		ID:          e.svc.newID(),
		Title:       title,
		Description: in.Description,
		Color:       color,
		Category:    category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = e.mutate(ctx, func(b *Board) error {
		if b.slotIndex(slotID) < 0 {
			return fmt.Errorf("%w: %s", ErrSlotNotFound, slotID)
		}
		key := Key(day, slotID)
		b.Activities[key] = append(b.Activities[key], act)
		return nil
	})
	if err != nil {
		return Activity{}, err
	}
	return act, nil
}

// UpdateActivity changes an activity in place and refreshes its UpdatedAt.
func (e *Editor) UpdateActivity(ctx context.Context, day Day, slotID, activityID string, u ActivityUpdate) error {
	if !day.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDay, day)
	}

	var title string
	if u.Title != nil {
		title = strings.TrimSpace(*u.Title)
		if title == "" {
			return ErrEmptyTitle
		}
	}
	var color Color
	if u.Color != nil {
		c, err := ParseColor(string(*u.Color))
		if err != nil {
			return err
		}
		color = c
	}
	var category Category
	if u.Category != nil {
		c, err := ParseCategory(string(*u.Category))
		if err != nil {
			return err
		}
		category = c
	}

	return e.mutate(ctx, func(b *Board) error {
		key := Key(day, slotID)
		list := b.Activities[key]
		i := activityIndex(list, activityID)
		if i < 0 {
			return fmt.Errorf("%w: %s in %s", ErrActivityNotFound, activityID, key)
		}

		act := &list[i]
		if u.Title != nil {
			act.Title = title
		}
		if u.Description != nil {
			act.Description = *u.Description
		}
		if u.Color != nil {
			act.Color = color
		}
		if u.Category != nil {
			act.Category = category
		}
		act.UpdatedAt = e.svc.now()
		return nil
	})
}

// DeleteActivity removes an activity from the (day, slotID) cell.
func (e *Editor) DeleteActivity(ctx context.Context, day Day, slotID, activityID string) error {
	if !day.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDay, day)
	}

	return e.mutate(ctx, func(b *Board) error {
		key := Key(day, slotID)
		i := activityIndex(b.Activities[key], activityID)
		if i < 0 {
			return fmt.Errorf("%w: %s in %s", ErrActivityNotFound, activityID, key)
		}
		b.removeActivity(key, i)
		return nil
	})
}

// MoveActivity moves an activity to the end of another cell in one write.
func (e *Editor) MoveActivity(ctx context.Context, fromDay Day, fromSlot, activityID string, toDay Day, toSlot string) error {
	if !fromDay.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDay, fromDay)
	}
	if !toDay.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDay, toDay)
	}

	return e.mutate(ctx, func(b *Board) error {
		if b.slotIndex(toSlot) < 0 {
			return fmt.Errorf("%w: %s", ErrSlotNotFound, toSlot)
		}
		from := Key(fromDay, fromSlot)
		i := activityIndex(b.Activities[from], activityID)
		if i < 0 {
			return fmt.Errorf("%w: %s in %s", ErrActivityNotFound, activityID, from)
		}

		act := b.Activities[from][i]
		act.UpdatedAt = e.svc.now()
		b.removeActivity(from, i)

		to := Key(toDay, toSlot)
		b.Activities[to] = append(b.Activities[to], act)
		return nil
	})
}

// mutate applies fn to a copy of the board and saves it.
func (e *Editor) mutate(ctx context.Context, fn func(*Board) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.board.clone()
	if err := fn(&next); err != nil {
		return err
	}
	return e.save(ctx, next)
}

// save must be called with e.mu held.
func (e *Editor) save(ctx context.Context, next Board) error {
	next.WeekID = e.weekID
	next.UpdatedAt = e.svc.now()
	if next.CreatedAt.IsZero() {
		next.CreatedAt = e.board.CreatedAt
	}
	if next.CreatedAt.IsZero() {
		next.CreatedAt = next.UpdatedAt
	}

	raw, err := e.svc.putBoard(ctx, e.userID, next, e.raw)
	if err != nil {
		return err
	}

	e.board = next
	e.raw = raw
	e.svc.logger.Debug("board saved",
		zap.String("user", e.userID), zap.Stringer("week", e.weekID), zap.Int("slots", len(next.TimeSlots)))
	return nil
}

func (b *Board) removeActivity(key ActivityKey, i int) {
	list := slices.Delete(b.Activities[key], i, i+1)
	if len(list) == 0 {
		delete(b.Activities, key)
		return
	}
	b.Activities[key] = list
}

func activityIndex(list []Activity, id string) int {
	return slices.IndexFunc(list, func(a Activity) bool { return a.ID == id })
}
