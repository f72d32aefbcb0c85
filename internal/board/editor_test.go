package board

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/javiermolinar/shcadule/internal/store"
	"github.com/javiermolinar/shcadule/internal/weekid"
)

func TestLoad_CreatesAndPersistsEmptyBoard(t *testing.T) {
	mem := store.NewMemory()
	svc := newTestService(t, mem)

	ed := loadEditor(t, svc, "u1", "2025-W10")
	b := ed.Board()

	if b.WeekID != "2025-W10" {
		t.Errorf("WeekID = %q, want 2025-W10", b.WeekID)
	}
	if len(b.TimeSlots) != 0 || len(b.Activities) != 0 {
		t.Errorf("new board not empty: %+v", b)
	}
	if b.CreatedAt.IsZero() || !b.CreatedAt.Equal(b.UpdatedAt) {
		t.Errorf("timestamps = %v / %v", b.CreatedAt, b.UpdatedAt)
	}

	raw, err := mem.Get(context.Background(), store.BoardPath("u1", "2025-W10"))
	if err != nil {
		t.Fatalf("board was not persisted: %v", err)
	}
	if !gjson.GetBytes(raw, "timeSlots").IsArray() || !gjson.GetBytes(raw, "activities").IsObject() {
		t.Errorf("persisted board = %s", raw)
	}
}

func TestLoad_Validation(t *testing.T) {
	svc := newTestService(t, store.NewMemory())
	ctx := context.Background()

	tests := []struct {
		name    string
		user    string
		week    weekid.ID
		wantErr error
	}{
		{name: "missing user", user: "", week: "2025-W10", wantErr: ErrMissingUser},
		{name: "blank user", user: "  ", week: "2025-W10", wantErr: ErrMissingUser},
		{name: "missing week", user: "u1", week: "", wantErr: ErrMissingWeek},
		{name: "malformed week", user: "u1", week: "week-ten", wantErr: weekid.ErrInvalidID},
		{name: "unpadded week", user: "u1", week: "2025-W1", wantErr: weekid.ErrInvalidID},
		{name: "signed week", user: "u1", week: "2025-W+1", wantErr: weekid.ErrInvalidID},
		{name: "three digit week", user: "u1", week: "2025-W001", wantErr: weekid.ErrInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Load(ctx, tt.user, tt.week)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	weeks, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(weeks) != 0 {
		t.Errorf("rejected loads created boards: %v", weeks)
	}
}

func TestLoad_MalformedDocument(t *testing.T) {
	mem := store.NewMemory()
	_ = mem.Set(context.Background(), store.BoardPath("u1", "2025-W10"), []byte(`{"timeSlots":"oops"}`))
	svc := newTestService(t, mem)

	_, err := svc.Load(context.Background(), "u1", "2025-W10")
	if err == nil || !strings.Contains(err.Error(), "decoding board") {
		t.Fatalf("Load error = %v, want decoding error", err)
	}
}

// Scenario 1: slots come back ordered by start time regardless of insertion order.
func TestAddTimeSlot_KeepsOrder(t *testing.T) {
	svc := newTestService(t, store.NewMemory())
	ed := loadEditor(t, svc, "u1", "2025-W10")

	mustAddSlot(t, ed, "09:00", "10:00")
	mustAddSlot(t, ed, "08:00", "09:00")

	got := slotTimes(ed.Board())
	want := []string{"08:00-09:00", "09:00-10:00"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("slot order mismatch (-want +got):\n%s", diff)
	}

	stored, err := svc.Get(context.Background(), "u1", "2025-W10")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if diff := cmp.Diff(want, slotTimes(stored)); diff != "" {
		t.Errorf("stored slot order mismatch (-want +got):\n%s", diff)
	}
}

func TestSlotOrdering_RandomAddsAndUpdates(t *testing.T) {
	svc := newTestService(t, store.NewMemory())
	ed := loadEditor(t, svc, "u1", "2025-W10")
	ctx := context.Background()
	rng := rand.New(rand.NewPCG(1, 2))

	randomTime := func() string { return MinutesToTime(rng.IntN(24 * 60)) }

	var ids []string
	for range 40 {
		if len(ids) > 0 && rng.IntN(3) == 0 {
			start := randomTime()
			id := ids[rng.IntN(len(ids))]
			if err := ed.UpdateTimeSlot(ctx, id, SlotUpdate{StartTime: &start}); err != nil {
				t.Fatalf("UpdateTimeSlot failed: %v", err)
			}
			continue
		}
		slot := mustAddSlot(t, ed, randomTime(), randomTime())
		ids = append(ids, slot.ID)
	}

	b := ed.Board()
	if len(b.TimeSlots) != len(ids) {
		t.Fatalf("got %d slots, want %d", len(b.TimeSlots), len(ids))
	}
	sorted := slices.IsSortedFunc(b.TimeSlots, func(a, b TimeSlot) int {
		return TimeToMinutes(a.StartTime) - TimeToMinutes(b.StartTime)
	})
	if !sorted {
		t.Errorf("slots not sorted: %v", slotTimes(b))
	}
}

func TestAddTimeSlot_StableOnTies(t *testing.T) {
	svc := newTestService(t, store.NewMemory())
	ed := loadEditor(t, svc, "u1", "2025-W10")

	first := mustAddSlot(t, ed, "09:00", "10:00")
	second := mustAddSlot(t, ed, "09:00", "09:30")

	b := ed.Board()
	if b.TimeSlots[0].ID != first.ID || b.TimeSlots[1].ID != second.ID {
		t.Errorf("tied slots reordered: %v", b.TimeSlots)
	}
}

func TestAddTimeSlot_InvalidTime(t *testing.T) {
	svc := newTestService(t, store.NewMemory())
	ed := loadEditor(t, svc, "u1", "2025-W10")

	for _, tc := range [][2]string{{"9:00", "10:00"}, {"09:00", "25:00"}, {"", ""}} {
		if _, err := ed.AddTimeSlot(context.Background(), tc[0], tc[1]); !errors.Is(err, ErrInvalidTime) {
			t.Errorf("AddTimeSlot(%q, %q) = %v, want %v", tc[0], tc[1], err, ErrInvalidTime)
		}
	}
	if n := len(ed.Board().TimeSlots); n != 0 {
		t.Errorf("invalid slots were added: %d", n)
	}
}

func TestUpdateTimeSlot(t *testing.T) {
	svc := newTestService(t, store.NewMemory())
	ed := loadEditor(t, svc, "u1", "2025-W10")
	ctx := context.Background()

	early := mustAddSlot(t, ed, "08:00", "09:00")
	mustAddSlot(t, ed, "10:00", "11:00")

	start, end := "12:00", "13:00"
	if err := ed.UpdateTimeSlot(ctx, early.ID, SlotUpdate{StartTime: &start, EndTime: &end}); err != nil {
		t.Fatalf("UpdateTimeSlot failed: %v", err)
	}

	want := []string{"10:00-11:00", "12:00-13:00"}
	if diff := cmp.Diff(want, slotTimes(ed.Board())); diff != "" {
		t.Errorf("slots after update (-want +got):\n%s", diff)
	}

	if err := ed.UpdateTimeSlot(ctx, "missing", SlotUpdate{StartTime: &start}); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("update missing slot = %v, want %v", err, ErrSlotNotFound)
	}
	bad := "noon"
	if err := ed.UpdateTimeSlot(ctx, early.ID, SlotUpdate{EndTime: &bad}); !errors.Is(err, ErrInvalidTime) {
		t.Errorf("update with bad time = %v, want %v", err, ErrInvalidTime)
	}
}

// Scenario 2: deleting a slot prunes its activities from every day.
func TestDeleteTimeSlot_PrunesActivities(t *testing.T) {
	svc := newTestService(t, store.NewMemory())
	ed := loadEditor(t, svc, "u1", "2025-W10")
	ctx := context.Background()

	s1 := mustAddSlot(t, ed, "06:00", "07:00")
	s2 := mustAddSlot(t, ed, "07:00", "08:00")

	if _, err := ed.AddActivity(ctx, Monday, s1.ID, ActivityInput{Title: "Gym", Category: CategoryGym}); err != nil {
		t.Fatalf("AddActivity failed: %v", err)
	}
	cell := ed.Board().Cell(Monday, s1.ID)
	if len(cell) != 1 || cell[0].Title != "Gym" {
		t.Fatalf("monday cell = %+v", cell)
	}

	for _, day := range Days {
		if _, err := ed.AddActivity(ctx, day, s1.ID, ActivityInput{Title: "Run " + string(day)}); err != nil {
			t.Fatalf("AddActivity(%s) failed: %v", day, err)
		}
	}
	if _, err := ed.AddActivity(ctx, Friday, s2.ID, ActivityInput{Title: "Read"}); err != nil {
		t.Fatalf("AddActivity failed: %v", err)
	}

	if err := ed.DeleteTimeSlot(ctx, s1.ID); err != nil {
		t.Fatalf("DeleteTimeSlot failed: %v", err)
	}

	b := ed.Board()
	for _, day := range Days {
		if _, ok := b.Activities[Key(day, s1.ID)]; ok {
			t.Errorf("activities for %s survived slot deletion", Key(day, s1.ID))
		}
	}
	if len(b.Cell(Friday, s2.ID)) != 1 {
		t.Error("activities of another slot were pruned")
	}
	if _, ok := b.Slot(s1.ID); ok {
		t.Error("slot still present")
	}

	if err := ed.DeleteTimeSlot(ctx, s1.ID); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("second delete = %v, want %v", err, ErrSlotNotFound)
	}
}

func TestAddActivity(t *testing.T) {
	svc := newTestService(t, store.NewMemory())
	ed := loadEditor(t, svc, "u1", "2025-W10")
	ctx := context.Background()
	slot := mustAddSlot(t, ed, "09:00", "10:00")

	act, err := ed.AddActivity(ctx, Tuesday, slot.ID, ActivityInput{Title: "  Study  "})
	if err != nil {
		t.Fatalf("AddActivity failed: %v", err)
	}
	if act.Title != "Study" || act.Color != ColorBlue || act.Category != CategoryOther {
		t.Errorf("activity defaults = %+v", act)
	}
	if act.ID == "" || act.CreatedAt.IsZero() || !act.CreatedAt.Equal(act.UpdatedAt) {
		t.Errorf("activity metadata = %+v", act)
	}

	tests := []struct {
		name    string
		day     Day
		slotID  string
		in      ActivityInput
		wantErr error
	}{
		{name: "empty title", day: Monday, slotID: slot.ID, in: ActivityInput{Title: "   "}, wantErr: ErrEmptyTitle},
		{name: "bad day", day: "caturday", slotID: slot.ID, in: ActivityInput{Title: "x"}, wantErr: ErrInvalidDay},
		{name: "bad color", day: Monday, slotID: slot.ID, in: ActivityInput{Title: "x", Color: "teal"}, wantErr: ErrInvalidColor},
		{name: "bad category", day: Monday, slotID: slot.ID, in: ActivityInput{Title: "x", Category: "nap"}, wantErr: ErrInvalidCategory},
		{name: "unknown slot", day: Monday, slotID: "nope", in: ActivityInput{Title: "x"}, wantErr: ErrSlotNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ed.AddActivity(ctx, tt.day, tt.slotID, tt.in); !errors.Is(err, tt.wantErr) {
				t.Errorf("AddActivity error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if n := Summarize(ed.Board()).TotalActivities; n != 1 {
		t.Errorf("failed adds changed the board: %d activities", n)
	}
}

func TestUpdateActivity(t *testing.T) {
	svc := newTestService(t, store.NewMemory())
	ed := loadEditor(t, svc, "u1", "2025-W10")
	ctx := context.Background()
	slot := mustAddSlot(t, ed, "09:00", "10:00")

	act, err := ed.AddActivity(ctx, Monday, slot.ID, ActivityInput{Title: "Gym", Category: CategoryGym})
	if err != nil {
		t.Fatalf("AddActivity failed: %v", err)
	}

	title, color := "Swim", ColorGreen
	if err := ed.UpdateActivity(ctx, Monday, slot.ID, act.ID, ActivityUpdate{Title: &title, Color: &color}); err != nil {
		t.Fatalf("UpdateActivity failed: %v", err)
	}

	got := ed.Board().Cell(Monday, slot.ID)[0]
	if got.Title != "Swim" || got.Color != ColorGreen || got.Category != CategoryGym {
		t.Errorf("updated activity = %+v", got)
	}
	if !got.UpdatedAt.After(act.UpdatedAt) {
		t.Errorf("UpdatedAt not refreshed: %v -> %v", act.UpdatedAt, got.UpdatedAt)
	}
	if !got.CreatedAt.Equal(act.CreatedAt) {
		t.Error("CreatedAt changed")
	}

	empty := ""
	if err := ed.UpdateActivity(ctx, Monday, slot.ID, act.ID, ActivityUpdate{Title: &empty}); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("empty title update = %v, want %v", err, ErrEmptyTitle)
	}
	if err := ed.UpdateActivity(ctx, Tuesday, slot.ID, act.ID, ActivityUpdate{Title: &title}); !errors.Is(err, ErrActivityNotFound) {
		t.Errorf("wrong cell update = %v, want %v", err, ErrActivityNotFound)
	}
}

func TestDeleteActivity(t *testing.T) {
	svc := newTestService(t, store.NewMemory())
	ed := loadEditor(t, svc, "u1", "2025-W10")
	ctx := context.Background()
	slot := mustAddSlot(t, ed, "09:00", "10:00")

	a1, _ := ed.AddActivity(ctx, Monday, slot.ID, ActivityInput{Title: "One"})
	a2, _ := ed.AddActivity(ctx, Monday, slot.ID, ActivityInput{Title: "Two"})

	if err := ed.DeleteActivity(ctx, Monday, slot.ID, a1.ID); err != nil {
		t.Fatalf("DeleteActivity failed: %v", err)
	}
	cell := ed.Board().Cell(Monday, slot.ID)
	if len(cell) != 1 || cell[0].ID != a2.ID {
		t.Errorf("cell after delete = %+v", cell)
	}

	if err := ed.DeleteActivity(ctx, Monday, slot.ID, a1.ID); !errors.Is(err, ErrActivityNotFound) {
		t.Errorf("second delete = %v, want %v", err, ErrActivityNotFound)
	}
}

func TestMoveActivity(t *testing.T) {
	svc := newTestService(t, store.NewMemory())
	ed := loadEditor(t, svc, "u1", "2025-W10")
	ctx := context.Background()
	s1 := mustAddSlot(t, ed, "09:00", "10:00")
	s2 := mustAddSlot(t, ed, "10:00", "11:00")

	act, _ := ed.AddActivity(ctx, Monday, s1.ID, ActivityInput{Title: "Gym"})
	existing, _ := ed.AddActivity(ctx, Thursday, s2.ID, ActivityInput{Title: "Lunch"})

	if err := ed.MoveActivity(ctx, Monday, s1.ID, act.ID, Thursday, s2.ID); err != nil {
		t.Fatalf("MoveActivity failed: %v", err)
	}

	b := ed.Board()
	if len(b.Cell(Monday, s1.ID)) != 0 {
		t.Error("activity still in source cell")
	}
	dest := b.Cell(Thursday, s2.ID)
	if len(dest) != 2 || dest[0].ID != existing.ID || dest[1].ID != act.ID {
		t.Fatalf("destination cell = %+v", dest)
	}
	if !dest[1].UpdatedAt.After(act.UpdatedAt) {
		t.Error("moved activity UpdatedAt not refreshed")
	}

	if err := ed.MoveActivity(ctx, Monday, s1.ID, act.ID, Friday, s2.ID); !errors.Is(err, ErrActivityNotFound) {
		t.Errorf("move from empty cell = %v, want %v", err, ErrActivityNotFound)
	}
	if err := ed.MoveActivity(ctx, Thursday, s2.ID, act.ID, Friday, "gone"); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("move to unknown slot = %v, want %v", err, ErrSlotNotFound)
	}
}

func TestMutation_StoreFailureKeepsState(t *testing.T) {
	flaky := &flakyStore{Memory: store.NewMemory()}
	core, logs := observer.New(zapcore.ErrorLevel)
	svc := newTestService(t, flaky, WithLogger(zap.New(core)))
	ed := loadEditor(t, svc, "u1", "2025-W10")
	ctx := context.Background()

	slot := mustAddSlot(t, ed, "09:00", "10:00")
	svc.Generator().Wait()
	before := ed.Board()

	flaky.failSet.Store(true)
	_, err := ed.AddActivity(ctx, Monday, slot.ID, ActivityInput{Title: "Gym"})
	if !errors.Is(err, errDiskFull) {
		t.Fatalf("AddActivity error = %v, want wrapped %v", err, errDiskFull)
	}
	if !strings.Contains(err.Error(), "saving board 2025-W10") {
		t.Errorf("error message = %q", err)
	}

	if diff := cmp.Diff(before, ed.Board()); diff != "" {
		t.Errorf("in-memory board changed after failed write (-before +after):\n%s", diff)
	}
	if logs.FilterMessage("saving board failed").Len() != 1 {
		t.Errorf("store failure not logged: %v", logs.All())
	}

	flaky.failSet.Store(false)
	if _, err := ed.AddActivity(ctx, Monday, slot.ID, ActivityInput{Title: "Gym"}); err != nil {
		t.Fatalf("retry after recovery failed: %v", err)
	}
}

func TestSave_PreservesUnknownFields(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()
	path := store.BoardPath("u1", "2025-W10")
	legacy := `{"weekId":"2025-W10","timeSlots":[],"activities":{},"theme":"dark","createdAt":"2025-03-01T10:00:00Z"}`
	if err := mem.Set(ctx, path, []byte(legacy)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	svc := newTestService(t, mem)
	ed := loadEditor(t, svc, "u1", "2025-W10")
	mustAddSlot(t, ed, "09:00", "10:00")

	raw, _ := mem.Get(ctx, path)
	if theme := gjson.GetBytes(raw, "theme").String(); theme != "dark" {
		t.Errorf("theme = %q, want dark", theme)
	}
	if created := gjson.GetBytes(raw, "createdAt").String(); created != "2025-03-01T10:00:00Z" {
		t.Errorf("createdAt = %q, want original value", created)
	}
	if n := len(gjson.GetBytes(raw, "timeSlots").Array()); n != 1 {
		t.Errorf("stored %d slots, want 1", n)
	}
}

func TestEditors_LastWriteWins(t *testing.T) {
	svc := newTestService(t, store.NewMemory())
	ctx := context.Background()

	a := loadEditor(t, svc, "u1", "2025-W10")
	b := loadEditor(t, svc, "u1", "2025-W10")

	mustAddSlot(t, a, "08:00", "09:00")
	mustAddSlot(t, b, "10:00", "11:00")

	stored, err := svc.Get(ctx, "u1", "2025-W10")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if diff := cmp.Diff([]string{"10:00-11:00"}, slotTimes(stored)); diff != "" {
		t.Errorf("stored board should hold only the last write (-want +got):\n%s", diff)
	}
}

func TestBoard_ReturnsCopy(t *testing.T) {
	svc := newTestService(t, store.NewMemory())
	ed := loadEditor(t, svc, "u1", "2025-W10")
	mustAddSlot(t, ed, "09:00", "10:00")

	snap := ed.Board()
	snap.TimeSlots[0].StartTime = "00:00"

	if ed.Board().TimeSlots[0].StartTime != "09:00" {
		t.Error("mutating a snapshot changed the editor's board")
	}
}
