package board

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/javiermolinar/shcadule/internal/store"
	"github.com/javiermolinar/shcadule/internal/weekid"
)

// seedBoard writes a board with the given slots and one activity per slot.
func seedBoard(t *testing.T, svc *Service, user string, week weekid.ID, slots ...[2]string) Board {
	t.Helper()
	ctx := context.Background()

	b := newBoard(week, svc.now())
	for i, s := range slots {
		id := fmt.Sprintf("seed-%d", i)
		b.TimeSlots = append(b.TimeSlots, TimeSlot{ID: id, StartTime: s[0], EndTime: s[1], CreatedAt: svc.now()})
		b.Activities[Key(Monday, id)] = []Activity{{ID: "act-" + id, Title: "Work", Category: CategoryWork}}
	}
	if _, err := svc.putBoard(ctx, user, b, nil); err != nil {
		t.Fatalf("seeding %s failed: %v", week, err)
	}
	return b
}

func TestCopyWeek_ExcludesActivities(t *testing.T) {
	svc := newTestService(t, store.NewMemory())
	ctx := context.Background()
	src := seedBoard(t, svc, "u1", "2025-W10", [2]string{"08:00", "09:00"}, [2]string{"13:00", "14:00"})

	if err := svc.CopyWeek(ctx, "u1", "2025-W10", "2025-W20"); err != nil {
		t.Fatalf("CopyWeek failed: %v", err)
	}

	dst, err := svc.Get(ctx, "u1", "2025-W20")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if diff := cmp.Diff(src.TimeSlots, dst.TimeSlots); diff != "" {
		t.Errorf("copied slots mismatch (-src +dst):\n%s", diff)
	}
	if len(dst.Activities) != 0 {
		t.Errorf("activities were copied: %v", dst.Activities)
	}
	if dst.WeekID != "2025-W20" || dst.AutoGenerated {
		t.Errorf("dst header = %q autoGenerated=%v", dst.WeekID, dst.AutoGenerated)
	}
	if !dst.CreatedAt.After(src.CreatedAt) {
		t.Errorf("dst timestamps not fresh: %v", dst.CreatedAt)
	}
}

func TestCopyWeek_SourceMissing(t *testing.T) {
	svc := newTestService(t, store.NewMemory())

	err := svc.CopyWeek(context.Background(), "u1", "2025-W10", "2025-W11")
	if !errors.Is(err, ErrBoardNotFound) {
		t.Fatalf("CopyWeek error = %v, want %v", err, ErrBoardNotFound)
	}
	if _, err := svc.Get(context.Background(), "u1", "2025-W11"); !errors.Is(err, ErrBoardNotFound) {
		t.Errorf("target was written despite missing source: %v", err)
	}
}

func TestCopyToNextWeek(t *testing.T) {
	svc := newTestService(t, store.NewMemory())
	seedBoard(t, svc, "u1", "2025-W52", [2]string{"08:00", "09:00"})

	next, err := svc.CopyToNextWeek(context.Background(), "u1", "2025-W52")
	if err != nil {
		t.Fatalf("CopyToNextWeek failed: %v", err)
	}
	if next != "2026-W01" {
		t.Errorf("next = %q, want 2026-W01", next)
	}
	if _, err := svc.Get(context.Background(), "u1", next); err != nil {
		t.Errorf("copied board missing: %v", err)
	}
}

func TestAutoGenerateFutureWeeks(t *testing.T) {
	svc := newTestService(t, store.NewMemory())
	ctx := context.Background()
	tmpl := seedBoard(t, svc, "u1", "2025-W50", [2]string{"08:00", "09:00"})

	res, err := svc.AutoGenerateFutureWeeks(ctx, "u1", "2025-W50", 4)
	if err != nil {
		t.Fatalf("AutoGenerateFutureWeeks failed: %v", err)
	}

	want := []weekid.ID{"2025-W51", "2025-W52", "2026-W01", "2026-W02"}
	if diff := cmp.Diff(want, res.Generated); diff != "" {
		t.Errorf("generated weeks mismatch (-want +got):\n%s", diff)
	}

	for _, id := range want {
		b, err := svc.Get(ctx, "u1", id)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", id, err)
		}
		if !b.AutoGenerated || b.TemplateWeekID != "2025-W50" {
			t.Errorf("%s: autoGenerated=%v template=%q", id, b.AutoGenerated, b.TemplateWeekID)
		}
		if len(b.Activities) != 0 {
			t.Errorf("%s: activities copied", id)
		}
		if diff := cmp.Diff(tmpl.TimeSlots, b.TimeSlots); diff != "" {
			t.Errorf("%s: slots mismatch (-want +got):\n%s", id, diff)
		}
	}
}

func TestAutoGenerateFutureWeeks_Idempotent(t *testing.T) {
	svc := newTestService(t, store.NewMemory())
	ctx := context.Background()
	seedBoard(t, svc, "u1", "2025-W10", [2]string{"08:00", "09:00"})

	// W12 is customized, W13 exists but has no slots.
	seedBoard(t, svc, "u1", "2025-W12", [2]string{"18:00", "19:00"})
	seedBoard(t, svc, "u1", "2025-W13")

	first, err := svc.AutoGenerateFutureWeeks(ctx, "u1", "2025-W10", 8)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if len(first.Generated) != 7 {
		t.Errorf("first run generated %v, want 7 weeks", first.Generated)
	}
	for _, id := range first.Generated {
		if id == "2025-W12" {
			t.Error("customized week was overwritten")
		}
	}

	custom, _ := svc.Get(ctx, "u1", "2025-W12")
	if custom.AutoGenerated || custom.TimeSlots[0].StartTime != "18:00" {
		t.Errorf("customized week changed: %+v", custom)
	}
	if w13, _ := svc.Get(ctx, "u1", "2025-W13"); !w13.AutoGenerated {
		t.Error("empty existing week was not regenerated")
	}

	second, err := svc.AutoGenerateFutureWeeks(ctx, "u1", "2025-W10", 8)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if len(second.Generated) != 0 {
		t.Errorf("second run regenerated %v", second.Generated)
	}
}

func TestAutoGenerateFutureWeeks_NoSlots(t *testing.T) {
	svc := newTestService(t, store.NewMemory())
	seedBoard(t, svc, "u1", "2025-W10")

	res, err := svc.AutoGenerateFutureWeeks(context.Background(), "u1", "2025-W10", 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.NoSlots || len(res.Generated) != 0 {
		t.Errorf("result = %+v, want NoSlots", res)
	}
	if res.String() != "no time slots to copy" {
		t.Errorf("String() = %q", res)
	}
}

func TestAutoGenerateFutureWeeks_Errors(t *testing.T) {
	svc := newTestService(t, store.NewMemory())
	ctx := context.Background()

	if _, err := svc.AutoGenerateFutureWeeks(ctx, "u1", "2025-W10", 8); !errors.Is(err, ErrBoardNotFound) {
		t.Errorf("missing template = %v, want %v", err, ErrBoardNotFound)
	}
	if _, err := svc.AutoGenerateFutureWeeks(ctx, "", "2025-W10", 8); !errors.Is(err, ErrMissingUser) {
		t.Errorf("missing user = %v, want %v", err, ErrMissingUser)
	}
	if _, err := svc.AutoGenerateFutureWeeks(ctx, "u1", "", 8); !errors.Is(err, ErrMissingWeek) {
		t.Errorf("missing week = %v, want %v", err, ErrMissingWeek)
	}
}

func TestAutoGenerateFutureWeeks_DefaultAndEthiopian(t *testing.T) {
	svc := newTestService(t, store.NewMemory(), WithWeeksAhead(3))
	seedBoard(t, svc, "u1", "ETH-2017-W51", [2]string{"06:00", "07:00"})

	res, err := svc.AutoGenerateFutureWeeks(context.Background(), "u1", "ETH-2017-W51", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []weekid.ID{"ETH-2017-W52", "ETH-2018-W01", "ETH-2018-W02"}
	if diff := cmp.Diff(want, res.Generated); diff != "" {
		t.Errorf("generated weeks mismatch (-want +got):\n%s", diff)
	}
}

func TestList(t *testing.T) {
	svc := newTestService(t, store.NewMemory())
	seedBoard(t, svc, "u1", "2025-W11")
	seedBoard(t, svc, "u1", "2025-W10")
	seedBoard(t, svc, "u2", "2025-W10")

	ids, err := svc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if diff := cmp.Diff([]weekid.ID{"2025-W10", "2025-W11"}, ids); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}
}
