package integration

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/javiermolinar/shcadule/internal/board"
	"github.com/javiermolinar/shcadule/internal/db"
	"github.com/javiermolinar/shcadule/internal/store"
	"github.com/javiermolinar/shcadule/internal/subscription"
	"github.com/javiermolinar/shcadule/internal/weekid"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// openRepo creates a fresh SQLite store for each test with automatic cleanup.
func openRepo(t *testing.T) *db.SQLite {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	repo, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("failed to open repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

// newBoards returns a board service over st that is closed with the test.
func newBoards(t *testing.T, st store.Store, opts ...board.Option) *board.Service {
	t.Helper()
	opts = append([]board.Option{board.WithLogger(zaptest.NewLogger(t))}, opts...)
	svc := board.NewService(st, opts...)
	t.Cleanup(svc.Close)
	return svc
}

func load(t *testing.T, svc *board.Service, week weekid.ID) *board.Editor {
	t.Helper()
	ed, err := svc.Load(context.Background(), "u1", week)
	if err != nil {
		t.Fatalf("Load(%s): %v", week, err)
	}
	return ed
}

func slotRanges(slots []board.TimeSlot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.StartTime + "-" + s.EndTime
	}
	return out
}

func TestScenario_SlotsStayOrdered(t *testing.T) {
	svc := newBoards(t, openRepo(t))
	ctx := context.Background()

	ed := load(t, svc, "2025-W10")
	if len(ed.Board().TimeSlots) != 0 {
		t.Fatalf("new board has slots: %+v", ed.Board().TimeSlots)
	}
	if _, err := ed.AddTimeSlot(ctx, "09:00", "10:00"); err != nil {
		t.Fatalf("AddTimeSlot: %v", err)
	}
	if _, err := ed.AddTimeSlot(ctx, "08:00", "09:00"); err != nil {
		t.Fatalf("AddTimeSlot: %v", err)
	}

	got, err := svc.Get(ctx, "u1", "2025-W10")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := []string{"08:00-09:00", "09:00-10:00"}
	if diff := cmp.Diff(want, slotRanges(got.TimeSlots)); diff != "" {
		t.Errorf("stored slot order mismatch (-want +got):\n%s", diff)
	}
}

func TestScenario_DeletingSlotRemovesItsActivities(t *testing.T) {
	repo := openRepo(t)
	svc := newBoards(t, repo)
	ctx := context.Background()

	ed := load(t, svc, "2025-W10")
	s1, err := ed.AddTimeSlot(ctx, "06:00", "07:00")
	if err != nil {
		t.Fatalf("AddTimeSlot: %v", err)
	}
	if _, err := ed.AddActivity(ctx, board.Monday, s1.ID, board.ActivityInput{Title: "Gym", Category: board.CategoryGym}); err != nil {
		t.Fatalf("AddActivity: %v", err)
	}

	got, _ := svc.Get(ctx, "u1", "2025-W10")
	cell := got.Activities[board.Key(board.Monday, s1.ID)]
	if len(cell) != 1 || cell[0].Title != "Gym" || cell[0].Color != board.ColorBlue {
		t.Fatalf("monday_%s = %+v, want one blue Gym activity", s1.ID, cell)
	}

	if err := ed.DeleteTimeSlot(ctx, s1.ID); err != nil {
		t.Fatalf("DeleteTimeSlot: %v", err)
	}
	got, _ = svc.Get(ctx, "u1", "2025-W10")
	if _, ok := got.Activities[board.Key(board.Monday, s1.ID)]; ok {
		t.Errorf("monday_%s still present after deleting the slot", s1.ID)
	}
}

func TestScenario_FirstSlotGeneratesEightWeeks(t *testing.T) {
	repo := openRepo(t)
	svc := newBoards(t, repo)
	ctx := context.Background()

	ed := load(t, svc, "2025-W01")
	if _, err := ed.AddTimeSlot(ctx, "08:00", "09:00"); err != nil {
		t.Fatalf("AddTimeSlot: %v", err)
	}
	svc.Generator().Wait()

	ids, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []weekid.ID{"2025-W01", "2025-W02", "2025-W03", "2025-W04", "2025-W05", "2025-W06", "2025-W07", "2025-W08", "2025-W09"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("stored weeks mismatch (-want +got):\n%s", diff)
	}

	for _, id := range want[1:] {
		b, err := svc.Get(ctx, "u1", id)
		if err != nil {
			t.Fatalf("Get(%s): %v", id, err)
		}
		if !b.AutoGenerated || b.TemplateWeekID != "2025-W01" {
			t.Errorf("%s: autoGenerated=%v templateWeekId=%q", id, b.AutoGenerated, b.TemplateWeekID)
		}
		if len(b.Activities) != 0 {
			t.Errorf("%s: activities = %+v, want empty", id, b.Activities)
		}
		if diff := cmp.Diff([]string{"08:00-09:00"}, slotRanges(b.TimeSlots)); diff != "" {
			t.Errorf("%s slots mismatch (-want +got):\n%s", id, diff)
		}
	}
}

func TestScenario_WeekNavigationAcrossYears(t *testing.T) {
	tests := []struct {
		from  weekid.ID
		delta int
		want  weekid.ID
	}{
		{from: "2025-W52", delta: 1, want: "2026-W01"},
		{from: "2025-W01", delta: -1, want: "2024-W52"},
		{from: "ETH-2017-W52", delta: 1, want: "ETH-2018-W01"},
	}
	for _, tt := range tests {
		got, err := weekid.Step(tt.from, tt.delta)
		if err != nil {
			t.Fatalf("Step(%s, %d): %v", tt.from, tt.delta, err)
		}
		if got != tt.want {
			t.Errorf("Step(%s, %d) = %s, want %s", tt.from, tt.delta, got, tt.want)
		}
	}
}

func TestBoardsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shcadule.db")
	ctx := context.Background()

	repo, err := db.New(path)
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	svc := board.NewService(repo, board.WithWeeksAhead(2))
	ed, err := svc.Load(ctx, "u1", "ETH-2017-W26")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	slot, err := ed.AddTimeSlot(ctx, "18:00", "19:30")
	if err != nil {
		t.Fatalf("AddTimeSlot: %v", err)
	}
	if _, err := ed.AddActivity(ctx, board.Saturday, slot.ID, board.ActivityInput{Title: "ቤተሰብ", Category: board.CategorySocial, Color: board.ColorPink}); err != nil {
		t.Fatalf("AddActivity: %v", err)
	}
	before := ed.Board()
	svc.Close()
	if err := repo.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	repo = openAt(t, path)
	svc = newBoards(t, repo)
	after, err := svc.Get(ctx, "u1", "ETH-2017-W26")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if diff := cmp.Diff(before, after, cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })); diff != "" {
		t.Errorf("board changed across reopen (-before +after):\n%s", diff)
	}

	ids, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if diff := cmp.Diff([]weekid.ID{"ETH-2017-W26", "ETH-2017-W27", "ETH-2017-W28"}, ids); diff != "" {
		t.Errorf("generated ethiopian weeks mismatch (-want +got):\n%s", diff)
	}
}

func openAt(t *testing.T, path string) *db.SQLite {
	t.Helper()
	repo, err := db.New(path)
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestCopyToNextWeek_KeepsCustomizedWeeks(t *testing.T) {
	svc := newBoards(t, openRepo(t), board.WithWeeksAhead(1))
	ctx := context.Background()

	ed := load(t, svc, "2025-W52")
	if _, err := ed.AddTimeSlot(ctx, "09:00", "10:00"); err != nil {
		t.Fatalf("AddTimeSlot: %v", err)
	}
	svc.Generator().Wait()

	custom := load(t, svc, "2026-W01")
	if _, err := custom.AddTimeSlot(ctx, "20:00", "21:00"); err != nil {
		t.Fatalf("AddTimeSlot: %v", err)
	}

	res, err := svc.AutoGenerateFutureWeeks(ctx, "u1", "2025-W52", 1)
	if err != nil {
		t.Fatalf("AutoGenerateFutureWeeks: %v", err)
	}
	if len(res.Generated) != 0 {
		t.Errorf("regenerated %v over a customized week", res.Generated)
	}

	next, err := svc.CopyToNextWeek(ctx, "u1", "2025-W52")
	if err != nil {
		t.Fatalf("CopyToNextWeek: %v", err)
	}
	b, _ := svc.Get(ctx, "u1", next)
	if diff := cmp.Diff([]string{"09:00-10:00"}, slotRanges(b.TimeSlots)); diff != "" {
		t.Errorf("explicit copy should replace %s (-want +got):\n%s", next, diff)
	}
}

func TestSubscriptionLifecycle(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	now := time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	subs := subscription.NewService(repo, subscription.WithClock(clock), subscription.WithLogger(zaptest.NewLogger(t)))

	if _, err := subs.Register(ctx, "u1", "", "tigist@example.com"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := subs.RequestUpgrade(ctx, "u1", subscription.PlanAI, "CBE-778812"); err != nil {
		t.Fatalf("RequestUpgrade: %v", err)
	}

	pending, err := subs.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 1 || pending[0].UserID != "u1" || pending[0].PendingPlan != subscription.PlanAI {
		t.Fatalf("Pending = %+v", pending)
	}

	if err := subs.Decide(ctx, "u1", true); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	p, _ := subs.Get(ctx, "u1")
	if p.Plan != subscription.PlanAI || p.SubscriptionStatus != subscription.StatusActive {
		t.Fatalf("after approval: plan=%s status=%s", p.Plan, p.SubscriptionStatus)
	}

	now = now.Add(29 * 24 * time.Hour)
	if n, err := subs.Sweep(ctx); err != nil || n != 0 {
		t.Fatalf("Sweep before expiry = %d, %v", n, err)
	}

	now = now.Add(2 * 24 * time.Hour)
	if n, err := subs.Sweep(ctx); err != nil || n != 1 {
		t.Fatalf("Sweep after expiry = %d, %v", n, err)
	}
	p, _ = subs.Get(ctx, "u1")
	if p.Plan != subscription.PlanFree || p.SubscriptionStatus != subscription.StatusExpired {
		t.Errorf("after sweep: plan=%s status=%s", p.Plan, p.SubscriptionStatus)
	}
	if p.Name != "tigist" || p.LastPaymentRef != "CBE-778812" {
		t.Errorf("sweep lost fields: %+v", p)
	}

	// Boards and profiles live side by side under users/u1.
	svc := newBoards(t, repo)
	if _, err := svc.Load(ctx, "u1", "2025-W10"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := subs.Get(ctx, "u1"); err != nil {
		t.Errorf("profile unreadable after board write: %v", err)
	}
	if _, err := subs.Get(ctx, "u2"); !errors.Is(err, subscription.ErrUserNotFound) {
		t.Errorf("Get(u2) = %v, want %v", err, subscription.ErrUserNotFound)
	}
}
