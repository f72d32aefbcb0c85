package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.uber.org/goleak"

	"github.com/javiermolinar/shcadule/internal/board"
	"github.com/javiermolinar/shcadule/internal/store"
	"github.com/javiermolinar/shcadule/internal/tui/commands"
	"github.com/javiermolinar/shcadule/internal/weekid"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	goleak.VerifyTestMain(m)
}

// testToday is Wednesday of 2025-W10.
var testToday = time.Date(2025, time.March, 5, 10, 0, 0, 0, time.UTC)

type harness struct {
	t       *testing.T
	svc     *board.Service
	clipped []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	svc := board.NewService(store.NewMemory(),
		board.WithClock(func() time.Time { return testToday }),
		board.WithWeeksAhead(2),
	)
	t.Cleanup(svc.Close)
	return &harness{t: t, svc: svc}
}

// model builds a browser on 2025-W10 and runs its initial load.
func (h *harness) model() Model {
	h.t.Helper()
	m, err := New(Options{
		Boards:     h.svc,
		Calendar:   weekid.NewCalendar(weekid.Gregorian, nil),
		UserID:     "u1",
		Week:       "2025-W10",
		Today:      testToday,
		WeeksAhead: 2,
		TimeFormat: "24",
		Clipboard: func(s string) error {
			h.clipped = append(h.clipped, s)
			return nil
		},
	})
	if err != nil {
		h.t.Fatalf("New: %v", err)
	}
	m.statusTTL = time.Millisecond
	m.width = 120
	return run(h.t, m, m.Init())
}

// seed adds slots and activities to 2025-W10 directly through the service.
func (h *harness) seed(fn func(ctx context.Context, ed *board.Editor)) {
	h.t.Helper()
	ctx := context.Background()
	ed, err := h.svc.Load(ctx, "u1", "2025-W10")
	if err != nil {
		h.t.Fatalf("Load: %v", err)
	}
	fn(ctx, ed)
	h.svc.Generator().Wait()
}

// run executes cmd and feeds its messages back into m until nothing is left.
// Status clears are dropped so assertions can read the status line.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil, commands.ClearStatusMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			updated, more := m.Update(msg)
			m = updated.(Model)
			queue = append(queue, more)
		}
	}
	return m
}

// press sends keys without running the returned commands.
func press(m Model, keys ...string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var updated tea.Model
		updated, cmd = m.Update(keyMsg(k))
		m = updated.(Model)
	}
	return m, cmd
}

// typeAndSubmit types text into the open prompt, presses enter and runs the result.
func typeAndSubmit(t *testing.T, m Model, text string) Model {
	t.Helper()
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	m = updated.(Model)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return run(t, updated.(Model), cmd)
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func addSlots(t *testing.T, ed *board.Editor, ranges ...[2]string) []board.TimeSlot {
	t.Helper()
	var slots []board.TimeSlot
	for _, r := range ranges {
		s, err := ed.AddTimeSlot(context.Background(), r[0], r[1])
		if err != nil {
			t.Fatalf("AddTimeSlot(%s-%s): %v", r[0], r[1], err)
		}
		slots = append(slots, s)
	}
	return slots
}

func TestNew_Validation(t *testing.T) {
	h := newHarness(t)

	if _, err := New(Options{Week: "2025-W10"}); err == nil {
		t.Error("New without boards should fail")
	}
	if _, err := New(Options{Boards: h.svc, Week: "W10"}); err == nil {
		t.Error("New with a malformed week should fail")
	}
}

func TestInit_MissingBoardIsNotCreated(t *testing.T) {
	h := newHarness(t)
	m := h.model()

	if !m.missing || m.loading {
		t.Fatalf("missing = %v, loading = %v", m.missing, m.loading)
	}
	if ids, _ := h.svc.List(context.Background(), "u1"); len(ids) != 0 {
		t.Errorf("browsing created boards: %v", ids)
	}
	if out := m.View(); !strings.Contains(out, "No board for 2025-W10 yet") {
		t.Errorf("View() missing empty-board hint:\n%s", out)
	}
}

func TestQuit(t *testing.T) {
	h := newHarness(t)
	m := h.model()

	for _, k := range []string{"q", "ctrl+c"} {
		_, cmd := press(m, k)
		if cmd == nil {
			t.Fatalf("%s returned no command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s did not quit", k)
		}
	}
}
