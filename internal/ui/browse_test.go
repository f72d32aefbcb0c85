package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/javiermolinar/shcadule/internal/tui"
)

// browseApp returns an App whose browser records its options instead of running.
func (e *testEnv) browseApp(got *tui.Options) *App {
	a := e.app()
	a.isTerminal = func() bool { return true }
	a.runBrowser = func(opts tui.Options) error {
		*got = opts
		return nil
	}
	return a
}

func TestBrowse_Options(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.UI.Theme = "latte"
	env.cfg.UI.TimeFormat = "12"

	var got tui.Options
	a := env.browseApp(&got)
	a.SetArgs([]string{"browse", "--week", "2025-03-12"})
	if err := a.Execute(); err != nil {
		t.Fatalf("browse: %v", err)
	}
	defer func() { _ = a.Close() }()

	if got.Week != "2025-W11" || got.ThisWeek != "2025-W10" {
		t.Errorf("weeks = %s / %s, want 2025-W11 / 2025-W10", got.Week, got.ThisWeek)
	}
	if got.UserID != "u1" || got.Theme != "latte" || got.TimeFormat != "12" || got.WeeksAhead != env.cfg.Board.WeeksAhead {
		t.Errorf("options = %+v", got)
	}
	if got.Boards == nil || got.Calendar == nil || !got.Today.Equal(testNow) {
		t.Errorf("options missing dependencies: %+v", got)
	}
}

func TestRoot_OpensBrowserOnTerminal(t *testing.T) {
	env := newTestEnv(t)

	var got tui.Options
	a := env.browseApp(&got)
	a.SetArgs([]string{})
	if err := a.Execute(); err != nil {
		t.Fatalf("root: %v", err)
	}
	defer func() { _ = a.Close() }()

	if got.Week != "2025-W10" {
		t.Errorf("root browsed %q, want this week", got.Week)
	}
}

func TestRoot_PrintsHelpWithoutTerminal(t *testing.T) {
	env := newTestEnv(t)
	out := env.run()
	assertContains(t, out, "Shcadule keeps a weekly board", "browse")
}

func TestBrowse_Errors(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.exec("browse"); !errors.Is(err, errNotTerminal) {
		t.Errorf("browse without a terminal = %v, want %v", err, errNotTerminal)
	}

	env.cfg.User.ID = ""
	var got tui.Options
	a := env.browseApp(&got)
	var out bytes.Buffer
	a.SetOutput(&out)
	a.SetArgs([]string{"browse"})
	if err := a.Execute(); !errors.Is(err, errNoUser) {
		t.Errorf("browse without a user = %v, want %v", err, errNoUser)
	}
	_ = a.Close()
}
