// Package commands provides the board browser's command constructors and message types.
package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/shcadule/internal/board"
	"github.com/javiermolinar/shcadule/internal/weekid"
)

// opTimeout bounds every store round trip started from the browser.
const opTimeout = 10 * time.Second

// Boards is the part of board.Service the browser uses.
type Boards interface {
	Get(ctx context.Context, userID string, weekID weekid.ID) (board.Board, error)
	Load(ctx context.Context, userID string, weekID weekid.ID) (*board.Editor, error)
	CopyToNextWeek(ctx context.Context, userID string, src weekid.ID) (weekid.ID, error)
	AutoGenerateFutureWeeks(ctx context.Context, userID string, template weekid.ID, weeksAhead int) (board.GenerateResult, error)
}

// BoardLoadedMsg is sent when a week's board has been read.
type BoardLoadedMsg struct {
	WeekID weekid.ID
	Board  board.Board
	// Missing is set when no board is stored for the week yet.
	Missing bool
}

// SavedMsg is sent after an edit was persisted. The browser reloads WeekID.
type SavedMsg struct {
	WeekID weekid.ID
	Status string
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsg is sent for temporary status messages.
type StatusMsg struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// LoadBoard reads the board for week without creating it.
func LoadBoard(b Boards, userID string, week weekid.ID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		got, err := b.Get(ctx, userID, week)
		if errors.Is(err, board.ErrBoardNotFound) {
			return BoardLoadedMsg{WeekID: week, Board: board.Board{WeekID: week}, Missing: true}
		}
		if err != nil {
			return ErrMsg{Err: err}
		}
		return BoardLoadedMsg{WeekID: week, Board: got}
	}
}

// Edit loads a fresh editor for week, applies fn and reports status on success.
func Edit(b Boards, userID string, week weekid.ID, status string, fn func(context.Context, *board.Editor) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		ed, err := b.Load(ctx, userID, week)
		if err != nil {
			return ErrMsg{Err: err}
		}
		if err := fn(ctx, ed); err != nil {
			return ErrMsg{Err: err}
		}
		return SavedMsg{WeekID: week, Status: status}
	}
}

// CopyToNext copies week's slot layout to the following week.
func CopyToNext(b Boards, userID string, week weekid.ID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		next, err := b.CopyToNextWeek(ctx, userID, week)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return StatusMsg{Msg: fmt.Sprintf("Copied slots to %s", next)}
	}
}

// Generate fills the weeks after week that have no slots yet.
func Generate(b Boards, userID string, week weekid.ID, weeksAhead int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		res, err := b.AutoGenerateFutureWeeks(ctx, userID, week, weeksAhead)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return StatusMsg{Msg: res.String()}
	}
}

// Yank writes text with write, usually clipboard.WriteAll.
func Yank(write func(string) error, text string) tea.Cmd {
	return func() tea.Msg {
		if err := write(text); err != nil {
			return ErrMsg{Err: fmt.Errorf("copying to clipboard: %w", err)}
		}
		return StatusMsg{Msg: "Copied to clipboard"}
	}
}

// ClearStatusAfter clears the status line after d.
func ClearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
