package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/shcadule/internal/tui/commands"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case commands.BoardLoadedMsg:
		// A slower load for a week we already left.
		if msg.WeekID != m.week {
			return m, nil
		}
		m.board = msg.Board
		m.missing = msg.Missing
		m.loading = false
		m.clamp()
		return m, nil

	case commands.SavedMsg:
		m.status = msg.Status
		m.statusErr = false
		return m, tea.Batch(
			commands.LoadBoard(m.boards, m.userID, m.week),
			commands.ClearStatusAfter(m.statusTTL),
		)

	case commands.StatusMsg:
		m.status = msg.Msg
		m.statusErr = false
		return m, commands.ClearStatusAfter(m.statusTTL)

	case commands.ErrMsg:
		m.logger.Warn("board browser action failed", zap.Error(msg.Err))
		m.loading = false
		return m.setError(msg.Err)

	case commands.ClearStatusMsg:
		m.status = ""
		m.statusErr = false
		return m, nil
	}

	if m.mode == ModePrompt {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}
	return m, nil
}
