package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/shcadule/internal/board"
	"github.com/javiermolinar/shcadule/internal/tui/commands"
	"github.com/javiermolinar/shcadule/internal/tui/input"
	"github.com/javiermolinar/shcadule/internal/weekid"
)

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.logger.Debug("key", zap.String("key", msg.String()), zap.Int("mode", int(m.mode)))

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case ModePrompt:
		return m.handlePromptKeys(msg)
	case ModeConfirm:
		return m.handleConfirmKeys(msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

// handleNormalKeys handles keys in normal mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	// Navigation
	case "h", "left":
		m.cursor.Day--
		m.activity = 0
	case "l", "right":
		m.cursor.Day++
		m.activity = 0
	case "k", "up":
		m.cursor.Slot--
		m.activity = 0
	case "j", "down":
		m.cursor.Slot++
		m.activity = 0
	case "tab":
		if n := len(m.selectedCell()); n > 0 {
			m.activity = (m.activity + 1) % n
		}
	case "H", "pgup":
		return m.stepWeek(-1)
	case "L", "pgdown":
		return m.stepWeek(1)
	case "t":
		return m.showWeek(m.thisWeek)

	// Slots
	case "s":
		return m.openPrompt(PromptAddSlot, "")
	case "S":
		slot, ok := m.selectedSlot()
		if !ok {
			return m.setError(board.ErrSlotNotFound)
		}
		return m.openPrompt(PromptEditSlot, slot.StartTime+" "+slot.EndTime)
	case "D":
		slot, ok := m.selectedSlot()
		if !ok {
			return m.setError(board.ErrSlotNotFound)
		}
		label := m.slotLabel(slot)
		return m.askConfirm(
			fmt.Sprintf("Delete slot %s and its activities?", label),
			m.edit("Deleted slot "+label, func(ctx context.Context, ed *board.Editor) error {
				return ed.DeleteTimeSlot(ctx, slot.ID)
			}),
		)

	// Activities
	case "a", "enter":
		if _, ok := m.selectedSlot(); !ok {
			return m.openPrompt(PromptAddSlot, "")
		}
		return m.openPrompt(PromptAddActivity, "")
	case "e":
		act, ok := m.selectedActivity()
		if !ok {
			return m.setError(board.ErrActivityNotFound)
		}
		return m.openPrompt(PromptEditActivity, activityPromptText(act))
	case "d", "x":
		act, ok := m.selectedActivity()
		if !ok {
			return m.setError(board.ErrActivityNotFound)
		}
		slot, _ := m.selectedSlot()
		day := m.selectedDay()
		return m.askConfirm(
			fmt.Sprintf("Delete %q?", act.Title),
			m.edit("Deleted "+act.Title, func(ctx context.Context, ed *board.Editor) error {
				return ed.DeleteActivity(ctx, day, slot.ID, act.ID)
			}),
		)
	case "<", ">":
		return m.moveActivity(msg.String() == ">")

	// Weeks
	case "n":
		next, err := weekid.Next(m.week)
		if err != nil {
			return m.setError(err)
		}
		return m.askConfirm(
			fmt.Sprintf("Replace %s with this week's slots?", next),
			commands.CopyToNext(m.boards, m.userID, m.week),
		)
	case "g":
		return m, commands.Generate(m.boards, m.userID, m.week, m.weeksAhead)
	case "y":
		return m, commands.Yank(m.clipboard, m.plainText())

	case "?":
		m.showHelp = !m.showHelp
	}

	m.clamp()
	return m, nil
}

// handlePromptKeys handles keys while a prompt is open.
func (m Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.closePrompt(), nil
	case "enter":
		value := strings.TrimSpace(m.prompt.Value())
		kind := m.promptKind
		m = m.closePrompt()
		return m.submitPrompt(kind, value)
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

// handleConfirmKeys handles the y/n answer to a confirmation.
func (m Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.confirmAction
	switch msg.String() {
	case "y", "Y":
		m.mode = ModeNormal
		m.confirmMessage, m.confirmAction = "", nil
		return m, action
	case "n", "N", "esc", "q":
		m.mode = ModeNormal
		m.confirmMessage, m.confirmAction = "", nil
	}
	return m, nil
}

func (m Model) submitPrompt(kind PromptKind, value string) (tea.Model, tea.Cmd) {
	if value == "" {
		return m, nil
	}

	switch kind {
	case PromptAddSlot, PromptEditSlot:
		start, end, err := input.ParseSlot(value)
		if err != nil {
			return m.setError(err)
		}
		if kind == PromptAddSlot {
			return m, m.edit(fmt.Sprintf("Added slot %s-%s", start, end), func(ctx context.Context, ed *board.Editor) error {
				_, err := ed.AddTimeSlot(ctx, start, end)
				return err
			})
		}
		slot, _ := m.selectedSlot()
		return m, m.edit(fmt.Sprintf("Slot is now %s-%s", start, end), func(ctx context.Context, ed *board.Editor) error {
			return ed.UpdateTimeSlot(ctx, slot.ID, board.SlotUpdate{StartTime: &start, EndTime: &end})
		})

	case PromptAddActivity, PromptEditActivity:
		in, err := input.ParseActivity(value)
		if err != nil {
			return m.setError(err)
		}
		slot, ok := m.selectedSlot()
		if !ok {
			return m.setError(board.ErrSlotNotFound)
		}
		day := m.selectedDay()
		if kind == PromptAddActivity {
			return m, m.edit("Added "+in.Title, func(ctx context.Context, ed *board.Editor) error {
				_, err := ed.AddActivity(ctx, day, slot.ID, in)
				return err
			})
		}
		act, _ := m.selectedActivity()
		u := board.ActivityUpdate{Title: &in.Title}
		if in.Category != "" {
			u.Category = &in.Category
		}
		if in.Color != "" {
			u.Color = &in.Color
		}
		return m, m.edit("Updated "+in.Title, func(ctx context.Context, ed *board.Editor) error {
			return ed.UpdateActivity(ctx, day, slot.ID, act.ID, u)
		})
	}
	return m, nil
}

// moveActivity moves the selected activity to the same slot on the next or previous day.
func (m Model) moveActivity(forward bool) (tea.Model, tea.Cmd) {
	act, ok := m.selectedActivity()
	if !ok {
		return m.setError(board.ErrActivityNotFound)
	}
	to := m.cursor.Day - 1
	if forward {
		to = m.cursor.Day + 1
	}
	if to < 0 || to >= len(board.Days) {
		return m, nil
	}

	slot, _ := m.selectedSlot()
	from, dest := m.selectedDay(), board.Days[to]
	m.cursor.Day = to
	m.activity = len(m.board.Cell(dest, slot.ID))
	return m, m.edit(fmt.Sprintf("Moved %s to %s", act.Title, dayName(dest)), func(ctx context.Context, ed *board.Editor) error {
		return ed.MoveActivity(ctx, from, slot.ID, act.ID, dest, slot.ID)
	})
}

func (m Model) stepWeek(delta int) (tea.Model, tea.Cmd) {
	id, err := weekid.Step(m.week, delta)
	if err != nil {
		return m.setError(err)
	}
	return m.showWeek(id)
}

func (m Model) showWeek(id weekid.ID) (tea.Model, tea.Cmd) {
	if id == m.week && !m.loading {
		return m, nil
	}
	m.week = id
	m.loading = true
	m.activity = 0
	return m, commands.LoadBoard(m.boards, m.userID, id)
}

func (m Model) edit(status string, fn func(context.Context, *board.Editor) error) tea.Cmd {
	return commands.Edit(m.boards, m.userID, m.week, status, fn)
}

func (m Model) openPrompt(kind PromptKind, value string) (tea.Model, tea.Cmd) {
	m.mode = ModePrompt
	m.promptKind = kind
	m.prompt.SetValue(value)
	m.prompt.CursorEnd()
	m.prompt.Placeholder = promptPlaceholder(kind)
	cmd := m.prompt.Focus()
	return m, cmd
}

func (m Model) closePrompt() Model {
	m.mode = ModeNormal
	m.promptKind = PromptNone
	m.prompt.Blur()
	m.prompt.Reset()
	return m
}

func (m Model) askConfirm(message string, action tea.Cmd) (tea.Model, tea.Cmd) {
	m.mode = ModeConfirm
	m.confirmMessage = message
	m.confirmAction = action
	return m, nil
}

func (m Model) setError(err error) (tea.Model, tea.Cmd) {
	m.status = err.Error()
	m.statusErr = true
	return m, commands.ClearStatusAfter(m.statusTTL)
}

// activityPromptText renders an activity back into prompt syntax.
func activityPromptText(a board.Activity) string {
	parts := []string{a.Title}
	if a.Category != "" {
		parts = append(parts, "#"+string(a.Category))
	}
	if a.Color != "" {
		parts = append(parts, "@"+string(a.Color))
	}
	return strings.Join(parts, " ")
}

func promptPlaceholder(kind PromptKind) string {
	switch kind {
	case PromptAddSlot, PromptEditSlot:
		return "09:00 10:00"
	default:
		return "Title #category @color"
	}
}
