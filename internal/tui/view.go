package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/javiermolinar/shcadule/internal/board"
	"github.com/javiermolinar/shcadule/internal/weekid"
)

const minColWidth = 6

const shortHelp = "h/l day  j/k slot  H/L week  a add  s slot  ? help  q quit"

var fullHelp = [][2]string{
	{"h/l  j/k", "move between days and slots"},
	{"H/L  t", "previous or next week, this week"},
	{"tab", "cycle activities in a cell"},
	{"a  e  d", "add, edit or delete an activity"},
	{"<  >", "move the activity to the previous or next day"},
	{"s  S  D", "add, change or delete a time slot"},
	{"n", "copy slots to next week"},
	{"g", "fill the following weeks with this layout"},
	{"y", "copy the week's plan to the clipboard"},
	{"q", "quit"},
}

// View renders the browser.
func (m Model) View() string {
	sections := []string{m.renderHeader(), ""}

	switch {
	case m.loading:
		sections = append(sections, m.styles.Muted.Render("Loading "+string(m.week)+"…"))
	case len(m.board.TimeSlots) == 0:
		msg := "No time slots yet. Press s to add one."
		if m.missing {
			msg = "No board for " + string(m.week) + " yet. Press s to add a time slot."
		}
		sections = append(sections, m.styles.Muted.Render(msg))
	default:
		sections = append(sections, m.renderGrid(), m.renderDetails(), m.renderSummary())
	}

	sections = append(sections, "", m.renderBottom())
	if m.showHelp {
		sections = append(sections, m.renderHelp())
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := m.styles.Title.Render("shcadule")
	week := m.styles.WeekLabel.Render(string(m.week))

	dates, err := weekid.Dates(m.week)
	if err != nil {
		return title + "  " + week
	}
	span := m.calendar.FormatShort(dates[0]) + " - " + m.calendar.Format(dates[6])
	header := title + "  " + week + "  " + m.styles.Muted.Render(span)
	if m.board.AutoGenerated && m.board.TemplateWeekID != "" {
		header += m.styles.Muted.Render("  (from " + string(m.board.TemplateWeekID) + ")")
	}
	return header
}

func (m Model) renderGrid() string {
	labels := make([]string, len(m.board.TimeSlots))
	labelW := 0
	for i, s := range m.board.TimeSlots {
		labels[i] = m.slotLabel(s)
		labelW = max(labelW, lipgloss.Width(labels[i])+2)
	}
	colW := m.colWidth(labelW)

	dates, _ := weekid.Dates(m.week)
	headers := make([]string, 0, len(board.Days)+1)
	headers = append(headers, "")
	today := make([]bool, len(board.Days))
	for i, d := range board.Days {
		h := dayName(d)[:3] + " " + m.calendar.FormatShort(dates[i])
		headers = append(headers, ansi.Truncate(h, colW-2, "…"))
		today[i] = sameDay(dates[i], m.today)
	}

	rows := make([][]string, len(m.board.TimeSlots))
	colors := make([][]board.Color, len(m.board.TimeSlots))
	for r, s := range m.board.TimeSlots {
		rows[r] = make([]string, 0, len(board.Days)+1)
		rows[r] = append(rows[r], labels[r])
		colors[r] = make([]board.Color, len(board.Days))
		for c, d := range board.Days {
			cell := m.board.Cell(d, s.ID)
			rows[r] = append(rows[r], cellText(cell, colW-2))
			if len(cell) > 0 {
				colors[r][c] = cell[0].Color
			}
		}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(m.styles.Border).
		BorderRow(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return m.styles.TimeColumn.Width(labelW)
			}
			day := col - 1
			if row == table.HeaderRow {
				if today[day] {
					return m.styles.DayHeaderToday.Width(colW)
				}
				return m.styles.DayHeader.Width(colW)
			}
			selected := row == m.cursor.Slot && day == m.cursor.Day
			if c := colors[row][day]; c != "" {
				return m.styles.Activity(c, selected).Width(colW)
			}
			if selected {
				return m.styles.Cursor.Width(colW)
			}
			return m.styles.EmptyCell.Width(colW)
		}).
		Render()
}

// colWidth splits the terminal width between the seven day columns.
func (m Model) colWidth(labelW int) int {
	borders := len(board.Days) + 2
	return max((m.width-labelW-borders)/len(board.Days), minColWidth)
}

func cellText(cell []board.Activity, width int) string {
	switch len(cell) {
	case 0:
		return "·"
	case 1:
		return ansi.Truncate(cell[0].Title, width, "…")
	}
	more := fmt.Sprintf(" +%d", len(cell)-1)
	return ansi.Truncate(cell[0].Title, max(width-len(more), 1), "…") + more
}

func (m Model) renderDetails() string {
	slot, ok := m.selectedSlot()
	if !ok {
		return ""
	}
	lines := []string{
		"",
		m.styles.WeekLabel.Render(dayName(m.selectedDay()) + "  " + m.slotLabel(slot)),
	}

	cell := m.selectedCell()
	if len(cell) == 0 {
		lines = append(lines, m.styles.Muted.Render("  Nothing planned. Press a to add an activity."))
		return strings.Join(lines, "\n")
	}

	for i, a := range cell {
		marker, title := " ", m.styles.Detail.Render(a.Title)
		if i == m.activity {
			marker, title = m.styles.DetailSelected.Render("›"), m.styles.DetailSelected.Render(a.Title)
		}
		category := m.styles.Muted.Render(" [" + string(a.Category) + "]")
		lines = append(lines, fmt.Sprintf("%s %s %s%s", marker, m.styles.Swatch(a.Color), title, category))
	}
	if act, ok := m.selectedActivity(); ok && act.Description != "" {
		for _, l := range wrapText(act.Description, max(m.width-6, 20)) {
			lines = append(lines, m.styles.Muted.Render("    "+l))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderSummary() string {
	sum := board.Summarize(m.board)
	text := fmt.Sprintf("%d activities · %d slots · %s scheduled",
		sum.TotalActivities, sum.Slots, formatMinutes(sum.ScheduledMinutes))
	return "\n" + m.styles.Muted.Render(text)
}

// renderBottom shows the prompt, the pending confirmation or the status line.
func (m Model) renderBottom() string {
	switch m.mode {
	case ModePrompt:
		return m.styles.Prompt.Render(promptTitle(m.promptKind)) + "\n" + m.prompt.View()
	case ModeConfirm:
		return m.styles.Confirm.Render(m.confirmMessage+" (y/n)")
	}

	var line string
	switch {
	case m.status != "" && m.statusErr:
		line = m.styles.Error.Render(m.status)
	case m.status != "":
		line = m.styles.Status.Render(m.status)
	}
	return line + "\n" + m.styles.Footer.Render(ansi.Truncate(shortHelp, max(m.width, 1), ""))
}

func (m Model) renderHelp() string {
	var b strings.Builder
	for _, h := range fullHelp {
		fmt.Fprintf(&b, "\n  %-10s %s", h[0], m.styles.Muted.Render(h[1]))
	}
	return b.String()
}

// plainText renders the week's activities for the clipboard.
func (m Model) plainText() string {
	var b strings.Builder
	b.WriteString(string(m.week))
	if dates, err := weekid.Dates(m.week); err == nil {
		fmt.Fprintf(&b, " (%s - %s)", m.calendar.Format(dates[0]), m.calendar.Format(dates[6]))
	}
	b.WriteString("\n")

	planned := 0
	for _, d := range board.Days {
		var lines []string
		for _, s := range m.board.TimeSlots {
			for _, a := range m.board.Cell(d, s.ID) {
				lines = append(lines, fmt.Sprintf("  %s  %s [%s]", m.slotLabel(s), a.Title, a.Category))
			}
		}
		if len(lines) == 0 {
			continue
		}
		planned += len(lines)
		b.WriteString("\n" + dayName(d) + "\n" + strings.Join(lines, "\n") + "\n")
	}
	if planned == 0 {
		b.WriteString("No activities planned.\n")
	}
	return b.String()
}

func (m Model) slotLabel(s board.TimeSlot) string {
	return board.FormatClock(s.StartTime, m.timeFormat) + "-" + board.FormatClock(s.EndTime, m.timeFormat)
}

func promptTitle(kind PromptKind) string {
	switch kind {
	case PromptAddSlot:
		return "New time slot"
	case PromptEditSlot:
		return "Change time slot"
	case PromptAddActivity:
		return "New activity"
	case PromptEditActivity:
		return "Edit activity"
	}
	return ""
}

func dayName(d board.Day) string {
	s := string(d)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func sameDay(a, b time.Time) bool {
	if b.IsZero() {
		return false
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func formatMinutes(minutes int) string {
	h, mm := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", mm)
	case mm == 0:
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh%02dm", h, mm)
}

// wrapText breaks s on spaces so no line is wider than width cells.
func wrapText(s string, width int) []string {
	var lines []string
	var line strings.Builder
	lineW := 0

	for _, word := range strings.Fields(s) {
		w := runewidth.StringWidth(word)
		if w > width {
			word = runewidth.Truncate(word, width, "…")
			w = runewidth.StringWidth(word)
		}
		if lineW > 0 && lineW+1+w > width {
			lines = append(lines, line.String())
			line.Reset()
			lineW = 0
		}
		if lineW > 0 {
			line.WriteByte(' ')
			lineW++
		}
		line.WriteString(word)
		lineW += w
	}
	if lineW > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
