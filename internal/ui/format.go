package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/javiermolinar/shcadule/internal/board"
	"github.com/javiermolinar/shcadule/internal/weekid"
)

// PrintOpts configures board printing.
type PrintOpts struct {
	TimeFormat string // "24" or "12"
	List       bool   // one line per activity instead of the grid
	Width      int    // terminal width (0 = detect)
}

func (o PrintOpts) width() int {
	if o.Width > 0 {
		return o.Width
	}
	return termWidth()
}

// slotLabel renders a slot's range in the configured clock format.
func (o PrintOpts) slotLabel(s board.TimeSlot) string {
	return board.FormatClock(s.StartTime, o.TimeFormat) + "-" + board.FormatClock(s.EndTime, o.TimeFormat)
}

// printWeek prints a week ID followed by its seven dates.
func printWeek(w io.Writer, id weekid.ID, cal *weekid.Calendar) error {
	dates, err := weekid.Dates(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "  %s\n", formatHeader(id.String()))
	for i, d := range dates {
		fmt.Fprintf(w, "  %-9s  %s  %s\n", dayTitle(board.Days[i]), d.Format("2006-01-02"), formatMuted(cal.Format(d)))
	}
	return nil
}

// printBoardHeader prints the week line shown above a board.
func printBoardHeader(w io.Writer, b board.Board, cal *weekid.Calendar) error {
	dates, err := weekid.Dates(b.WeekID)
	if err != nil {
		return err
	}
	header := fmt.Sprintf("WEEK %s: %s - %s", b.WeekID, cal.FormatShort(dates[0]), cal.Format(dates[6]))
	fmt.Fprintf(w, "\n  %s\n", formatHeader(header))
	if b.AutoGenerated {
		fmt.Fprintf(w, "  %s\n", formatMuted("generated from "+b.TemplateWeekID.String()))
	}
	return nil
}

// printBoard prints a board as a slot-by-day grid, or as a per-day list.
func printBoard(w io.Writer, b board.Board, cal *weekid.Calendar, opts PrintOpts) error {
	if err := printBoardHeader(w, b, cal); err != nil {
		return err
	}
	rule := strings.Repeat("─", min(opts.width(), 100))
	fmt.Fprintln(w, rule)

	if len(b.TimeSlots) == 0 {
		fmt.Fprintln(w, "  No time slots yet. Add one with: shcadule slot add 09:00 10:00")
		return nil
	}

	if opts.List {
		printBoardList(w, b, opts)
	} else {
		printBoardGrid(w, b, cal, opts)
	}

	fmt.Fprintln(w, rule)
	printSummary(w, b)
	return nil
}

func printBoardGrid(w io.Writer, b board.Board, cal *weekid.Calendar, opts PrintOpts) {
	labelWidth := 0
	for _, s := range b.TimeSlots {
		labelWidth = max(labelWidth, utf8.RuneCountInString(opts.slotLabel(s)))
	}
	labelWidth += len(" 00.")

	colWidth := max((opts.width()-labelWidth-2)/7-1, 6)

	dates, _ := weekid.Dates(b.WeekID)
	var head strings.Builder
	head.WriteString("  " + strings.Repeat(" ", labelWidth))
	for i, d := range board.Days {
		label := dayTitle(d)[:3]
		if !dates[i].IsZero() {
			label += " " + cal.FormatShort(dates[i])
		}
		head.WriteString(" " + formatHeader(padRight(truncate(label, colWidth), colWidth)))
	}
	fmt.Fprintln(w, head.String())

	for i, s := range b.TimeSlots {
		var row strings.Builder
		label := fmt.Sprintf("%2d. %s", i+1, opts.slotLabel(s))
		row.WriteString("  " + padRight(label, labelWidth))
		for _, d := range board.Days {
			row.WriteString(" " + cellText(b.Cell(d, s.ID), colWidth))
		}
		fmt.Fprintln(w, row.String())
	}
}

// cellText renders the first activity of a cell and a count of the rest.
func cellText(list []board.Activity, width int) string {
	if len(list) == 0 {
		return formatMuted(padRight("·", width))
	}
	text := list[0].Title
	if len(list) > 1 {
		more := fmt.Sprintf(" +%d", len(list)-1)
		text = truncate(text, width-len(more)) + more
	}
	return formatActivity(padRight(truncate(text, width), width), list[0].Color)
}

func printBoardList(w io.Writer, b board.Board, opts PrintOpts) {
	fmt.Fprintf(w, "  %s\n", formatHeader("Slots"))
	for i, s := range b.TimeSlots {
		fmt.Fprintf(w, "  %2d. %s  %s\n", i+1, opts.slotLabel(s), formatMuted(shortID(s.ID)))
	}

	for _, d := range board.Days {
		printed := false
		for _, s := range b.TimeSlots {
			list := b.Cell(d, s.ID)
			if len(list) == 0 {
				continue
			}
			if !printed {
				fmt.Fprintf(w, "\n  %s\n", formatHeader(dayTitle(d)))
				printed = true
			}
			for j, act := range list {
				fmt.Fprintf(w, "    %s  %d. %s  %s  %s\n",
					opts.slotLabel(s), j+1, formatActivity(act.Title, act.Color),
					formatMuted("["+string(act.Category)+"]"), formatMuted(shortID(act.ID)))
				if act.Description != "" {
					fmt.Fprintf(w, "        %s\n", formatMuted(act.Description))
				}
			}
		}
	}
}

// printSummary prints the board's activity counts and how much slot time is planned.
func printSummary(w io.Writer, b board.Board) {
	sum := board.Summarize(b)
	fmt.Fprintf(w, "  Activities: %d  |  Slots: %d  |  Scheduled: %s\n",
		sum.TotalActivities, sum.Slots, formatStats(FormatDuration(sum.ScheduledMinutes)))

	var cats []string
	for _, c := range board.Categories {
		if n := sum.Categories[c]; n > 0 {
			cats = append(cats, fmt.Sprintf("%s %d", c, n))
		}
	}
	if len(cats) > 0 {
		fmt.Fprintf(w, "  %s\n", formatMuted(strings.Join(cats, " · ")))
	}

	capacity := 0
	for _, s := range b.TimeSlots {
		capacity += 7 * board.SlotMinutes(s.StartTime, s.EndTime)
	}
	if capacity > 0 {
		fmt.Fprintf(w, "  Planned: %s\n", PlanBar(sum.ScheduledMinutes, capacity, 20))
	}
}

// PlanBar creates an ASCII progress bar showing how much slot time holds activities.
func PlanBar(scheduled, capacity, width int) string {
	if capacity == 0 {
		return "[" + strings.Repeat("░", width) + "] (0% planned)"
	}

	pct := (scheduled * 100) / capacity
	filled := (scheduled * width) / capacity

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %s", formatStats(bar), formatStats(fmt.Sprintf("(%d%% planned)", pct)))
}

// FormatDuration formats minutes as a human-readable duration.
func FormatDuration(minutes int) string {
	if minutes == 0 {
		return "0m"
	}
	hours := minutes / 60
	mins := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh%dm", hours, mins)
}

// dayTitle capitalizes a board day: "monday" -> "Monday".
func dayTitle(d board.Day) string {
	s := string(d)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// shortID returns the first eight characters of an ID.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// truncate shortens s to width runes, marking the cut with "…".
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	return string(r[:width-1]) + "…"
}

// padRight pads s with spaces to width runes.
func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// progressBar renders "[██░░] 2/4 done (50%)".
func progressBar(done, total, width int) string {
	if total == 0 {
		return "[" + strings.Repeat("░", width) + "] nothing yet"
	}
	filled := (done * width) / total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %s", formatStats(bar), formatStats(fmt.Sprintf("%d/%d done (%d%%)", done, total, done*100/total)))
}
