package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/shcadule/internal/board"
	"github.com/javiermolinar/shcadule/internal/tui/theme"
)

// Styles holds all lipgloss styles for the browser, derived from a theme.
type Styles struct {
	palette *theme.Palette

	Title          lipgloss.Style
	WeekLabel      lipgloss.Style
	DayHeader      lipgloss.Style
	DayHeaderToday lipgloss.Style
	TimeColumn     lipgloss.Style
	EmptyCell      lipgloss.Style
	Cursor         lipgloss.Style
	Border         lipgloss.Style
	Muted          lipgloss.Style
	Detail         lipgloss.Style
	DetailSelected lipgloss.Style
	Prompt         lipgloss.Style
	Confirm        lipgloss.Style
	Status         lipgloss.Style
	Error          lipgloss.Style
	Footer         lipgloss.Style
}

// NewStyles builds the style set for t.
func NewStyles(t *theme.Theme) *Styles {
	p := theme.NewPalette(t)

	base := lipgloss.NewStyle().Foreground(p.Fg)
	return &Styles{
		palette: p,

		Title:          lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		WeekLabel:      base.Bold(true),
		DayHeader:      lipgloss.NewStyle().Bold(true).Foreground(p.Fg).Padding(0, 1),
		DayHeaderToday: lipgloss.NewStyle().Bold(true).Foreground(p.Today).Padding(0, 1),
		TimeColumn:     lipgloss.NewStyle().Foreground(p.FgMuted).Padding(0, 1),
		EmptyCell:      lipgloss.NewStyle().Foreground(p.FgMuted).Padding(0, 1),
		Cursor:         lipgloss.NewStyle().Foreground(p.Fg).Background(p.BgSelection).Padding(0, 1),
		Border:         lipgloss.NewStyle().Foreground(p.Accent),
		Muted:          lipgloss.NewStyle().Foreground(p.FgMuted),
		Detail:         base,
		DetailSelected: base.Bold(true).Foreground(p.Accent),
		Prompt:         lipgloss.NewStyle().Foreground(p.Accent),
		Confirm:        lipgloss.NewStyle().Bold(true).Foreground(p.TextOnWarning).Background(p.Warning).Padding(0, 1),
		Status:         lipgloss.NewStyle().Foreground(p.Accent),
		Error:          lipgloss.NewStyle().Foreground(p.Warning),
		Footer:         lipgloss.NewStyle().Foreground(p.FgMuted),
	}
}

// Activity is the cell style for an activity color. selected marks the cursor cell.
func (s *Styles) Activity(c board.Color, selected bool) lipgloss.Style {
	colors := s.palette.Activity(string(c))
	bg := colors.Bg
	if selected {
		bg = colors.Selected
	}
	text := colors.Text
	if selected {
		text = s.palette.Bg
	}
	return lipgloss.NewStyle().Foreground(text).Background(bg).Padding(0, 1)
}

// Swatch renders a short colored marker for an activity color.
func (s *Styles) Swatch(c board.Color) string {
	return lipgloss.NewStyle().Foreground(s.palette.Activity(string(c)).Selected).Render("■")
}
