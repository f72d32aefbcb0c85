// Package tui provides the terminal board browser for shcadule.
package tui

import (
	"errors"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/javiermolinar/shcadule/internal/board"
	"github.com/javiermolinar/shcadule/internal/tui/commands"
	"github.com/javiermolinar/shcadule/internal/tui/theme"
	"github.com/javiermolinar/shcadule/internal/weekid"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModePrompt
	ModeConfirm
)

// PromptKind identifies what the open prompt edits.
type PromptKind int

const (
	PromptNone PromptKind = iota
	PromptAddSlot
	PromptEditSlot
	PromptAddActivity
	PromptEditActivity
)

// statusTimeout is how long status messages stay on screen.
const statusTimeout = 4 * time.Second

// Position represents a cursor position in the grid.
type Position struct {
	Day  int // 0=Monday, 6=Sunday
	Slot int // index into the board's sorted time slots
}

// Options configures a Model.
type Options struct {
	Boards   commands.Boards
	Calendar *weekid.Calendar
	UserID   string
	// Week is the week shown first.
	Week weekid.ID
	// ThisWeek is where t jumps to. Defaults to Week.
	ThisWeek weekid.ID
	// Today highlights its day header when it falls in the shown week.
	Today      time.Time
	WeeksAhead int
	TimeFormat string // "24" or "12"
	Theme      string
	// Clipboard defaults to clipboard.WriteAll.
	Clipboard func(string) error
	Logger    *zap.Logger
}

// Model is the board browser.
type Model struct {
	boards     commands.Boards
	calendar   *weekid.Calendar
	userID     string
	today      time.Time
	thisWeek   weekid.ID
	weeksAhead int
	timeFormat string
	clipboard  func(string) error
	logger     *zap.Logger

	theme  *theme.Theme
	styles *Styles

	// Shown board
	week    weekid.ID
	board   board.Board
	missing bool
	loading bool

	cursor   Position
	activity int // index of the selected activity within the cursor cell
	mode     Mode

	promptKind PromptKind
	prompt     textinput.Model

	confirmMessage string
	confirmAction  tea.Cmd

	status    string
	statusErr bool
	statusTTL time.Duration
	showHelp  bool

	width  int
	height int
}

// New creates a browser showing opts.Week.
func New(opts Options) (Model, error) {
	if opts.Boards == nil {
		return Model{}, errors.New("tui: no board service")
	}
	if _, err := weekid.Parse(opts.Week); err != nil {
		return Model{}, err
	}
	if opts.ThisWeek == "" {
		opts.ThisWeek = opts.Week
	}
	if opts.Calendar == nil {
		opts.Calendar = weekid.NewCalendar(opts.Week.System(), opts.Logger)
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	th, err := theme.Load(opts.Theme)
	if err != nil {
		return Model{}, err
	}

	prompt := textinput.New()
	prompt.Prompt = "> "
	prompt.CharLimit = 120

	return Model{
		boards:     opts.Boards,
		calendar:   opts.Calendar,
		userID:     opts.UserID,
		today:      opts.Today,
		thisWeek:   opts.ThisWeek,
		weeksAhead: opts.WeeksAhead,
		timeFormat: opts.TimeFormat,
		clipboard:  opts.Clipboard,
		logger:     opts.Logger,
		theme:      th,
		styles:     NewStyles(th),
		week:       opts.Week,
		board:      board.Board{WeekID: opts.Week},
		loading:    true,
		prompt:     prompt,
		statusTTL:  statusTimeout,
		width:      100,
		height:     30,
	}, nil
}

// Run starts the browser on the alternate screen and blocks until it quits.
func Run(opts Options) error {
	m, err := New(opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// Init loads the first week.
func (m Model) Init() tea.Cmd {
	return commands.LoadBoard(m.boards, m.userID, m.week)
}

// Week returns the week being shown.
func (m Model) Week() weekid.ID { return m.week }

// Cursor returns the cursor position.
func (m Model) Cursor() Position { return m.cursor }

// Mode returns the interaction mode.
func (m Model) Mode() Mode { return m.mode }

// Status returns the status line text.
func (m Model) Status() string { return m.status }

func (m Model) selectedSlot() (board.TimeSlot, bool) {
	if m.cursor.Slot < 0 || m.cursor.Slot >= len(m.board.TimeSlots) {
		return board.TimeSlot{}, false
	}
	return m.board.TimeSlots[m.cursor.Slot], true
}

func (m Model) selectedDay() board.Day {
	return board.Days[m.cursor.Day]
}

func (m Model) selectedCell() []board.Activity {
	slot, ok := m.selectedSlot()
	if !ok {
		return nil
	}
	return m.board.Cell(m.selectedDay(), slot.ID)
}

func (m Model) selectedActivity() (board.Activity, bool) {
	cell := m.selectedCell()
	if m.activity < 0 || m.activity >= len(cell) {
		return board.Activity{}, false
	}
	return cell[m.activity], true
}

// clamp keeps the cursor and activity index inside the shown board.
func (m *Model) clamp() {
	m.cursor.Day = min(max(m.cursor.Day, 0), len(board.Days)-1)
	m.cursor.Slot = min(max(m.cursor.Slot, 0), max(len(m.board.TimeSlots)-1, 0))
	if n := len(m.selectedCell()); m.activity >= n {
		m.activity = max(n-1, 0)
	}
}
