package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/javiermolinar/shcadule/internal/board"
	"github.com/javiermolinar/shcadule/internal/config"
	"github.com/javiermolinar/shcadule/internal/daily"
	"github.com/javiermolinar/shcadule/internal/db"
	"github.com/javiermolinar/shcadule/internal/goals"
	"github.com/javiermolinar/shcadule/internal/logging"
	"github.com/javiermolinar/shcadule/internal/store"
	"github.com/javiermolinar/shcadule/internal/subscription"
	"github.com/javiermolinar/shcadule/internal/tui"
	"github.com/javiermolinar/shcadule/internal/weekid"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// errNoUser is returned by commands that need a user when none is configured.
var errNoUser = errors.New("no user: pass --user, set SHCADULE_USER_ID, or set [user] id in the config file")

// App holds the CLI application state.
type App struct {
	root *cobra.Command

	cfg      *config.Config
	logger   *zap.Logger
	calendar *weekid.Calendar
	store    store.Store
	boards   *board.Service
	subs     *subscription.Service
	daily    *daily.Service
	goals    *goals.Service

	// Overridden in tests.
	loadConfig func(path string) (*config.Config, error)
	openStore  func(path string) (store.Store, error)
	newLogger  func(config.LogConfig) (*zap.Logger, error)
	now        func() time.Time
	isTerminal func() bool
	runBrowser func(tui.Options) error

	configPath   string
	userID       string
	calendarName string
	debug        bool
	noColor      bool
}

// NewApp creates the CLI application. Configuration, logging and storage are
// set up when a command runs.
func NewApp() *App {
	a := &App{
		loadConfig: config.LoadFrom,
		openStore:  openStore,
		newLogger:  logging.New,
		now:        time.Now,
		isTerminal: stdinIsTerminal,
		runBrowser: tui.Run,
	}

	a.root = &cobra.Command{
		Use:   "shcadule",
		Short: "A weekly time and plan board",
		Long: `Shcadule keeps a weekly board of time slots and activities.

A board belongs to one week and holds a list of time slots shared by
all seven days. Each (day, slot) cell holds activities. Weeks can be
labelled in the Gregorian or the Ethiopian calendar, and a board's
slots can be copied into the following weeks as a template.

Alongside the board, 'daily' keeps a to-do list per day and 'goal'
tracks longer-range goals with checklists.`,
		SilenceUsage:      true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error { return a.setup() },
		// Without a subcommand, open the browser on a terminal and print help otherwise.
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.isTerminal() {
				return cmd.Help()
			}
			return a.browse("")
		},
	}

	flags := a.root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.DefaultConfigPath(), "Config file path")
	flags.StringVar(&a.userID, "user", "", "User ID (default from config)")
	flags.StringVar(&a.calendarName, "calendar", "", "Calendar: gregorian or ethiopian (default from config)")
	flags.BoolVar(&a.debug, "debug", false, "Enable debug logging")
	flags.BoolVar(&a.noColor, "no-color", false, "Disable color output")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.browseCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.weekCmd())
	a.root.AddCommand(a.boardCmd())
	a.root.AddCommand(a.slotCmd())
	a.root.AddCommand(a.activityCmd())
	a.root.AddCommand(a.dailyCmd())
	a.root.AddCommand(a.goalCmd())
	a.root.AddCommand(a.ethCmd())
	a.root.AddCommand(a.subscriptionCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "shcadule %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// SetArgs overrides os.Args[1:].
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

// SetOutput sends command output and errors to w.
func (a *App) SetOutput(w io.Writer) {
	a.root.SetOut(w)
	a.root.SetErr(w)
}

// Close waits for background board generation and releases the store.
func (a *App) Close() error {
	if a.boards != nil {
		a.boards.Close()
	}
	var err error
	if a.store != nil {
		err = a.store.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return err
}

// setup loads configuration, applies flag overrides and builds the logger.
func (a *App) setup() error {
	if a.noColor {
		DisableColor()
	}
	if a.cfg != nil {
		return nil
	}

	cfg, err := a.loadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if a.userID != "" {
		cfg.User.ID = a.userID
	}
	if a.calendarName != "" {
		cfg.Board.Calendar = a.calendarName
	}
	if a.debug {
		cfg.Log.Level = "debug"
	}

	system, err := weekid.ParseSystem(cfg.Board.Calendar)
	if err != nil {
		return err
	}

	logger, err := a.newLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	a.calendar = weekid.NewCalendar(system, logger.Named("calendar"))
	return nil
}

// open connects the store and builds the services on first use.
func (a *App) open() error {
	if a.store != nil {
		return nil
	}

	st, err := a.openStore(a.cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.logger.Debug("database opened", zap.String("path", a.cfg.Storage.DBPath))

	a.store = st
	a.boards = board.NewService(st,
		board.WithLogger(a.logger.Named("board")),
		board.WithClock(a.now),
		board.WithWeeksAhead(a.cfg.Board.WeeksAhead),
		board.WithGenerateTimeout(a.cfg.GenerateTimeout()),
	)
	a.subs = subscription.NewService(st,
		subscription.WithLogger(a.logger.Named("subscription")),
		subscription.WithClock(a.now),
		subscription.WithApprovalPeriod(a.cfg.ApprovalPeriod()),
	)
	a.daily = daily.NewService(st,
		daily.WithLogger(a.logger.Named("daily")),
		daily.WithClock(a.now),
	)
	a.goals = goals.NewService(st,
		goals.WithLogger(a.logger.Named("goals")),
		goals.WithClock(a.now),
	)
	return nil
}

// openStore opens the SQLite store at dbPath, creating its directory.
func openStore(dbPath string) (store.Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return db.New(dbPath)
}

// user returns the configured user, opening the store as a side effect.
func (a *App) user() (string, error) {
	if a.cfg.User.ID == "" {
		return "", errNoUser
	}
	if err := a.open(); err != nil {
		return "", err
	}
	return a.cfg.User.ID, nil
}
