package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/shcadule/internal/config"
	"github.com/javiermolinar/shcadule/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Show the effective configuration, write a default config file, or edit
it interactively.

Example:
  shcadule config
  shcadule config init
  shcadule config edit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\n\n", a.configPath)
			printConfig(cmd.OutOrStdout(), a.cfg)
			return nil
		},
	}
	cmd.AddCommand(a.configShowCmd())
	cmd.AddCommand(a.configInitCmd())
	cmd.AddCommand(a.configEditCmd())
	return cmd
}

func (a *App) configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printConfig(cmd.OutOrStdout(), a.cfg)
			return nil
		},
	}
}

func (a *App) configInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(a.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", a.configPath)
			}

			cfg := config.Default()
			cfg.User.ID = a.cfg.User.ID
			if err := cfg.SaveTo(a.configPath); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", a.configPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

func (a *App) configEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit the config file interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !stdinIsTerminal() {
				return errors.New("config edit needs an interactive terminal")
			}
			return runConfigInteractive(cmd.OutOrStdout(), os.Stdin, a.configPath)
		},
	}
}

func runConfigInteractive(w io.Writer, in io.Reader, configPath string) error {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	printConfig(w, cfg)
	fmt.Fprintln(w)

	reader := bufio.NewReader(in)
	p := prompter{w: w, r: reader}

	cfg.User.ID = p.value("User ID", cfg.User.ID)
	cfg.Board.Calendar = p.value("Calendar (gregorian, ethiopian)", cfg.Board.Calendar)
	cfg.Board.WeeksAhead = p.number("Weeks generated from a new board", cfg.Board.WeeksAhead)
	cfg.Storage.DBPath = p.value("Database path", cfg.Storage.DBPath)
	cfg.Subscription.ApprovalDays = p.number("Days an approved plan lasts", cfg.Subscription.ApprovalDays)
	cfg.Log.Level = p.value("Log level (debug, info, warn, error)", cfg.Log.Level)
	cfg.UI.TimeFormat = p.value("Time format (24, 12)", cfg.UI.TimeFormat)
	cfg.UI.Theme = p.theme(cfg.UI.Theme)

	// Validate before saving
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.SaveTo(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(w, "\nConfiguration saved!")
	return nil
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Current configuration:")
	fmt.Fprintln(w, "──────────────────────")
	fmt.Fprintln(w, "[user]")
	fmt.Fprintf(w, "  id                       = %s\n", cfg.User.ID)
	fmt.Fprintln(w, "\n[board]")
	fmt.Fprintf(w, "  calendar                 = %s\n", cfg.Board.Calendar)
	fmt.Fprintf(w, "  weeks_ahead              = %d\n", cfg.Board.WeeksAhead)
	fmt.Fprintf(w, "  generate_timeout_seconds = %d\n", cfg.Board.GenerateTimeoutSeconds)
	fmt.Fprintln(w, "\n[storage]")
	fmt.Fprintf(w, "  db_path                  = %s\n", cfg.Storage.DBPath)
	fmt.Fprintln(w, "\n[subscription]")
	fmt.Fprintf(w, "  sweep_interval_minutes   = %d\n", cfg.Subscription.SweepIntervalMinutes)
	fmt.Fprintf(w, "  approval_days            = %d\n", cfg.Subscription.ApprovalDays)
	fmt.Fprintln(w, "\n[log]")
	fmt.Fprintf(w, "  level                    = %s\n", cfg.Log.Level)
	fmt.Fprintf(w, "  format                   = %s\n", cfg.Log.Format)
	fmt.Fprintf(w, "  output                   = %s\n", cfg.Log.Output)
	fmt.Fprintln(w, "\n[ui]")
	fmt.Fprintf(w, "  time_format              = %s\n", cfg.UI.TimeFormat)
	fmt.Fprintf(w, "  theme                    = %s\n", cfg.UI.Theme)
}

// prompter asks for values on w and reads answers from r.
type prompter struct {
	w io.Writer
	r *bufio.Reader
}

func (p prompter) value(label, current string) string {
	if current == "" {
		fmt.Fprintf(p.w, "  %s: ", label)
	} else {
		fmt.Fprintf(p.w, "  %s [%s]: ", label, current)
	}
	input, _ := p.r.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

// theme asks until the answer names an embedded theme. An invalid current
// value left unchanged falls back to the default.
func (p prompter) theme(current string) string {
	options := strings.Join(theme.Available(), ", ")
	for {
		v := p.value(fmt.Sprintf("Browser theme (%s)", options), current)
		if theme.IsAvailable(v) {
			return strings.ToLower(v)
		}
		fmt.Fprintf(p.w, "  Invalid theme %q. Available: %s\n", v, options)
		if v == current {
			return theme.Default
		}
	}
}

func (p prompter) number(label string, current int) int {
	for {
		v := p.value(label, strconv.Itoa(current))
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
		fmt.Fprintf(p.w, "  %q is not a number\n", v)
	}
}
