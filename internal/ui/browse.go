package ui

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/shcadule/internal/tui"
)

var errNotTerminal = errors.New("the board browser needs a terminal; use 'shcadule board show' instead")

func (a *App) browseCmd() *cobra.Command {
	var week string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive board browser",
		Long: `Open a full-screen view of a week's board.

Move with h/j/k/l, change week with H/L, add an activity with a and a
slot with s. Press ? for every key.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.browse(week)
		},
	}
	addWeekFlag(cmd, &week)
	return cmd
}

// browse runs the board browser on the week containing ref.
func (a *App) browse(ref string) error {
	if !a.isTerminal() {
		return errNotTerminal
	}
	user, err := a.user()
	if err != nil {
		return err
	}
	id, err := a.resolveWeek(ref)
	if err != nil {
		return err
	}
	opts := tui.Options{
		Boards:     a.boards,
		Calendar:   a.calendar,
		UserID:     user,
		Week:       id,
		ThisWeek:   a.calendar.WeekID(a.now()),
		Today:      a.now(),
		WeeksAhead: a.cfg.Board.WeeksAhead,
		TimeFormat: a.cfg.UI.TimeFormat,
		Theme:      a.cfg.UI.Theme,
		Logger:     a.logger.Named("tui"),
	}
	return a.runBrowser(opts)
}
