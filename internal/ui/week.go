package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/shcadule/internal/dateutil"
	"github.com/javiermolinar/shcadule/internal/weekid"
)

func (a *App) weekCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show the week ID and dates for a day",
		Long: `Print the week ID containing a date, followed by its seven days.

The date defaults to today and accepts YYYY-MM-DD, weekday names,
today/tomorrow/yesterday, next-week/last-week and next-<day>/last-<day>.

Examples:
  shcadule week
  shcadule week --date 2025-03-05 --calendar ethiopian
  shcadule week next 2025-W52`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := a.resolveWeek(date)
			if err != nil {
				return err
			}
			return printWeek(cmd.OutOrStdout(), id, a.calendar)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date or week ID (default: today)")
	cmd.AddCommand(a.weekStepCmd("next", "Print the week after a week ID", 1))
	cmd.AddCommand(a.weekStepCmd("prev", "Print the week before a week ID", -1))
	return cmd
}

func (a *App) weekStepCmd(use, short string, direction int) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   use + " <week-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := weekid.Step(weekid.ID(args[0]), direction*count)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of weeks to move")
	return cmd
}

// resolveWeek turns a --week or --date value into a week ID. Valid week IDs are
// used as given; anything else is parsed as a date in the configured calendar.
func (a *App) resolveWeek(ref string) (weekid.ID, error) {
	if ref != "" {
		if _, err := weekid.Parse(weekid.ID(ref)); err == nil {
			return weekid.ID(ref), nil
		}
	}

	day, err := dateutil.ParseRelativeDate(ref, a.now())
	if err != nil {
		return "", fmt.Errorf("%q is not a week ID or date: %w", ref, err)
	}
	return a.calendar.WeekID(day), nil
}
