package ui

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/shcadule/internal/dateutil"
	"github.com/javiermolinar/shcadule/internal/ethiopian"
	"github.com/javiermolinar/shcadule/internal/weekid"
)

func (a *App) ethCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eth",
		Short: "Convert dates between the Gregorian and Ethiopian calendars",
	}
	cmd.AddCommand(a.ethFromCmd())
	cmd.AddCommand(a.ethToCmd())
	return cmd
}

func (a *App) ethFromCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "from [date]",
		Short: "Convert a Gregorian date to the Ethiopian calendar",
		Long: `Convert a Gregorian date (default today) to the Ethiopian calendar.

Example:
  shcadule eth from 2025-03-05`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in string
			if len(args) > 0 {
				in = args[0]
			}
			day, err := dateutil.ParseRelativeDate(in, a.now())
			if err != nil {
				return err
			}

			eth, err := ethiopian.FromGregorian(day)
			if err != nil {
				return err
			}
			id, err := weekid.For(day, weekid.Ethiopian)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", eth, formatMuted(id.String()))
			return nil
		},
	}
}

func (a *App) ethToCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "to <year> <month> <day>",
		Short: "Convert an Ethiopian date to the Gregorian calendar",
		Long: `Convert an Ethiopian date to the Gregorian calendar. Months run 1-13;
month 13 (Pagumen) has 5 days, 6 in leap years.

Example:
  shcadule eth to 2017 6 26`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var parts [3]int
			for i, arg := range args {
				n, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("%q is not a number", arg)
				}
				parts[i] = n
			}

			d := ethiopian.Date{Year: parts[0], Month: parts[1], Day: parts[2]}
			if err := d.Validate(); err != nil {
				return err
			}
			g := d.Gregorian()
			id, err := weekid.For(g, weekid.Gregorian)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n",
				g.Format("2006-01-02"), g.Format("Monday, January 2, 2006"), formatMuted(id.String()))
			return nil
		},
	}
}
