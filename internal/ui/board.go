package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/shcadule/internal/board"
	"github.com/javiermolinar/shcadule/internal/weekid"
)

func (a *App) boardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show and copy weekly boards",
	}
	cmd.AddCommand(a.boardShowCmd())
	cmd.AddCommand(a.boardListCmd())
	cmd.AddCommand(a.boardCopyCmd())
	cmd.AddCommand(a.boardNextCmd())
	cmd.AddCommand(a.boardGenerateCmd())
	return cmd
}

func addWeekFlag(cmd *cobra.Command, week *string) {
	cmd.Flags().StringVarP(week, "week", "w", "", "Week ID or date inside the week (default: this week)")
}

func (a *App) boardShowCmd() *cobra.Command {
	var week string
	var list bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a week's board",
		Long: `Print the board of a week as a grid of slots by day.

Example:
  shcadule board show --week 2025-W10
  shcadule board show --week next-week --list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.user()
			if err != nil {
				return err
			}
			id, err := a.resolveWeek(week)
			if err != nil {
				return err
			}

			b, err := a.boards.Get(context.Background(), userID, id)
			if errors.Is(err, board.ErrBoardNotFound) {
				fmt.Fprintf(cmd.OutOrStdout(), "No board for %s yet. Add a slot with: shcadule slot add --week %s 09:00 10:00\n", id, id)
				return nil
			}
			if err != nil {
				return err
			}

			return printBoard(cmd.OutOrStdout(), b, a.calendar, PrintOpts{
				TimeFormat: a.cfg.UI.TimeFormat,
				List:       list,
			})
		},
	}

	addWeekFlag(cmd, &week)
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List activities with their IDs instead of the grid")
	return cmd
}

func (a *App) boardListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the weeks that have a board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.user()
			if err != nil {
				return err
			}

			ids, err := a.boards.List(context.Background(), userID)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No boards yet.")
				return nil
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func (a *App) boardCopyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "copy <source-week> <target-week>",
		Short: "Copy a week's time slots into another week",
		Long: `Copy the time slots of one week into another. Activities are not copied,
and any board already stored for the target week is replaced.

Example:
  shcadule board copy 2025-W10 2025-W14`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := a.user()
			if err != nil {
				return err
			}
			src, err := a.resolveWeek(args[0])
			if err != nil {
				return err
			}
			dst, err := a.resolveWeek(args[1])
			if err != nil {
				return err
			}

			if err := a.boards.CopyWeek(context.Background(), userID, src, dst); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Copied time slots from %s to %s\n", src, dst)
			return nil
		},
	}
}

func (a *App) boardNextCmd() *cobra.Command {
	var week string

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Copy a week's time slots into the following week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.user()
			if err != nil {
				return err
			}
			src, err := a.resolveWeek(week)
			if err != nil {
				return err
			}

			next, err := a.boards.CopyToNextWeek(context.Background(), userID, src)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Copied time slots from %s to %s\n", src, next)
			return nil
		},
	}

	addWeekFlag(cmd, &week)
	return cmd
}

func (a *App) boardGenerateCmd() *cobra.Command {
	var week string
	var weeks int

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Fill the following weeks with a week's time slots",
		Long: `Use a week as a template and write its time slots into each of the
following weeks. Weeks that already have slots are left alone.

Example:
  shcadule board generate --week 2025-W10 --weeks 12`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.user()
			if err != nil {
				return err
			}
			template, err := a.resolveWeek(week)
			if err != nil {
				return err
			}
			if weeks <= 0 {
				weeks = a.cfg.Board.WeeksAhead
			}

			res, err := a.boards.AutoGenerateFutureWeeks(context.Background(), userID, template, weeks)
			if err != nil {
				return err
			}
			printGenerateResult(cmd, template, res)
			return nil
		},
	}

	addWeekFlag(cmd, &week)
	cmd.Flags().IntVarP(&weeks, "weeks", "n", 0, "Number of weeks to generate (default from config)")
	return cmd
}

func printGenerateResult(cmd *cobra.Command, template weekid.ID, res board.GenerateResult) {
	w := cmd.OutOrStdout()
	switch {
	case res.NoSlots:
		fmt.Fprintf(w, "%s has no time slots; nothing to generate.\n", template)
	case len(res.Generated) == 0:
		fmt.Fprintln(w, "Every following week already has time slots.")
	default:
		fmt.Fprintf(w, "From %s, %s\n", template, res)
	}
}
