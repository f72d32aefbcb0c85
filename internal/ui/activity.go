package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/shcadule/internal/board"
)

func (a *App) activityCmd() *cobra.Command {
	colors := make([]string, len(board.Colors))
	for i, c := range board.Colors {
		colors[i] = string(c)
	}
	categories := make([]string, len(board.Categories))
	for i, c := range board.Categories {
		categories[i] = string(c)
	}

	cmd := &cobra.Command{
		Use:     "activity",
		Aliases: []string{"act"},
		Short:   "Add, change, move and remove activities",
		Long: fmt.Sprintf(`Activities live in a (day, slot) cell of a board.

Days are monday through sunday. Slots are referenced as in "shcadule slot".
An activity is referenced by its position in the cell (1, 2, ...) or a
prefix of its ID, as shown by "board show --list".

Colors: %s
Categories: %s`, strings.Join(colors, ", "), strings.Join(categories, ", ")),
	}
	cmd.AddCommand(a.activityAddCmd())
	cmd.AddCommand(a.activityUpdateCmd())
	cmd.AddCommand(a.activityDeleteCmd())
	cmd.AddCommand(a.activityMoveCmd())
	return cmd
}

// cellRef is a resolved (day, slot) argument pair.
type cellRef struct {
	day  board.Day
	slot board.TimeSlot
}

func resolveCell(b board.Board, dayArg, slotArg string) (cellRef, error) {
	day, err := board.ParseDay(dayArg)
	if err != nil {
		return cellRef{}, err
	}
	slot, err := resolveSlot(b, slotArg)
	if err != nil {
		return cellRef{}, err
	}
	return cellRef{day: day, slot: slot}, nil
}

func (a *App) activityAddCmd() *cobra.Command {
	var week, description, colorName, category string

	cmd := &cobra.Command{
		Use:   "add <day> <slot> <title>",
		Short: "Add an activity to a cell",
		Long: `Add an activity to a (day, slot) cell.

Example:
  shcadule activity add monday 09:00 "Read chapter 3" --category study --color green`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			ed, err := a.editor(ctx, week)
			if err != nil {
				return err
			}
			cell, err := resolveCell(ed.Board(), args[0], args[1])
			if err != nil {
				return err
			}

			act, err := ed.AddActivity(ctx, cell.day, cell.slot.ID, board.ActivityInput{
				Title:       args[2],
				Description: description,
				Color:       board.Color(colorName),
				Category:    board.Category(category),
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s %s-%s %s\n",
				formatActivity(act.Title, act.Color), dayTitle(cell.day),
				cell.slot.StartTime, cell.slot.EndTime, formatMuted(shortID(act.ID)))
			return nil
		},
	}

	addWeekFlag(cmd, &week)
	cmd.Flags().StringVarP(&description, "description", "d", "", "Activity description")
	cmd.Flags().StringVarP(&colorName, "color", "c", "", "Color (default blue)")
	cmd.Flags().StringVar(&category, "category", "", "Category (default other)")
	return cmd
}

func (a *App) activityUpdateCmd() *cobra.Command {
	var week, title, description, colorName, category string

	cmd := &cobra.Command{
		Use:   "update <day> <slot> <activity>",
		Short: "Change an activity",
		Long: `Change an activity. Only the flags given are changed.

Example:
  shcadule activity update monday 09:00 1 --title "Read chapter 4"`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			ed, err := a.editor(ctx, week)
			if err != nil {
				return err
			}
			b := ed.Board()
			cell, err := resolveCell(b, args[0], args[1])
			if err != nil {
				return err
			}
			act, err := resolveActivity(b.Cell(cell.day, cell.slot.ID), args[2])
			if err != nil {
				return err
			}

			var u board.ActivityUpdate
			flags := cmd.Flags()
			if flags.Changed("title") {
				u.Title = &title
			}
			if flags.Changed("description") {
				u.Description = &description
			}
			if flags.Changed("color") {
				c := board.Color(colorName)
				u.Color = &c
			}
			if flags.Changed("category") {
				c := board.Category(category)
				u.Category = &c
			}
			if u == (board.ActivityUpdate{}) {
				return errors.New("nothing to update: pass --title, --description, --color or --category")
			}

			if err := ed.UpdateActivity(ctx, cell.day, cell.slot.ID, act.ID, u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s\n", formatMuted(shortID(act.ID)))
			return nil
		},
	}

	addWeekFlag(cmd, &week)
	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVarP(&colorName, "color", "c", "", "New color")
	cmd.Flags().StringVar(&category, "category", "", "New category")
	return cmd
}

func (a *App) activityDeleteCmd() *cobra.Command {
	var week string

	cmd := &cobra.Command{
		Use:     "delete <day> <slot> <activity>",
		Aliases: []string{"rm"},
		Short:   "Remove an activity",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			ed, err := a.editor(ctx, week)
			if err != nil {
				return err
			}
			b := ed.Board()
			cell, err := resolveCell(b, args[0], args[1])
			if err != nil {
				return err
			}
			act, err := resolveActivity(b.Cell(cell.day, cell.slot.ID), args[2])
			if err != nil {
				return err
			}

			if err := ed.DeleteActivity(ctx, cell.day, cell.slot.ID, act.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", act.Title)
			return nil
		},
	}

	addWeekFlag(cmd, &week)
	return cmd
}

func (a *App) activityMoveCmd() *cobra.Command {
	var week string

	cmd := &cobra.Command{
		Use:   "move <day> <slot> <activity> <to-day> <to-slot>",
		Short: "Move an activity to another cell",
		Long: `Move an activity to another (day, slot) cell of the same week.

Example:
  shcadule activity move monday 09:00 1 friday 14:00`,
		Args: cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			ed, err := a.editor(ctx, week)
			if err != nil {
				return err
			}
			b := ed.Board()
			from, err := resolveCell(b, args[0], args[1])
			if err != nil {
				return err
			}
			act, err := resolveActivity(b.Cell(from.day, from.slot.ID), args[2])
			if err != nil {
				return err
			}
			to, err := resolveCell(b, args[3], args[4])
			if err != nil {
				return err
			}

			if err := ed.MoveActivity(ctx, from.day, from.slot.ID, act.ID, to.day, to.slot.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s %s-%s\n",
				act.Title, dayTitle(to.day), to.slot.StartTime, to.slot.EndTime)
			return nil
		},
	}

	addWeekFlag(cmd, &week)
	return cmd
}
