package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/shcadule/internal/board"
)

const defaultSlotMinutes = 60

func (a *App) slotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slot",
		Short: "Add, change and remove time slots",
		Long: `Time slots are shared by all seven days of a board.

A slot is referenced by its position in "board show" (1, 2, ...),
its start time (09:00), or a prefix of its ID.`,
	}
	cmd.AddCommand(a.slotAddCmd())
	cmd.AddCommand(a.slotUpdateCmd())
	cmd.AddCommand(a.slotDeleteCmd())
	return cmd
}

// editor loads the board for the --week value.
func (a *App) editor(ctx context.Context, week string) (*board.Editor, error) {
	userID, err := a.user()
	if err != nil {
		return nil, err
	}
	id, err := a.resolveWeek(week)
	if err != nil {
		return nil, err
	}
	return a.boards.Load(ctx, userID, id)
}

func (a *App) slotAddCmd() *cobra.Command {
	var week string

	cmd := &cobra.Command{
		Use:   "add <start> [end]",
		Short: "Add a time slot",
		Long: `Add a time slot to a week. Times are HH:MM. An end time at or before the
start time runs past midnight. Without an end time the slot lasts one hour.

Adding the first slot to an empty board also fills the following weeks
with the same slots.

Example:
  shcadule slot add 09:00 10:30 --week 2025-W10`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			ed, err := a.editor(ctx, week)
			if err != nil {
				return err
			}

			end := defaultSlotEnd(args[0])
			if len(args) == 2 {
				end = args[1]
			}
			first := len(ed.Board().TimeSlots) == 0
			slot, err := ed.AddTimeSlot(ctx, args[0], end)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Added slot %s-%s to %s %s\n",
				slot.StartTime, slot.EndTime, ed.WeekID(), formatMuted(shortID(slot.ID)))
			if first {
				fmt.Fprintf(w, "%s\n", formatWarn(fmt.Sprintf("Filling the next %d weeks with this slot layout.", a.cfg.Board.WeeksAhead)))
			}
			return nil
		},
	}

	addWeekFlag(cmd, &week)
	return cmd
}

func (a *App) slotUpdateCmd() *cobra.Command {
	var week, start, end string

	cmd := &cobra.Command{
		Use:   "update <slot>",
		Short: "Change a time slot's start or end time",
		Long: `Change a time slot. Only the flags given are changed.

Example:
  shcadule slot update 09:00 --end 11:00`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			ed, err := a.editor(ctx, week)
			if err != nil {
				return err
			}
			slot, err := resolveSlot(ed.Board(), args[0])
			if err != nil {
				return err
			}

			var u board.SlotUpdate
			if cmd.Flags().Changed("start") {
				u.StartTime = &start
			}
			if cmd.Flags().Changed("end") {
				u.EndTime = &end
			}
			if u.StartTime == nil && u.EndTime == nil {
				return errors.New("nothing to update: pass --start or --end")
			}

			if err := ed.UpdateTimeSlot(ctx, slot.ID, u); err != nil {
				return err
			}
			updated, _ := ed.Board().Slot(slot.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Updated slot %s-%s\n", updated.StartTime, updated.EndTime)
			return nil
		},
	}

	addWeekFlag(cmd, &week)
	cmd.Flags().StringVar(&start, "start", "", "New start time (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "New end time (HH:MM)")
	return cmd
}

func (a *App) slotDeleteCmd() *cobra.Command {
	var week string

	cmd := &cobra.Command{
		Use:     "delete <slot>",
		Aliases: []string{"rm"},
		Short:   "Remove a time slot and every activity in it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			ed, err := a.editor(ctx, week)
			if err != nil {
				return err
			}
			slot, err := resolveSlot(ed.Board(), args[0])
			if err != nil {
				return err
			}

			if err := ed.DeleteTimeSlot(ctx, slot.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted slot %s-%s\n", slot.StartTime, slot.EndTime)
			return nil
		},
	}

	addWeekFlag(cmd, &week)
	return cmd
}

// defaultSlotEnd is one hour after start, wrapping past midnight.
func defaultSlotEnd(start string) string {
	return board.MinutesToTime((board.TimeToMinutes(start) + defaultSlotMinutes) % (24 * 60))
}
