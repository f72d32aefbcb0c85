package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/shcadule/internal/daily"
	"github.com/javiermolinar/shcadule/internal/dateutil"
)

func (a *App) dailyCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:     "daily",
		Aliases: []string{"today"},
		Short:   "Show and edit a day's task list",
		Long: fmt.Sprintf(`Keep a to-do list for one day, up to %d tasks.

Without a subcommand the list for --date (default today) is printed.
Tasks are referenced by their number in that list or an ID prefix.`, daily.MaxTasks),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.showDaily(cmd, date)
		},
	}
	addDateFlag(cmd, &date)

	cmd.AddCommand(a.dailyShowCmd())
	cmd.AddCommand(a.dailyAddCmd())
	cmd.AddCommand(a.dailyDoneCmd())
	cmd.AddCommand(a.dailyUpdateCmd())
	cmd.AddCommand(a.dailyDeleteCmd())
	return cmd
}

func addDateFlag(cmd *cobra.Command, date *string) {
	cmd.Flags().StringVar(date, "date", "", "Day: YYYY-MM-DD, today, tomorrow, yesterday, monday... (default: today)")
}

// resolveDay parses a --date value relative to now.
func (a *App) resolveDay(ref string) (time.Time, error) {
	day, err := dateutil.ParseRelativeDate(ref, a.now())
	if err != nil {
		return time.Time{}, err
	}
	return day, nil
}

func (a *App) showDaily(cmd *cobra.Command, date string) error {
	userID, err := a.user()
	if err != nil {
		return err
	}
	day, err := a.resolveDay(date)
	if err != nil {
		return err
	}
	l, err := a.daily.Get(context.Background(), userID, day)
	if err != nil {
		return err
	}
	printDaily(cmd.OutOrStdout(), l, a.calendar.Format(day))
	return nil
}

func (a *App) dailyShowCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a day's tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.showDaily(cmd, date)
		},
	}

	addDateFlag(cmd, &date)
	return cmd
}

func (a *App) dailyAddCmd() *cobra.Command {
	var date, note string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task to a day",
		Long: `Add a task. Words after the command form the title.

Example:
  shcadule daily add Call the bank --note "ask about the card" --date tomorrow`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := a.user()
			if err != nil {
				return err
			}
			day, err := a.resolveDay(date)
			if err != nil {
				return err
			}
			task, err := a.daily.Add(context.Background(), userID, day, strings.Join(args, " "), note)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %q to %s %s\n", task.Title, daily.DateKey(day), formatMuted(shortID(task.ID)))
			return nil
		},
	}

	addDateFlag(cmd, &date)
	cmd.Flags().StringVarP(&note, "note", "n", "", "Optional note")
	return cmd
}

func (a *App) dailyDoneCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:     "done <task>",
		Aliases: []string{"toggle"},
		Short:   "Mark a task done, or not done again",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, day, task, err := a.dailyTask(date, args[0])
			if err != nil {
				return err
			}
			task, err = a.daily.Toggle(context.Background(), userID, day, task.ID)
			if err != nil {
				return err
			}
			state := "done"
			if !task.Completed {
				state = "not done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %q %s\n", task.Title, state)
			return nil
		},
	}

	addDateFlag(cmd, &date)
	return cmd
}

func (a *App) dailyUpdateCmd() *cobra.Command {
	var date, title, note string

	cmd := &cobra.Command{
		Use:   "update <task>",
		Short: "Change a task's title or note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var u daily.TaskUpdate
			if cmd.Flags().Changed("title") {
				u.Title = &title
			}
			if cmd.Flags().Changed("note") {
				u.Note = &note
			}
			if u.Title == nil && u.Note == nil {
				return fmt.Errorf("nothing to update: pass --title or --note")
			}

			userID, day, task, err := a.dailyTask(date, args[0])
			if err != nil {
				return err
			}
			task, err = a.daily.Update(context.Background(), userID, day, task.ID, u)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %q\n", task.Title)
			return nil
		},
	}

	addDateFlag(cmd, &date)
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&note, "note", "n", "", "New note")
	return cmd
}

func (a *App) dailyDeleteCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:     "delete <task>",
		Aliases: []string{"rm"},
		Short:   "Remove a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, day, task, err := a.dailyTask(date, args[0])
			if err != nil {
				return err
			}
			if err := a.daily.Delete(context.Background(), userID, day, task.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", task.Title)
			return nil
		},
	}

	addDateFlag(cmd, &date)
	return cmd
}

// dailyTask resolves the user, the day and a task reference on that day.
func (a *App) dailyTask(date, ref string) (string, time.Time, daily.Task, error) {
	userID, err := a.user()
	if err != nil {
		return "", time.Time{}, daily.Task{}, err
	}
	day, err := a.resolveDay(date)
	if err != nil {
		return "", time.Time{}, daily.Task{}, err
	}
	l, err := a.daily.Get(context.Background(), userID, day)
	if err != nil {
		return "", time.Time{}, daily.Task{}, err
	}
	task, err := resolveRef(l.Tasks, ref, func(t daily.Task) string { return t.ID }, daily.ErrTaskNotFound)
	if err != nil {
		return "", time.Time{}, daily.Task{}, err
	}
	return userID, day, task, nil
}

func printDaily(w io.Writer, l daily.List, label string) {
	fmt.Fprintf(w, "%s  %s\n", formatHeader(l.Date), formatMuted(label))
	if len(l.Tasks) == 0 {
		fmt.Fprintln(w, "No tasks yet. Add one with 'shcadule daily add <title>'.")
		return
	}
	fmt.Fprintf(w, "  %s  %d/%d tasks\n\n", progressBar(l.Done(), len(l.Tasks), 20), len(l.Tasks), daily.MaxTasks)
	for i, t := range l.Tasks {
		box := "[ ]"
		if t.Completed {
			box = "[x]"
		}
		fmt.Fprintf(w, "  %2d. %s %s\n", i+1, box, t.Title)
		if t.Note != "" {
			fmt.Fprintf(w, "         %s\n", formatMuted(t.Note))
		}
	}
}
