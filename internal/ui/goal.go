package ui

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/shcadule/internal/goals"
)

func (a *App) goalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "goal",
		Aliases: []string{"goals"},
		Short:   "Track monthly, quarterly, half-year and yearly goals",
		Long: `Goals have a title, an optional description and a checklist.

Goals are numbered across all categories in the order 'goal list' shows
them, so 'goal check 3 2' ticks the second item of the third goal.`,
	}

	cmd.AddCommand(a.goalListCmd())
	cmd.AddCommand(a.goalAddCmd())
	cmd.AddCommand(a.goalUpdateCmd())
	cmd.AddCommand(a.goalItemCmd())
	cmd.AddCommand(a.goalCheckCmd())
	cmd.AddCommand(a.goalDeleteCmd())
	return cmd
}

func (a *App) goalListCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List goals with their checklist progress",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.user()
			if err != nil {
				return err
			}
			only := goals.Category("")
			if category != "" {
				if only, err = goals.ParseCategory(category); err != nil {
					return err
				}
			}
			all, err := a.goals.All(context.Background(), userID)
			if err != nil {
				return err
			}
			printGoals(cmd.OutOrStdout(), all, only)
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Only this category: month, quarter, half or year")
	return cmd
}

func (a *App) goalAddCmd() *cobra.Command {
	var category, description string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a goal",
		Long: `Add a goal. Words after the command form the title.

Example:
  shcadule goal add Run a half marathon --category half -d "three runs a week"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := a.user()
			if err != nil {
				return err
			}
			g, err := a.goals.Add(context.Background(), userID, goals.Category(category), strings.Join(args, " "), description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %q to %s %s\n", g.Title, strings.ToLower(g.Category.Label()), formatMuted(shortID(g.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", string(goals.Month), "month, quarter, half or year")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Optional description")
	return cmd
}

func (a *App) goalUpdateCmd() *cobra.Command {
	var title, description, category string

	cmd := &cobra.Command{
		Use:   "update <goal>",
		Short: "Change a goal's title, description or category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var u goals.Update
			if cmd.Flags().Changed("title") {
				u.Title = &title
			}
			if cmd.Flags().Changed("description") {
				u.Description = &description
			}
			if cmd.Flags().Changed("category") {
				c := goals.Category(category)
				u.Category = &c
			}

			userID, g, err := a.goalRef(args[0])
			if err != nil {
				return err
			}
			if err := a.goals.Update(context.Background(), userID, g.ID, u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %q\n", g.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVarP(&category, "category", "c", "", "New category")
	return cmd
}

func (a *App) goalItemCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "item <goal> <text>",
		Short: "Add a checklist item to a goal",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, g, err := a.goalRef(args[0])
			if err != nil {
				return err
			}
			text := strings.Join(args[1:], " ")
			if err := a.goals.AddItem(context.Background(), userID, g.ID, text); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added item #%d to %q\n", len(g.Checklist)+1, g.Title)
			return nil
		},
	}
}

func (a *App) goalCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <goal> <item>",
		Short: "Tick a checklist item, or untick it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: item must be a number, got %q", goals.ErrItemNotFound, args[1])
			}
			userID, g, err := a.goalRef(args[0])
			if err != nil {
				return err
			}
			item, err := a.goals.ToggleItem(context.Background(), userID, g.ID, n-1)
			if err != nil {
				return err
			}
			mark := "[x]"
			if !item.Completed {
				mark = "[ ]"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mark, item.Text)
			return nil
		},
	}
}

func (a *App) goalDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <goal>",
		Aliases: []string{"rm"},
		Short:   "Delete a goal",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, g, err := a.goalRef(args[0])
			if err != nil {
				return err
			}
			if err := a.goals.Delete(context.Background(), userID, g.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", g.Title)
			return nil
		},
	}
}

// goalRef resolves a goal by its number in 'goal list' or an ID prefix.
func (a *App) goalRef(ref string) (string, goals.Goal, error) {
	userID, err := a.user()
	if err != nil {
		return "", goals.Goal{}, err
	}
	all, err := a.goals.All(context.Background(), userID)
	if err != nil {
		return "", goals.Goal{}, err
	}
	g, err := resolveRef(flattenGoals(all), ref, func(g goals.Goal) string { return g.ID }, goals.ErrGoalNotFound)
	if err != nil {
		return "", goals.Goal{}, err
	}
	return userID, g, nil
}

// flattenGoals orders goals by category, then creation.
func flattenGoals(all map[goals.Category][]goals.Goal) []goals.Goal {
	var out []goals.Goal
	for _, c := range goals.Categories {
		out = append(out, all[c]...)
	}
	return out
}

// printGoals prints every category, or only one when only is set. Numbers
// stay the global ones so they can be passed back to other goal commands.
func printGoals(w io.Writer, all map[goals.Category][]goals.Goal, only goals.Category) {
	n := 0
	for _, c := range goals.Categories {
		list := all[c]
		if only != "" && c != only {
			n += len(list)
			continue
		}
		fmt.Fprintln(w, formatHeader(c.Label()))
		if len(list) == 0 {
			fmt.Fprintln(w, formatMuted("  none"))
		}
		for _, g := range list {
			n++
			done := 0
			for _, it := range g.Checklist {
				if it.Completed {
					done++
				}
			}
			fmt.Fprintf(w, "  %2d. %s  %s\n", n, g.Title, progressBar(done, len(g.Checklist), 10))
			if g.Description != "" {
				fmt.Fprintf(w, "      %s\n", formatMuted(g.Description))
			}
			for i, it := range g.Checklist {
				box := "[ ]"
				if it.Completed {
					box = "[x]"
				}
				fmt.Fprintf(w, "      %d. %s %s\n", i+1, box, it.Text)
			}
		}
		fmt.Fprintln(w)
	}
}
