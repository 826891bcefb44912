package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/notemanager/notesync/pkg/filter"
	"github.com/notemanager/notesync/pkg/models"
)

var (
	addColor string
	addDue   string

	listFilters []string
)

var addCmd = &cobra.Command{
	Use:   "add <content>",
	Short: "Create a note; --due turns it into a task and opens a calendar link",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.restore(cmd.Context()); err != nil {
			return err
		}

		color := models.NoteColor(addColor)
		if !validColor(color) {
			return fmt.Errorf("unknown color %q (one of: %s)", addColor, colorNames())
		}
		if addDue != "" {
			if _, err := time.Parse(models.EndDateLayout, addDue); err != nil {
				return fmt.Errorf("invalid --due %q, want YYYY-MM-DD", addDue)
			}
		}

		note := a.store.Add(strings.Join(args, " "), color, addDue)
		if note == nil {
			return fmt.Errorf("note content must not be empty")
		}
		fmt.Printf("Added %s\n", note.ID)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, optionally narrowed to categories",
	Long: `List notes fetched from the server.

Repeat --filter (or comma-join values) to select categories: general,
tasks, pending, done. No filter shows everything; the per-category
counts always cover the full collection.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.restore(cmd.Context()); err != nil {
			return err
		}
		if err := a.store.Load(cmd.Context()); err != nil {
			return err
		}
		if !a.session.Active() {
			return errNotSignedIn // credential was rejected during Load
		}

		var set filter.Set
		for _, raw := range listFilters {
			for _, name := range strings.Split(raw, ",") {
				tag, ok := filter.ParseTag(strings.TrimSpace(name))
				if !ok {
					return fmt.Errorf("unknown filter %q", name)
				}
				set.Toggle(tag)
			}
		}

		all := a.store.Notes()
		counts := filter.Count(all)
		fmt.Printf("general %d | tasks %d | pending %d | done %d\n\n",
			counts.General, counts.Tasks, counts.Pending, counts.Done)

		visible := set.Visible(all)
		if len(visible) == 0 {
			fmt.Println("No notes found")
			return nil
		}
		for _, n := range visible {
			printNote(n)
		}
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.restore(cmd.Context()); err != nil {
			return err
		}
		a.store.Remove(args[0])
		fmt.Printf("Removed %s\n", args[0])
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <id> <active|pending|done>",
	Short: "Set a note's workflow status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		status := models.NoteStatus(args[1])
		if !status.Valid() {
			return fmt.Errorf("unknown status %q", args[1])
		}

		if err := a.restore(cmd.Context()); err != nil {
			return err
		}
		a.store.SetStatus(args[0], status)
		fmt.Printf("Marked %s %s\n", args[0], status)
		return nil
	},
}

var countsCmd = &cobra.Command{
	Use:   "counts",
	Short: "Show per-category note counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.restore(cmd.Context()); err != nil {
			return err
		}
		if err := a.store.Load(cmd.Context()); err != nil {
			return err
		}
		if !a.session.Active() {
			return errNotSignedIn
		}

		counts := filter.Count(a.store.Notes())
		for _, tag := range filter.Tags() {
			fmt.Printf("%-8s %d\n", tag, counts.Of(tag))
		}
		return nil
	},
}

func printNote(n models.Note) {
	due := ""
	if n.EndDate != "" {
		due = " due " + n.EndDate
	}
	fmt.Printf("%s  %-7s %-7s %s%s\n",
		n.ID, n.Status, n.Color, n.Content, due)
}

func validColor(c models.NoteColor) bool {
	for _, known := range models.Colors() {
		if c == known {
			return true
		}
	}
	return false
}

func colorNames() string {
	names := make([]string, 0, len(models.Colors()))
	for _, c := range models.Colors() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

func init() {
	addCmd.Flags().StringVar(&addColor, "color", string(models.ColorWhite), "display color")
	addCmd.Flags().StringVar(&addDue, "due", "", "due date (YYYY-MM-DD); makes the note a task")
	listCmd.Flags().StringSliceVar(&listFilters, "filter", nil, "category filter, repeatable")
	rootCmd.AddCommand(addCmd, listCmd, rmCmd, statusCmd, countsCmd)
}
