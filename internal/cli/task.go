package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkrupp/taskmgr/internal/domain"
	"github.com/mkrupp/taskmgr/internal/svc/tasksvc"
)

func newAddCmd(app *App) *cobra.Command {
	var assignee, title, description, due string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task and assign it to a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := app.Tasks.Add(cmd.Context(), assignee, title, description, due); err != nil {
				return err
			}

			outln(cmd, "Task successfully added.")

			return nil
		},
	}

	cmd.Flags().StringVar(&assignee, "assign", "", "Username the task is assigned to")
	cmd.Flags().StringVar(&title, "title", "", "Title of the task")
	cmd.Flags().StringVar(&description, "description", "", "Description of the task")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")

	for _, name := range []string{"assign", "title", "due"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func newListCmd(app *App) *cobra.Command {
	var mine bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all tasks, or only your own with --mine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view := app.view(mine)
			if len(view) == 0 {
				outln(cmd, "No tasks found.")

				return nil
			}

			writeTasks(cmd, view)

			return nil
		},
	}

	cmd.Flags().BoolVar(&mine, "mine", false, "Only list tasks assigned to you")

	return cmd
}

func newOverdueCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "List incomplete tasks past their due date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view := app.Tasks.Overdue(app.Tasks.Today())
			if len(view) == 0 {
				outln(cmd, "No overdue tasks.")

				return nil
			}

			writeTasks(cmd, view)

			return nil
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	var (
		mine     bool
		assignee string
		due      string
		complete bool
	)

	cmd := &cobra.Command{
		Use:   "edit <number>",
		Short: "Reassign, reschedule or complete a task",
		Long: `Edit the task shown as <number> by "list" (or "list --mine" with --mine).
A number of -1 cancels; pass it after "--", e.g. "edit -- -1".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("%w: %q is not a task number", domain.ErrIndexOutOfRange, args[0])
			}

			selected, ok, err := tasksvc.Select(app.view(mine), number)
			if err != nil {
				return err
			}

			if !ok {
				outln(cmd, "Edit cancelled.")

				return nil
			}

			ctx := cmd.Context()

			switch {
			case complete:
				if _, err := app.Tasks.Complete(ctx, selected.ID); err != nil {
					return err
				}

				outln(cmd, "This task has been marked as complete.")
			case cmd.Flags().Changed("assign"):
				updated, err := app.Tasks.Reassign(ctx, selected.ID, assignee)
				if err != nil {
					return err
				}

				outf(cmd, "Task has been allocated to %s\n", updated.Username)
			default:
				if _, err := app.Tasks.Reschedule(ctx, selected.ID, due); err != nil {
					return err
				}

				outln(cmd, "Due date updated.")
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&mine, "mine", false, "Number tasks as in \"list --mine\"")
	cmd.Flags().StringVar(&assignee, "assign", "", "Assign the task to another user")
	cmd.Flags().StringVar(&due, "due", "", "New due date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&complete, "complete", false, "Mark the task as complete")
	cmd.MarkFlagsMutuallyExclusive("assign", "due", "complete")
	cmd.MarkFlagsOneRequired("assign", "due", "complete")

	return cmd
}

// view returns either the whole task store or the session user's tasks.
func (a *App) view(mine bool) []domain.Task {
	if mine {
		return a.Tasks.TasksFor(a.session.Username)
	}

	return a.Tasks.All()
}

func writeTasks(cmd *cobra.Command, tasks []domain.Task) {
	for i, t := range tasks {
		completed := "No"
		if t.Completed {
			completed = "Yes"
		}

		outf(cmd, "%d. Task:\t\t%s\n", i+1, t.Title)
		outf(cmd, "   Assigned to:\t\t%s\n", t.Username)
		outf(cmd, "   Date assigned:\t%s\n", t.AssignedDate)
		outf(cmd, "   Due date:\t\t%s\n", t.DueDate)
		outf(cmd, "   Task completed:\t%s\n", completed)
		outf(cmd, "   Task description:\n     %s\n\n", t.Description)
	}
}
