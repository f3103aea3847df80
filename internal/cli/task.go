package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/fanling-index/internal/model"
	"github.com/roach88/fanling-index/internal/tasks"
)

// TaskPutOptions holds flags for the task put command.
type TaskPutOptions struct {
	ShowAfter string
	Deadline  string
	Context   string
	Priority  int
	Blocked   bool
}

func newTaskCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Schedule and transition tasks",
	}
	cmd.AddCommand(newTaskPutCommand(opts))
	cmd.AddCommand(newTaskTransitionCommand(opts, "close", "Close a task"))
	cmd.AddCommand(newTaskTransitionCommand(opts, "reopen", "Reopen a closed task"))
	cmd.AddCommand(newTaskTransitionCommand(opts, "block", "Mark a task blocked"))
	cmd.AddCommand(newTaskTransitionCommand(opts, "unblock", "Clear a task's blocked mark"))
	cmd.AddCommand(newTaskShowCommand(opts))
	return cmd
}

func newTaskPutCommand(opts *RootOptions) *cobra.Command {
	putOpts := &TaskPutOptions{}

	cmd := &cobra.Command{
		Use:   "put <ident>",
		Short: "Insert or replace the task of an item",
		Long: `Insert or replace the task record of an existing item. The task starts
open. --show-after and --deadline accept RFC3339, YYYY-MM-DD or phrases
like "tomorrow" and "next friday 9am".

Example:
  fanidx task put t1 --deadline "next friday" --priority 3 --context home`,
		Args: cobra.ExactArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			now := s.clock.Now()
			showAfter := now
			if putOpts.ShowAfter != "" {
				t, err := parseWhen(putOpts.ShowAfter, now)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid --show-after", err)
				}
				showAfter = t
			}
			task := tasks.New(args[0], showAfter)
			if putOpts.Deadline != "" {
				d, err := parseWhen(putOpts.Deadline, now)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid --deadline", err)
				}
				task.Deadline = &d
			}
			task.Context = putOpts.Context
			task.Priority = putOpts.Priority
			task.Blocked = putOpts.Blocked

			ctx := commandContext(cmd)
			if err := s.mutate(ctx, func() error { return s.ix.PutTask(ctx, task) }); err != nil {
				return s.out.Fail(err)
			}
			return s.out.Emit(task, func(w io.Writer) { writeTask(w, task) })
		}),
	}

	cmd.Flags().StringVar(&putOpts.ShowAfter, "show-after", "", "hide the task until this time (default now)")
	cmd.Flags().StringVar(&putOpts.Deadline, "deadline", "", "deadline")
	cmd.Flags().StringVar(&putOpts.Context, "context", "", "context item ident")
	cmd.Flags().IntVar(&putOpts.Priority, "priority", model.DefaultPriority, "priority, lower first")
	cmd.Flags().BoolVar(&putOpts.Blocked, "blocked", false, "mark the task blocked")

	return cmd
}

var pastTense = map[string]string{
	"close":   "closed",
	"reopen":  "reopened",
	"block":   "blocked",
	"unblock": "unblocked",
}

// taskChange is the JSON shape of a task transition.
type taskChange struct {
	Task    model.Task `json:"task"`
	Changed bool       `json:"changed"`
}

func newTaskTransitionCommand(opts *RootOptions, verb, short string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <ident>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			ctx := commandContext(cmd)
			ident := args[0]
			var res taskChange
			err := s.mutate(ctx, func() error {
				var err error
				switch verb {
				case "close":
					res.Task, res.Changed, err = s.ix.CloseTask(ctx, ident)
				case "reopen":
					res.Task, res.Changed, err = s.ix.ReopenTask(ctx, ident)
				case "block":
					res.Task, res.Changed, err = s.ix.SetBlocked(ctx, ident, true)
				case "unblock":
					res.Task, res.Changed, err = s.ix.SetBlocked(ctx, ident, false)
				default:
					err = fmt.Errorf("unknown task transition %q", verb)
				}
				return err
			})
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Emit(res, func(w io.Writer) {
				if res.Changed {
					fmt.Fprintf(w, "%s: %s\n", ident, pastTense[verb])
				} else {
					fmt.Fprintf(w, "%s: unchanged\n", ident)
				}
			})
		}),
	}
}

func newTaskShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <ident>",
		Short: "Print a task",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			task, err := s.ix.GetTask(commandContext(cmd), args[0])
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Emit(task, func(w io.Writer) { writeTask(w, task) })
		}),
	}
}
