package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/fanling-index/internal/model"
)

// ItemPutOptions holds flags for the item put command.
type ItemPutOptions struct {
	Type     string
	Name     string
	Parent   string
	Sort     string
	Archived bool
	Classify string
	Special  []string
	Targeted bool
}

func newInitCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the index database",
		Long: `Create the index database if it does not exist and print its ident
prefix and closure strategy. Opening an existing database is harmless.

Example:
  fanidx init --db ./fanling.db`,
		Args: cobra.NoArgs,
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			info := map[string]string{
				"database":     s.cfg.Database,
				"ident_prefix": s.ix.IdentPrefix(),
				"strategy":     s.ix.Strategy(),
			}
			return s.out.Emit(info, func(w io.Writer) {
				fmt.Fprintf(w, "Initialized %s (prefix %s, %s closure)\n", s.cfg.Database, s.ix.IdentPrefix(), s.ix.Strategy())
			})
		}),
	}
}

func newItemCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Create, remove and inspect items",
	}
	cmd.AddCommand(newItemPutCommand(opts))
	cmd.AddCommand(newItemRmCommand(opts))
	cmd.AddCommand(newItemShowCommand(opts))
	cmd.AddCommand(newItemNewIdentCommand(opts))
	return cmd
}

func newItemPutCommand(opts *RootOptions) *cobra.Command {
	putOpts := &ItemPutOptions{}

	cmd := &cobra.Command{
		Use:   "put <ident>",
		Short: "Insert or replace an item",
		Long: `Insert or replace an item. The parent must already exist and may not
be the item itself or one of its descendants.

Examples:
  fanidx item put proj --name "Project" --special parent
  fanidx item put t1 --parent proj --sort 010 --name "First step"`,
		Args: cobra.ExactArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			it := model.Item{
				Ident:     args[0],
				TypeName:  putOpts.Type,
				Name:      putOpts.Name,
				Parent:    putOpts.Parent,
				Sort:      putOpts.Sort,
				Lifecycle: model.LifecycleFromOpen(!putOpts.Archived),
				Classify:  model.Classify(putOpts.Classify),
				Targeted:  putOpts.Targeted,
			}
			for _, name := range putOpts.Special {
				k, err := model.ParseSpecialKind(name)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid --special", err)
				}
				it.Special = it.Special.With(k)
			}
			if it.Classify != "" && !it.Classify.Known() {
				s.logger.Warn("unrecognised classification kept as-is", "ident", it.Ident, "classify", it.Classify)
			}

			ctx := commandContext(cmd)
			var stored model.Item
			err := s.mutate(ctx, func() error {
				var err error
				stored, err = s.ix.PutItem(ctx, it)
				return err
			})
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Emit(stored, func(w io.Writer) { writeItem(w, stored) })
		}),
	}

	cmd.Flags().StringVar(&putOpts.Type, "type", "note", "item type name")
	cmd.Flags().StringVar(&putOpts.Name, "name", "", "display name")
	cmd.Flags().StringVar(&putOpts.Parent, "parent", "", "parent ident (empty for a root)")
	cmd.Flags().StringVar(&putOpts.Sort, "sort", "", "sort key among siblings")
	cmd.Flags().BoolVar(&putOpts.Archived, "archived", false, "store the item archived")
	cmd.Flags().StringVar(&putOpts.Classify, "classify", "", "classification (default normal)")
	cmd.Flags().StringSliceVar(&putOpts.Special, "special", nil, "special flags: parent, context")
	cmd.Flags().BoolVar(&putOpts.Targeted, "targeted", false, "mark the item targeted")

	return cmd
}

func newItemRmCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <ident>",
		Short: "Delete an item and its task",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			ctx := commandContext(cmd)
			if err := s.mutate(ctx, func() error { return s.ix.DeleteItem(ctx, args[0]) }); err != nil {
				return s.out.Fail(err)
			}
			return s.out.Emit(map[string]string{"deleted": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted %s\n", args[0])
			})
		}),
	}
}

// itemView is the JSON shape of item show.
type itemView struct {
	Item model.Item  `json:"item"`
	Task *model.Task `json:"task,omitempty"`
}

func newItemShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <ident>",
		Short: "Print an item and its task",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			ctx := commandContext(cmd)
			it, err := s.ix.GetItem(ctx, args[0])
			if err != nil {
				return s.out.Fail(err)
			}
			view := itemView{Item: it}
			task, err := s.ix.GetTask(ctx, args[0])
			switch {
			case err == nil:
				view.Task = &task
			case !model.IsNotFound(err):
				return s.out.Fail(err)
			}

			return s.out.Emit(view, func(w io.Writer) {
				writeItem(w, view.Item)
				if view.Task != nil {
					fmt.Fprintln(w)
					writeTask(w, *view.Task)
				}
			})
		}),
	}
}

func newItemNewIdentCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "new-ident",
		Short: "Allocate a fresh ident",
		Args:  cobra.NoArgs,
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			ctx := commandContext(cmd)
			var ident string
			err := s.mutate(ctx, func() error {
				var err error
				ident, err = s.ix.NewIdent(ctx)
				return err
			})
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Emit(map[string]string{"ident": ident}, func(w io.Writer) {
				fmt.Fprintln(w, ident)
			})
		}),
	}
}
