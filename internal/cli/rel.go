package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newRelCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rel",
		Short: "Add, remove and list relations",
	}
	cmd.AddCommand(newRelAddCommand(opts))
	cmd.AddCommand(newRelRmCommand(opts))
	cmd.AddCommand(newRelEdgesCommand(opts, "from"))
	cmd.AddCommand(newRelEdgesCommand(opts, "to"))
	return cmd
}

func newRelAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <from> <to> <kind>",
		Short: "Add a relation edge",
		Long: `Add the edge from -> to of kind. With the materialized closure an
edge that would close a cycle is refused with CYCLE_DETECTED.

Example:
  fanidx rel add proj t1 child`,
		Args: cobra.ExactArgs(3),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			ctx := commandContext(cmd)
			from, to, kind := args[0], args[1], args[2]
			if err := s.mutate(ctx, func() error { return s.ix.InsertRelation(ctx, from, to, kind) }); err != nil {
				return s.out.Fail(err)
			}
			rel := map[string]string{"from_ident": from, "to_ident": to, "kind": kind}
			return s.out.Emit(rel, func(w io.Writer) {
				fmt.Fprintf(w, "Added %s -> %s (%s)\n", from, to, kind)
			})
		}),
	}
}

func newRelRmCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <from> <to> <kind>",
		Short: "Remove a relation edge",
		Args:  cobra.ExactArgs(3),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			ctx := commandContext(cmd)
			from, to, kind := args[0], args[1], args[2]
			var removed bool
			err := s.mutate(ctx, func() error {
				var err error
				removed, err = s.ix.DeleteRelation(ctx, from, to, kind)
				return err
			})
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Emit(map[string]bool{"removed": removed}, func(w io.Writer) {
				if removed {
					fmt.Fprintf(w, "Removed %s -> %s (%s)\n", from, to, kind)
				} else {
					fmt.Fprintf(w, "No relation %s -> %s (%s)\n", from, to, kind)
				}
			})
		}),
	}
}

// newRelEdgesCommand lists direct neighbours; side is "from" or "to".
func newRelEdgesCommand(opts *RootOptions, side string) *cobra.Command {
	short := "List the direct successors of an item"
	if side == "to" {
		short = "List the direct predecessors of an item"
	}
	return &cobra.Command{
		Use:   side + " <ident> <kind>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			ctx := commandContext(cmd)
			list := s.ix.EdgesFrom
			if side == "to" {
				list = s.ix.EdgesTo
			}
			idents, err := list(ctx, args[0], args[1])
			if err != nil {
				return s.out.Fail(err)
			}
			if idents == nil {
				idents = []string{}
			}
			return s.out.Emit(idents, func(w io.Writer) { writeLines(w, idents) })
		}),
	}
}
