package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newRebuildCommand(opts *RootOptions) *cobra.Command {
	var dirty bool

	cmd := &cobra.Command{
		Use:   "rebuild [kind]",
		Short: "Recompute relation closures",
		Long: `Recompute the closure of one kind from its base edges, or of every
kind when none is named. With --dirty, rebuild only the kinds left stale by
deferred deletes.

Examples:
  fanidx rebuild child
  fanidx rebuild --dirty`,
		Args: cobra.MaximumNArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			if dirty && len(args) > 0 {
				return NewExitError(ExitCommandError, "--dirty does not take a kind")
			}
			ctx := commandContext(cmd)
			var kinds []string
			err := s.mutate(ctx, func() error {
				var err error
				switch {
				case len(args) == 1:
					kinds = args
					err = s.ix.RebuildClosure(ctx, args[0])
				case dirty:
					kinds, err = s.ix.RebuildDirty(ctx)
				default:
					kinds, err = s.ix.RebuildAll(ctx)
				}
				return err
			})
			if err != nil {
				return s.out.Fail(err)
			}
			if kinds == nil {
				kinds = []string{}
			}
			return s.out.Emit(map[string][]string{"rebuilt": kinds}, func(w io.Writer) {
				if len(kinds) == 0 {
					fmt.Fprintln(w, "Nothing to rebuild")
					return
				}
				fmt.Fprintf(w, "Rebuilt %s\n", strings.Join(kinds, ", "))
			})
		}),
	}

	cmd.Flags().BoolVar(&dirty, "dirty", false, "rebuild only kinds marked dirty")

	return cmd
}

func newCheckCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <kind>",
		Short: "Report cycles and closure consistency for a kind",
		Long: `Find every cycle among the kind's edges and, for the materialized
closure, compare the stored table against the closure derived from the
edges. Exits 1 when a cycle or a mismatch is found.`,
		Args: cobra.ExactArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			rep, err := s.ix.CheckClosure(commandContext(cmd), args[0])
			if err != nil {
				return s.out.Fail(err)
			}
			if err := s.out.Emit(rep, func(w io.Writer) {
				for _, c := range rep.Cycles {
					fmt.Fprintf(w, "cycle: %s\n", strings.Join(c.Path, " -> "))
				}
				if rep.Dirty {
					fmt.Fprintf(w, "%s: dirty, awaiting rebuild\n", rep.Kind)
				}
				if !rep.Consistent {
					fmt.Fprintf(w, "%s: stored closure differs from edges\n", rep.Kind)
				}
				if len(rep.Cycles) == 0 && rep.Consistent {
					fmt.Fprintf(w, "%s: ok\n", rep.Kind)
				}
			}); err != nil {
				return err
			}
			switch {
			case len(rep.Cycles) > 0:
				return NewExitError(ExitFailure, fmt.Sprintf("%d cycle(s) in %q", len(rep.Cycles), rep.Kind))
			case !rep.Consistent:
				return NewExitError(ExitFailure, fmt.Sprintf("closure of %q is inconsistent", rep.Kind))
			}
			return nil
		}),
	}
}
