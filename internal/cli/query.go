package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/fanling-index/internal/hierarchy"
	"github.com/roach88/fanling-index/internal/index"
	"github.com/roach88/fanling-index/internal/model"
)

// listing is the JSON shape of ls and children.
type listing struct {
	Entries     []hierarchy.Entry `json:"entries"`
	Fingerprint string            `json:"fingerprint"`
}

func newListing(entries []hierarchy.Entry) (listing, error) {
	if entries == nil {
		entries = []hierarchy.Entry{}
	}
	fp, err := index.ListingFingerprint(entries)
	if err != nil {
		return listing{}, err
	}
	return listing{Entries: entries, Fingerprint: fp}, nil
}

func newLsCommand(opts *RootOptions) *cobra.Command {
	var (
		all   bool
		under string
	)

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List items in hierarchy order",
		Long: `List items depth-first, siblings ordered by (sort, ident). Archived
items are hidden unless --all is given; their live descendants are still
listed in place.

Examples:
  fanidx ls
  fanidx ls --all --under proj`,
		Args: cobra.NoArgs,
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			ctx := commandContext(cmd)
			var (
				entries []hierarchy.Entry
				err     error
			)
			if under != "" {
				entries, err = s.ix.Subtree(ctx, under, !all)
			} else {
				entries, err = s.ix.OrderedItems(ctx, !all)
			}
			if err != nil {
				return s.out.Fail(err)
			}
			l, err := newListing(entries)
			if err != nil {
				return WrapExitError(ExitCommandError, "fingerprint listing", err)
			}
			return s.out.Emit(l, func(w io.Writer) { writeEntries(w, l.Entries) })
		}),
	}

	cmd.Flags().BoolVar(&all, "all", false, "include archived items")
	cmd.Flags().StringVar(&under, "under", "", "list only this item and its descendants")

	return cmd
}

func newChildrenCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "children <ident>",
		Short: "List the live direct children of an item",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			entries, err := s.ix.ReadyChildren(commandContext(cmd), args[0])
			if err != nil {
				return s.out.Fail(err)
			}
			l, err := newListing(entries)
			if err != nil {
				return WrapExitError(ExitCommandError, "fingerprint listing", err)
			}
			return s.out.Emit(l, func(w io.Writer) {
				for _, e := range l.Entries {
					fmt.Fprintln(w, e.Item.Ident)
				}
			})
		}),
	}
}

func newReachCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reach <from> <to> <kind>",
		Short: "Report whether a kind path leads from one item to another",
		Args:  cobra.ExactArgs(3),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			ok, err := s.ix.IsReachable(commandContext(cmd), args[0], args[1], args[2])
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Emit(map[string]bool{"reachable": ok}, func(w io.Writer) {
				fmt.Fprintln(w, ok)
			})
		}),
	}
}

func newClosureCommand(opts *RootOptions) *cobra.Command {
	var up bool

	cmd := &cobra.Command{
		Use:   "closure <ident> <kind>",
		Short: "List everything reachable from an item",
		Long: `List, sorted, every item reachable from ident by a non-empty path of
kind edges. With --up, list the items that reach ident instead.`,
		Args: cobra.ExactArgs(2),
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			dir := model.Descendants
			if up {
				dir = model.Ancestors
			}
			idents, err := s.ix.ClosureOf(commandContext(cmd), args[0], args[1], dir)
			if err != nil {
				return s.out.Fail(err)
			}
			if idents == nil {
				idents = []string{}
			}
			return s.out.Emit(idents, func(w io.Writer) { writeLines(w, idents) })
		}),
	}

	cmd.Flags().BoolVar(&up, "up", false, "list ancestors instead of descendants")

	return cmd
}

func newVisibleCommand(opts *RootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "visible",
		Short: "List the tasks to show now",
		Long: `List open, unblocked tasks of live items whose show-after time has
passed, ordered by priority, then deadline (none last), then ident.

Examples:
  fanidx visible
  fanidx visible --at tomorrow`,
		Args: cobra.NoArgs,
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			now := s.clock.Now()
			if at != "" {
				t, err := parseWhen(at, now)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid --at", err)
				}
				now = t
			}
			list, err := s.ix.VisibleTasks(commandContext(cmd), now)
			if err != nil {
				return s.out.Fail(err)
			}
			if list == nil {
				list = []model.Task{}
			}
			s.logger.Debug("visible tasks", "at", now.Format(time.RFC3339), "count", len(list))
			return s.out.Emit(list, func(w io.Writer) {
				for _, t := range list {
					writeTaskLine(w, t)
				}
			})
		}),
	}

	cmd.Flags().StringVar(&at, "at", "", "evaluate at this time instead of now")

	return cmd
}

func newSpecialCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "special <parent|context>",
		Short:     "List live items carrying a special flag",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"parent", "context"},
		RunE: withSession(opts, func(cmd *cobra.Command, args []string, s *session) error {
			kind, err := model.ParseSpecialKind(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid special kind", err)
			}
			items, err := s.ix.SearchSpecial(commandContext(cmd), kind)
			if err != nil {
				return s.out.Fail(err)
			}
			if items == nil {
				items = []model.Item{}
			}
			return s.out.Emit(items, func(w io.Writer) {
				for _, it := range items {
					if it.Name != "" {
						fmt.Fprintf(w, "%s  %s\n", it.Ident, it.Name)
					} else {
						fmt.Fprintln(w, it.Ident)
					}
				}
			})
		}),
	}
}
