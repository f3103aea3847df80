package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fanling-index/internal/index"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Database   string

	// Clock overrides wall time (for testing). If nil, index.SystemClock.
	Clock index.Clock
	// Prefixes overrides ident prefix generation for new databases (for
	// testing). If nil, index.UUIDv7Prefix.
	Prefixes index.PrefixGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the fanidx CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fanidx",
		Short: "fanidx - secondary index for a fanling store",
		Long: `Maintain and query the secondary index of a personal knowledge and
task store: the item hierarchy, kinded relations with their transitive
closure, and the visible task list.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file (default ./fanidx.yaml if present)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")

	cmd.AddCommand(newInitCommand(opts))
	cmd.AddCommand(newItemCommand(opts))
	cmd.AddCommand(newRelCommand(opts))
	cmd.AddCommand(newTaskCommand(opts))
	cmd.AddCommand(newLsCommand(opts))
	cmd.AddCommand(newReachCommand(opts))
	cmd.AddCommand(newClosureCommand(opts))
	cmd.AddCommand(newVisibleCommand(opts))
	cmd.AddCommand(newSpecialCommand(opts))
	cmd.AddCommand(newChildrenCommand(opts))
	cmd.AddCommand(newRebuildCommand(opts))
	cmd.AddCommand(newCheckCommand(opts))
	cmd.AddCommand(newScenarioCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
