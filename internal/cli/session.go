package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/fanling-index/internal/config"
	"github.com/roach88/fanling-index/internal/index"
)

// session is an open index plus everything a command needs around it.
type session struct {
	ix     *index.Index
	cfg    config.Config
	out    *OutputFormatter
	clock  index.Clock
	logger *slog.Logger
	retry  time.Duration
}

// openSession loads the configuration, applies flag overrides and opens
// the index. Failures are command errors.
func openSession(cmd *cobra.Command, opts *RootOptions) (*session, error) {
	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	retry, err := cfg.MaxElapsed()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid config", err)
	}

	level := cfg.SlogLevel()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	clock := opts.Clock
	if clock == nil {
		clock = index.SystemClock{}
	}

	ix, err := index.Open(commandContext(cmd), cfg.Database, index.Options{
		IdentPrefix:  cfg.IdentPrefix,
		Strategy:     cfg.Closure.Strategy,
		DeferRebuild: cfg.Closure.DeferRebuild,
		Logger:       logger,
		Clock:        clock,
		Prefixes:     opts.Prefixes,
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open index", err)
	}
	logger.Debug("index open", "db", cfg.Database, "strategy", ix.Strategy(), "prefix", ix.IdentPrefix())

	return &session{
		ix:  ix,
		cfg: cfg,
		out: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		},
		clock:  clock,
		logger: logger,
		retry:  retry,
	}, nil
}

func (s *session) close() {
	if err := s.ix.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}

// mutate runs op, retrying transient store failures for up to
// retry.max_elapsed.
func (s *session) mutate(ctx context.Context, op func() error) error {
	return index.Retry(ctx, s.retry, op)
}

// withSession opens a session for the duration of run.
func withSession(opts *RootOptions, run func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, opts)
		if err != nil {
			return err
		}
		defer s.close()
		return run(cmd, args, s)
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
