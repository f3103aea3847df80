// Package index is the entry point to the fanling secondary index.
//
// An Index owns one SQLite store and keeps three derived views of it
// consistent: the hierarchy listing (cached per generation, a counter the
// store bumps inside every item write), the relation
// closure (maintained by the configured closure strategy inside each edge
// transaction), and the visible task list. Every mutation runs in a single
// store transaction. Failures come back as typed model errors and are never
// retried here; callers wrap mutations in Retry to ride out transient
// STORE_IO_FAILURE.
package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/fanling-index/internal/closure"
	"github.com/roach88/fanling-index/internal/hierarchy"
	"github.com/roach88/fanling-index/internal/store"
)

// metaStrategyKey records which closure strategy last maintained the
// closure table.
const metaStrategyKey = "closure_strategy"

// Options configure Open. The zero value opens a materialized index with
// system time, a UUIDv7-derived ident prefix and the default logger.
type Options struct {
	// IdentPrefix is used when the database has no allocator row yet.
	IdentPrefix string
	// Strategy is "materialized" (default) or "view".
	Strategy string
	// DeferRebuild makes relation deletes mark the kind dirty instead of
	// rebuilding it. See RebuildDirty.
	DeferRebuild bool

	Logger   *slog.Logger
	Clock    Clock
	Prefixes PrefixGenerator
}

// Index is safe for concurrent use; the underlying store serializes
// writers.
type Index struct {
	store    *store.Store
	strategy closure.Strategy
	cache    *hierarchy.Cache

	logger *slog.Logger
	clock  Clock
	prefix string
}

// Open opens or creates the database at path.
//
// When the configured strategy is materialized and the database was last
// maintained by a different strategy, every kind is rebuilt before Open
// returns. That rebuild fails with CLOSURE_REBUILD_FAILURE if the view
// strategy had accepted a cyclic edge set.
func Open(ctx context.Context, path string, opts Options) (*Index, error) {
	strat, err := closure.New(opts.Strategy, opts.DeferRebuild)
	if err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Prefixes == nil {
		opts.Prefixes = UUIDv7Prefix{}
	}

	s, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	ix := &Index{
		store:    s,
		strategy: strat,
		cache:    hierarchy.NewCache(),
		logger:   opts.Logger.With("component", "index"),
		clock:    opts.Clock,
	}

	prefix := opts.IdentPrefix
	if prefix == "" {
		prefix = opts.Prefixes.Generate()
	}
	if err := ix.init(ctx, prefix); err != nil {
		s.Close()
		return nil, err
	}
	return ix, nil
}

func (ix *Index) init(ctx context.Context, prefix string) error {
	return ix.update(ctx, func(tx *store.Tx) error {
		current, err := tx.EnsureGlobal(ctx, prefix)
		if err != nil {
			return err
		}
		ix.prefix = current

		prev, _, err := tx.Meta(ctx, metaStrategyKey)
		if err != nil {
			return err
		}
		name := ix.strategy.Name()
		if prev == name {
			return nil
		}
		if name == closure.StrategyMaterialized {
			if err := tx.ClearAllClosure(ctx); err != nil {
				return err
			}
			kinds, err := tx.Kinds(ctx)
			if err != nil {
				return err
			}
			for _, kind := range kinds {
				if err := ix.strategy.Rebuild(ctx, tx, kind); err != nil {
					return err
				}
			}
			ix.logger.Info("closure strategy changed", "from", prev, "to", name, "kinds", len(kinds))
		}
		return tx.SetMeta(ctx, metaStrategyKey, name)
	})
}

// Close closes the underlying store.
func (ix *Index) Close() error {
	return ix.store.Close()
}

// Strategy returns the active closure strategy name.
func (ix *Index) Strategy() string { return ix.strategy.Name() }

// IdentPrefix returns the prefix NewIdent allocates under.
func (ix *Index) IdentPrefix() string { return ix.prefix }

// Generation returns the number of item mutations committed to the
// database by any handle. Listings are cached per generation.
func (ix *Index) Generation(ctx context.Context) (int64, error) {
	var gen int64
	err := ix.view(ctx, func(tx *store.Tx) error {
		var err error
		gen, err = tx.ItemGeneration(ctx)
		return err
	})
	return gen, err
}

func (ix *Index) update(ctx context.Context, fn func(*store.Tx) error) error {
	return ix.store.Update(ctx, fn)
}

func (ix *Index) view(ctx context.Context, fn func(*store.Tx) error) error {
	return ix.store.View(ctx, fn)
}
