package closure

import (
	"context"
	"fmt"

	"github.com/roach88/fanling-index/internal/model"
)

// EdgeReader reads base relation edges of one kind.
type EdgeReader interface {
	// EdgesFrom returns the to-idents of edges leaving ident.
	EdgesFrom(ctx context.Context, ident, kind string) ([]string, error)
	// EdgesTo returns the from-idents of edges entering ident.
	EdgesTo(ctx context.Context, ident, kind string) ([]string, error)
	// KindEdges returns every edge of kind.
	KindEdges(ctx context.Context, kind string) ([]model.Relation, error)
}

// TableReader reads the materialized closure table.
type TableReader interface {
	EdgeReader
	ClosureHas(ctx context.Context, from, to, kind string) (bool, error)
	// ClosureFrom returns every y with (ident, y, kind) in the table.
	ClosureFrom(ctx context.Context, ident, kind string) ([]string, error)
	// ClosureTo returns every x with (x, ident, kind) in the table.
	ClosureTo(ctx context.Context, ident, kind string) ([]string, error)
	IsDirty(ctx context.Context, kind string) (bool, error)
}

// TableWriter mutates the closure table. Implementations are expected to
// be bound to the same transaction as the edge mutation.
type TableWriter interface {
	TableReader
	// ClosureInsert adds entries, ignoring ones already present.
	ClosureInsert(ctx context.Context, entries []model.ClosureEntry) error
	// ClosureReplaceKind swaps every entry of kind for entries.
	ClosureReplaceKind(ctx context.Context, kind string, entries []model.ClosureEntry) error
	MarkDirty(ctx context.Context, kind string) error
	ClearDirty(ctx context.Context, kind string) error
}

// Strategy maintains and answers closure queries.
type Strategy interface {
	// Name is "view" or "materialized".
	Name() string

	// OnInsert runs after the edge row was written, in the same transaction.
	OnInsert(ctx context.Context, w TableWriter, rel model.Relation) error

	// OnDelete runs after the edge row was removed, in the same transaction.
	// It may block for a full rebuild of the kind.
	OnDelete(ctx context.Context, w TableWriter, from, to, kind string) error

	// IsReachable reports whether a non-empty same-kind path leads from to to.
	IsReachable(ctx context.Context, r TableReader, from, to, kind string) (bool, error)

	// ClosureOf returns the sorted descendants or ancestors of ident.
	ClosureOf(ctx context.Context, r TableReader, ident, kind string, dir model.Direction) ([]string, error)

	// Rebuild recomputes kind from the base edges.
	Rebuild(ctx context.Context, w TableWriter, kind string) error
}

// Strategy names accepted by New.
const (
	StrategyView         = "view"
	StrategyMaterialized = "materialized"
)

// New returns the strategy called name. deferRebuild only applies to the
// materialized strategy.
func New(name string, deferRebuild bool) (Strategy, error) {
	switch name {
	case StrategyView:
		return View{}, nil
	case StrategyMaterialized, "":
		return &Materialized{DeferRebuild: deferRebuild}, nil
	default:
		return nil, fmt.Errorf("unknown closure strategy %q (want %s or %s)", name, StrategyView, StrategyMaterialized)
	}
}
