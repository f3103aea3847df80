package closure

import (
	"context"
	"sort"

	"github.com/roach88/fanling-index/internal/model"
)

// Materialized maintains the closure table incrementally on insert and by
// full rebuild on delete.
type Materialized struct {
	// DeferRebuild marks a kind dirty on delete instead of rebuilding it
	// inside the deleting transaction.
	DeferRebuild bool
}

// Name implements Strategy.
func (m *Materialized) Name() string { return StrategyMaterialized }

// OnInsert implements Strategy.
//
// The edge closes a cycle iff a == b or b already reaches a; that is
// rejected so the table never has to represent one. For a dirty kind the
// table is skipped, since the pending rebuild will read the new edge.
func (m *Materialized) OnInsert(ctx context.Context, w TableWriter, rel model.Relation) error {
	a, b, kind := rel.From, rel.To, rel.Kind
	if a == b {
		return model.NewCycleError(a, kind, []string{a, a})
	}
	back, err := m.IsReachable(ctx, w, b, a, kind)
	if err != nil {
		return err
	}
	if back {
		path, err := findPath(ctx, w, b, a, kind)
		if err != nil {
			return err
		}
		return model.NewCycleError(a, kind, append([]string{a}, path...))
	}

	dirty, err := w.IsDirty(ctx, kind)
	if err != nil {
		return err
	}
	if dirty {
		return nil
	}

	ancestors, err := w.ClosureTo(ctx, a, kind)
	if err != nil {
		return err
	}
	descendants, err := w.ClosureFrom(ctx, b, kind)
	if err != nil {
		return err
	}
	xs := append([]string{a}, ancestors...)
	ys := append([]string{b}, descendants...)

	entries := make([]model.ClosureEntry, 0, len(xs)*len(ys))
	for _, x := range xs {
		for _, y := range ys {
			entries = append(entries, model.ClosureEntry{From: x, To: y, Kind: kind})
		}
	}
	return w.ClosureInsert(ctx, entries)
}

// OnDelete implements Strategy. Without DeferRebuild this blocks for a full
// rebuild of the kind.
func (m *Materialized) OnDelete(ctx context.Context, w TableWriter, from, to, kind string) error {
	if m.DeferRebuild {
		return w.MarkDirty(ctx, kind)
	}
	return m.Rebuild(ctx, w, kind)
}

// Rebuild implements Strategy.
func (m *Materialized) Rebuild(ctx context.Context, w TableWriter, kind string) error {
	edges, err := w.KindEdges(ctx, kind)
	if err != nil {
		return err
	}
	entries, err := Build(kind, edges)
	if err != nil {
		return model.NewRebuildError(kind, err)
	}
	if err := w.ClosureReplaceKind(ctx, kind, entries); err != nil {
		return err
	}
	return w.ClearDirty(ctx, kind)
}

// IsReachable implements Strategy.
func (m *Materialized) IsReachable(ctx context.Context, r TableReader, from, to, kind string) (bool, error) {
	dirty, err := r.IsDirty(ctx, kind)
	if err != nil {
		return false, err
	}
	if dirty {
		return View{}.IsReachable(ctx, r, from, to, kind)
	}
	return r.ClosureHas(ctx, from, to, kind)
}

// ClosureOf implements Strategy.
func (m *Materialized) ClosureOf(ctx context.Context, r TableReader, ident, kind string, dir model.Direction) ([]string, error) {
	dirty, err := r.IsDirty(ctx, kind)
	if err != nil {
		return nil, err
	}
	if dirty {
		return Reach(ctx, r, ident, kind, dir)
	}
	var out []string
	if dir == model.Ancestors {
		out, err = r.ClosureTo(ctx, ident, kind)
	} else {
		out, err = r.ClosureFrom(ctx, ident, kind)
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}
