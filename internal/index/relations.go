package index

import (
	"context"

	"github.com/roach88/fanling-index/internal/model"
	"github.com/roach88/fanling-index/internal/store"
)

// InsertRelation adds the edge from → to of kind and updates the closure in
// the same transaction. Under the materialized strategy an edge that would
// close a cycle fails with CYCLE_DETECTED and nothing is written.
func (ix *Index) InsertRelation(ctx context.Context, from, to, kind string) error {
	rel := model.Relation{From: from, To: to, Kind: kind, WhenCreated: ix.clock.Now()}
	err := ix.update(ctx, func(tx *store.Tx) error {
		if err := tx.InsertRelation(ctx, rel); err != nil {
			return err
		}
		return ix.strategy.OnInsert(ctx, tx, rel)
	})
	if err != nil {
		if model.IsCycle(err) {
			ix.logger.Warn("relation rejected", "from", from, "to", to, "kind", kind, "error", err)
		}
		return err
	}
	ix.logger.Debug("insert relation", "from", from, "to", to, "kind", kind)
	return nil
}

// DeleteRelation removes the edge and reports whether it existed. Removing
// an edge rebuilds the kind's closure, or marks it dirty when rebuilds are
// deferred.
func (ix *Index) DeleteRelation(ctx context.Context, from, to, kind string) (bool, error) {
	var removed bool
	err := ix.update(ctx, func(tx *store.Tx) error {
		var err error
		removed, err = tx.DeleteRelation(ctx, from, to, kind)
		if err != nil || !removed {
			return err
		}
		return ix.strategy.OnDelete(ctx, tx, from, to, kind)
	})
	if err != nil {
		return false, err
	}
	ix.logger.Debug("delete relation", "from", from, "to", to, "kind", kind, "removed", removed)
	return removed, nil
}

// EdgesFrom returns the direct successors of ident under kind.
func (ix *Index) EdgesFrom(ctx context.Context, ident, kind string) ([]string, error) {
	var out []string
	err := ix.view(ctx, func(tx *store.Tx) error {
		var err error
		out, err = tx.EdgesFrom(ctx, ident, kind)
		return err
	})
	return out, err
}

// EdgesTo returns the direct predecessors of ident under kind.
func (ix *Index) EdgesTo(ctx context.Context, ident, kind string) ([]string, error) {
	var out []string
	err := ix.view(ctx, func(tx *store.Tx) error {
		var err error
		out, err = tx.EdgesTo(ctx, ident, kind)
		return err
	})
	return out, err
}

// Kinds returns every relation kind present in the store.
func (ix *Index) Kinds(ctx context.Context) ([]string, error) {
	var out []string
	err := ix.view(ctx, func(tx *store.Tx) error {
		var err error
		out, err = tx.Kinds(ctx)
		return err
	})
	return out, err
}
