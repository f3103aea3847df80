package index

import (
	"context"

	"github.com/roach88/fanling-index/internal/closure"
	"github.com/roach88/fanling-index/internal/model"
	"github.com/roach88/fanling-index/internal/store"
)

// RebuildClosure recomputes kind's closure from its base edges. It is a
// no-op under the view strategy.
func (ix *Index) RebuildClosure(ctx context.Context, kind string) error {
	err := ix.update(ctx, func(tx *store.Tx) error {
		return ix.strategy.Rebuild(ctx, tx, kind)
	})
	if err != nil {
		ix.logger.Warn("closure rebuild failed", "kind", kind, "error", err)
		return err
	}
	ix.logger.Info("closure rebuilt", "kind", kind, "strategy", ix.strategy.Name())
	return nil
}

// RebuildAll rebuilds every kind present in the store.
func (ix *Index) RebuildAll(ctx context.Context) ([]string, error) {
	kinds, err := ix.Kinds(ctx)
	if err != nil {
		return nil, err
	}
	for _, kind := range kinds {
		if err := ix.RebuildClosure(ctx, kind); err != nil {
			return nil, err
		}
	}
	return kinds, nil
}

// RebuildDirty rebuilds the kinds left dirty by deferred deletes and
// returns them.
func (ix *Index) RebuildDirty(ctx context.Context) ([]string, error) {
	var kinds []string
	err := ix.view(ctx, func(tx *store.Tx) error {
		var err error
		kinds, err = tx.DirtyKinds(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, kind := range kinds {
		if err := ix.RebuildClosure(ctx, kind); err != nil {
			return nil, err
		}
	}
	return kinds, nil
}

// DirtyKinds returns the kinds awaiting a deferred rebuild.
func (ix *Index) DirtyKinds(ctx context.Context) ([]string, error) {
	var kinds []string
	err := ix.view(ctx, func(tx *store.Tx) error {
		var err error
		kinds, err = tx.DirtyKinds(ctx)
		return err
	})
	return kinds, err
}

// CheckCycles reports every cycle in kind's base edges. An index kept by
// the materialized strategy never has one; the view strategy accepts them.
func (ix *Index) CheckCycles(ctx context.Context, kind string) ([]closure.CycleReport, error) {
	var reports []closure.CycleReport
	err := ix.view(ctx, func(tx *store.Tx) error {
		edges, err := tx.KindEdges(ctx, kind)
		if err != nil {
			return err
		}
		reports = closure.FindCycles(kind, closure.GraphOf(edges))
		return nil
	})
	return reports, err
}

// ClosureReport summarizes CheckClosure for one kind.
type ClosureReport struct {
	Kind   string                `json:"kind"`
	Cycles []closure.CycleReport `json:"cycles"`
	// Fingerprint hashes the closure derived from the base edges. It is
	// empty when the edges contain a cycle.
	Fingerprint string `json:"fingerprint,omitempty"`
	// Consistent is false when the materialized table differs from the
	// derived closure. Always true under the view strategy and for dirty
	// kinds, which are answered from the edges.
	Consistent bool `json:"consistent"`
	Dirty      bool `json:"dirty"`
}

// CheckClosure reports the cycles of kind and whether its stored closure
// matches the one derived from its base edges.
func (ix *Index) CheckClosure(ctx context.Context, kind string) (ClosureReport, error) {
	rep := ClosureReport{Kind: kind, Consistent: true}
	err := ix.view(ctx, func(tx *store.Tx) error {
		edges, err := tx.KindEdges(ctx, kind)
		if err != nil {
			return err
		}
		rep.Cycles = closure.FindCycles(kind, closure.GraphOf(edges))
		if rep.Dirty, err = tx.IsDirty(ctx, kind); err != nil {
			return err
		}
		if len(rep.Cycles) > 0 {
			return nil
		}

		derived, err := closure.Build(kind, edges)
		if err != nil {
			return err
		}
		if rep.Fingerprint, err = model.ClosureFingerprint(derived); err != nil {
			return err
		}
		if ix.strategy.Name() != closure.StrategyMaterialized || rep.Dirty {
			return nil
		}
		stored, err := tx.ClosureEntries(ctx, kind)
		if err != nil {
			return err
		}
		storedFP, err := model.ClosureFingerprint(stored)
		if err != nil {
			return err
		}
		rep.Consistent = storedFP == rep.Fingerprint
		return nil
	})
	if err != nil {
		return ClosureReport{}, err
	}
	if !rep.Consistent {
		ix.logger.Warn("closure table out of date", "kind", kind)
	}
	return rep, nil
}
