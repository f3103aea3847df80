package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fanling-index/internal/closure"
	"github.com/roach88/fanling-index/internal/model"
)

// insertEdge writes the base edge and maintains the closure in one
// transaction, the way the index facade does.
func insertEdge(ctx context.Context, tx *Tx, strat closure.Strategy, r model.Relation) error {
	if err := tx.InsertRelation(ctx, r); err != nil {
		return err
	}
	return strat.OnInsert(ctx, tx, r)
}

func closureSet(t *testing.T, s *Store, kind string) []model.ClosureEntry {
	t.Helper()
	var out []model.ClosureEntry
	require.NoError(t, s.View(context.Background(), func(tx *Tx) error {
		var err error
		out, err = tx.ClosureEntries(context.Background(), kind)
		return err
	}))
	return out
}

func TestClosureTable_MaterializedInsertAndDelete(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	strat := &closure.Materialized{}

	mustUpdate(t, s, func(tx *Tx) error {
		for _, r := range []model.Relation{rel("a", "b", "dep"), rel("b", "c", "dep")} {
			if err := insertEdge(ctx, tx, strat, r); err != nil {
				return err
			}
		}
		return nil
	})
	assert.Equal(t, []model.ClosureEntry{
		{From: "a", To: "b", Kind: "dep"},
		{From: "a", To: "c", Kind: "dep"},
		{From: "b", To: "c", Kind: "dep"},
	}, closureSet(t, s, "dep"))

	mustUpdate(t, s, func(tx *Tx) error {
		if _, err := tx.DeleteRelation(ctx, "a", "b", "dep"); err != nil {
			return err
		}
		return strat.OnDelete(ctx, tx, "a", "b", "dep")
	})
	assert.Equal(t, []model.ClosureEntry{{From: "b", To: "c", Kind: "dep"}}, closureSet(t, s, "dep"))
}

func TestClosureTable_CycleRollsBackEdge(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	strat := &closure.Materialized{}

	mustUpdate(t, s, func(tx *Tx) error {
		if err := insertEdge(ctx, tx, strat, rel("a", "b", "dep")); err != nil {
			return err
		}
		return insertEdge(ctx, tx, strat, rel("b", "c", "dep"))
	})

	err := s.Update(ctx, func(tx *Tx) error { return insertEdge(ctx, tx, strat, rel("c", "a", "dep")) })
	require.True(t, model.IsCycle(err), "got %v", err)

	require.NoError(t, s.View(ctx, func(tx *Tx) error {
		from, err := tx.EdgesFrom(ctx, "c", "dep")
		require.NoError(t, err)
		assert.Empty(t, from, "rejected edge must not persist")
		return nil
	}))
}

func TestClosureTable_DeferredDirty(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	strat := &closure.Materialized{DeferRebuild: true}

	mustUpdate(t, s, func(tx *Tx) error {
		if err := insertEdge(ctx, tx, strat, rel("a", "b", "dep")); err != nil {
			return err
		}
		if err := insertEdge(ctx, tx, strat, rel("b", "c", "dep")); err != nil {
			return err
		}
		if _, err := tx.DeleteRelation(ctx, "b", "c", "dep"); err != nil {
			return err
		}
		return strat.OnDelete(ctx, tx, "b", "c", "dep")
	})

	require.NoError(t, s.View(ctx, func(tx *Tx) error {
		dirty, err := tx.DirtyKinds(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"dep"}, dirty)

		ok, err := strat.IsReachable(ctx, tx, "a", "c", "dep")
		require.NoError(t, err)
		assert.False(t, ok, "dirty kind must be answered from base edges")
		return nil
	}))

	mustUpdate(t, s, func(tx *Tx) error { return strat.Rebuild(ctx, tx, "dep") })
	assert.Equal(t, []model.ClosureEntry{{From: "a", To: "b", Kind: "dep"}}, closureSet(t, s, "dep"))

	require.NoError(t, s.View(ctx, func(tx *Tx) error {
		dirty, err := tx.IsDirty(ctx, "dep")
		require.NoError(t, err)
		assert.False(t, dirty)
		return nil
	}))
}

func TestClearAllClosure(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	mustUpdate(t, s, func(tx *Tx) error {
		if err := tx.ClosureInsert(ctx, []model.ClosureEntry{{From: "a", To: "b", Kind: "dep"}}); err != nil {
			return err
		}
		if err := tx.MarkDirty(ctx, "ref"); err != nil {
			return err
		}
		return tx.ClearAllClosure(ctx)
	})
	assert.Empty(t, closureSet(t, s, "dep"))
	require.NoError(t, s.View(ctx, func(tx *Tx) error {
		dirty, err := tx.DirtyKinds(ctx)
		assert.Empty(t, dirty)
		return err
	}))
}
