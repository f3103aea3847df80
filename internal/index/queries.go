package index

import (
	"context"
	"sort"
	"time"

	"github.com/roach88/fanling-index/internal/hierarchy"
	"github.com/roach88/fanling-index/internal/itemquery"
	"github.com/roach88/fanling-index/internal/model"
	"github.com/roach88/fanling-index/internal/store"
	"github.com/roach88/fanling-index/internal/tasks"
)

// OrderedItems returns the hierarchy listing in depth-first order. With
// openOnly, archived items are omitted but still position their live
// descendants.
func (ix *Index) OrderedItems(ctx context.Context, openOnly bool) ([]hierarchy.Entry, error) {
	gen, err := ix.Generation(ctx)
	if err != nil {
		return nil, err
	}
	return ix.cache.Get(ctx, gen, openOnly, ix.loadItems)
}

func (ix *Index) loadItems(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	err := ix.view(ctx, func(tx *store.Tx) error {
		var err error
		items, err = tx.AllItems(ctx)
		return err
	})
	return items, err
}

// ReadyChildren returns the live direct children of parent in listing
// order.
func (ix *Index) ReadyChildren(ctx context.Context, parent string) ([]hierarchy.Entry, error) {
	if _, err := ix.GetItem(ctx, parent); err != nil {
		return nil, err
	}
	entries, err := ix.OrderedItems(ctx, true)
	if err != nil {
		return nil, err
	}
	return hierarchy.Children(entries, parent), nil
}

// SearchSpecial returns the live items carrying the special bit kind,
// ordered by (sort, ident).
func (ix *Index) SearchSpecial(ctx context.Context, kind model.SpecialKind) ([]model.Item, error) {
	var items []model.Item
	err := ix.view(ctx, func(tx *store.Tx) error {
		var err error
		items, err = tx.SearchItems(ctx, itemquery.And{Predicates: []itemquery.Predicate{
			itemquery.Open(),
			itemquery.HasSpecial{Kind: kind},
		}})
		return err
	})
	return items, err
}

// IsReachable reports whether a non-empty kind path leads from → to.
func (ix *Index) IsReachable(ctx context.Context, from, to, kind string) (bool, error) {
	var ok bool
	err := ix.view(ctx, func(tx *store.Tx) error {
		var err error
		ok, err = ix.strategy.IsReachable(ctx, tx, from, to, kind)
		return err
	})
	return ok, err
}

// ClosureOf returns the sorted descendants or ancestors of ident under kind.
func (ix *Index) ClosureOf(ctx context.Context, ident, kind string, dir model.Direction) ([]string, error) {
	var out []string
	err := ix.view(ctx, func(tx *store.Tx) error {
		var err error
		out, err = ix.strategy.ClosureOf(ctx, tx, ident, kind, dir)
		return err
	})
	return out, err
}

// VisibleTasks returns the tasks to show at now: open, unblocked, shown,
// and owned by a live item; ordered by priority, deadline, ident.
//
// The store query narrows the rows; tasks.Visible and tasks.Less decide
// the final list and its order.
func (ix *Index) VisibleTasks(ctx context.Context, now time.Time) ([]model.Task, error) {
	var rows []model.Task
	err := ix.view(ctx, func(tx *store.Tx) error {
		var err error
		rows, err = tx.VisibleTasks(ctx, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, t := range rows {
		if tasks.Visible(t, now) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return tasks.Less(out[i], out[j]) })
	return out, nil
}

// Subtree returns root and its descendants in listing order. With
// openOnly, archived entries are dropped but an archived root still
// anchors its live descendants.
func (ix *Index) Subtree(ctx context.Context, root string, openOnly bool) ([]hierarchy.Entry, error) {
	if _, err := ix.GetItem(ctx, root); err != nil {
		return nil, err
	}
	entries, err := ix.OrderedItems(ctx, false)
	if err != nil {
		return nil, err
	}
	sub := hierarchy.Subtree(entries, root)
	if !openOnly {
		return sub, nil
	}
	out := sub[:0]
	for _, e := range sub {
		if e.Item.Open() {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListingFingerprint hashes the (ident, level, key) rows of a listing.
func ListingFingerprint(entries []hierarchy.Entry) (string, error) {
	rows := make([]model.ListingRow, len(entries))
	for i, e := range entries {
		rows[i] = model.ListingRow{Ident: e.Item.Ident, Level: e.Level, Key: e.Key}
	}
	return model.ListingFingerprint(rows)
}
