package index

import (
	"context"

	"github.com/roach88/fanling-index/internal/model"
	"github.com/roach88/fanling-index/internal/store"
)

// PutItem inserts or replaces an item and returns it as stored. Name and
// Sort come back NFC-normalized; Ident and Parent are unchanged.
func (ix *Index) PutItem(ctx context.Context, it model.Item) (model.Item, error) {
	var (
		stored model.Item
		gen    int64
	)
	err := ix.update(ctx, func(tx *store.Tx) error {
		var err error
		if stored, err = tx.PutItem(ctx, it); err != nil {
			return err
		}
		gen, err = tx.ItemGeneration(ctx)
		return err
	})
	if err != nil {
		ix.logger.Debug("put item failed", "ident", it.Ident, "error", err)
		return model.Item{}, err
	}
	ix.logger.Debug("put item", "ident", stored.Ident, "parent", stored.Parent, "generation", gen)
	return stored, nil
}

// DeleteItem removes an item that has no children, along with its task.
// Relations naming the item are kept.
func (ix *Index) DeleteItem(ctx context.Context, ident string) error {
	var gen int64
	err := ix.update(ctx, func(tx *store.Tx) error {
		if err := tx.DeleteItem(ctx, ident); err != nil {
			return err
		}
		var err error
		gen, err = tx.ItemGeneration(ctx)
		return err
	})
	if err != nil {
		return err
	}
	ix.logger.Debug("delete item", "ident", ident, "generation", gen)
	return nil
}

// GetItem returns one item or NOT_FOUND.
func (ix *Index) GetItem(ctx context.Context, ident string) (model.Item, error) {
	var it model.Item
	err := ix.view(ctx, func(tx *store.Tx) error {
		var err error
		it, err = tx.GetItem(ctx, ident)
		return err
	})
	return it, err
}

// NewIdent allocates a fresh "<prefix>-<n>" ident.
func (ix *Index) NewIdent(ctx context.Context) (string, error) {
	var ident string
	err := ix.update(ctx, func(tx *store.Tx) error {
		var err error
		ident, err = tx.NextIdent(ctx)
		return err
	})
	return ident, err
}
