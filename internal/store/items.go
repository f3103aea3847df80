package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/fanling-index/internal/itemquery"
	"github.com/roach88/fanling-index/internal/model"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(r rowScanner) (model.Item, error) {
	var (
		it       model.Item
		open     bool
		parent   sql.NullString
		classify string
		special  int64
	)
	if err := r.Scan(&it.Ident, &it.TypeName, &it.Name, &open, &parent, &it.Sort, &classify, &special, &it.Targeted); err != nil {
		return model.Item{}, err
	}
	it.Lifecycle = model.LifecycleFromOpen(open)
	it.Parent = parent.String
	it.Classify = model.Classify(classify)
	it.Special = model.Specials(special)
	return it, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// GetItem returns the item with ident, or NOT_FOUND.
func (t *Tx) GetItem(ctx context.Context, ident string) (model.Item, error) {
	sqlText, args, err := itemquery.Compile(itemquery.Equals{Field: "ident", Value: ident})
	if err != nil {
		return model.Item{}, err
	}
	it, err := scanItem(t.tx.QueryRowContext(ctx, sqlText, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Item{}, model.NewNotFound("item", ident)
	}
	if err != nil {
		return model.Item{}, classify("get item", err)
	}
	return it, nil
}

// PutItem inserts or replaces an item after normalizing and validating it.
// Ident and Parent are stored exactly as given.
// The parent must already exist, and following parents from it must not
// lead back to the item.
func (t *Tx) PutItem(ctx context.Context, it model.Item) (model.Item, error) {
	it = model.Normalize(it)
	if err := model.ValidateItem(it); err != nil {
		return model.Item{}, err
	}
	if it.Parent != "" {
		if err := t.checkParentChain(ctx, it.Ident, it.Parent); err != nil {
			return model.Item{}, err
		}
	}

	_, err := t.exec(ctx, "put item", `
		INSERT INTO item (ident, type_name, name, open, parent, sort, classify, special, targeted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ident) DO UPDATE SET
			type_name = excluded.type_name,
			name      = excluded.name,
			open      = excluded.open,
			parent    = excluded.parent,
			sort      = excluded.sort,
			classify  = excluded.classify,
			special   = excluded.special,
			targeted  = excluded.targeted
	`, it.Ident, it.TypeName, it.Name, it.Open(), nullString(it.Parent), it.Sort,
		string(it.Classify), int64(it.Special), it.Targeted)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.Item{}, model.NewOrphanParent(it.Ident, it.Parent)
		}
		return model.Item{}, err
	}
	if err := t.bumpItemGeneration(ctx); err != nil {
		return model.Item{}, err
	}
	return it, nil
}

// checkParentChain walks up from parent. Reaching ident means the write
// would close a parent cycle.
func (t *Tx) checkParentChain(ctx context.Context, ident, parent string) error {
	path := []string{ident}
	seen := map[string]bool{ident: true}
	cur := parent
	for cur != "" {
		path = append(path, cur)
		if cur == ident {
			return model.NewCycleError(ident, "", path)
		}
		if seen[cur] {
			// Pre-existing cycle above us; not ours to report here.
			return nil
		}
		seen[cur] = true

		var next sql.NullString
		err := t.tx.QueryRowContext(ctx, `SELECT parent FROM item WHERE ident = ?`, cur).Scan(&next)
		if errors.Is(err, sql.ErrNoRows) {
			if cur == parent {
				return model.NewOrphanParent(ident, parent)
			}
			return nil
		}
		if err != nil {
			return classify("check parent", err)
		}
		cur = next.String
	}
	return nil
}

// DeleteItem physically removes an item and its task. It fails with
// INVALID_ITEM while any item names it as parent.
func (t *Tx) DeleteItem(ctx context.Context, ident string) error {
	var child string
	err := t.tx.QueryRowContext(ctx,
		`SELECT ident FROM item WHERE parent = ? ORDER BY ident COLLATE BINARY LIMIT 1`, ident).Scan(&child)
	switch {
	case err == nil:
		return model.NewHasChildren(ident, child)
	case !errors.Is(err, sql.ErrNoRows):
		return classify("delete item", err)
	}

	res, err := t.exec(ctx, "delete item", `DELETE FROM item WHERE ident = ?`, ident)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify("delete item", err)
	}
	if n == 0 {
		return model.NewNotFound("item", ident)
	}
	return t.bumpItemGeneration(ctx)
}

// AllItems returns every item ordered by (sort, ident).
func (t *Tx) AllItems(ctx context.Context) ([]model.Item, error) {
	return t.SearchItems(ctx, nil)
}

// SearchItems returns the items matching p ordered by (sort, ident).
func (t *Tx) SearchItems(ctx context.Context, p itemquery.Predicate) ([]model.Item, error) {
	sqlText, args, err := itemquery.Compile(p)
	if err != nil {
		return nil, err
	}
	rows, err := t.tx.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, classify(fmt.Sprintf("search items [%s]", itemquery.Describe(p)), err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, classify("scan item", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate items", err)
	}
	return items, nil
}
