package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/roach88/fanling-index/internal/closure"
	"github.com/roach88/fanling-index/internal/model"
)

var _ closure.TableWriter = (*Tx)(nil)

// ClosureHas reports whether (from, to, kind) is in the closure table.
func (t *Tx) ClosureHas(ctx context.Context, from, to, kind string) (bool, error) {
	var one int
	err := t.tx.QueryRowContext(ctx, `
		SELECT 1 FROM relation_closure WHERE kind = ? AND from_ident = ? AND to_ident = ?
	`, kind, from, to).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, classify("closure lookup", err)
	}
	return true, nil
}

// ClosureFrom returns every descendant of ident recorded for kind.
func (t *Tx) ClosureFrom(ctx context.Context, ident, kind string) ([]string, error) {
	return t.queryIdents(ctx, "closure from", `
		SELECT to_ident FROM relation_closure
		WHERE kind = ? AND from_ident = ?
		ORDER BY to_ident COLLATE BINARY ASC
	`, kind, ident)
}

// ClosureTo returns every ancestor of ident recorded for kind.
func (t *Tx) ClosureTo(ctx context.Context, ident, kind string) ([]string, error) {
	return t.queryIdents(ctx, "closure to", `
		SELECT from_ident FROM relation_closure
		WHERE kind = ? AND to_ident = ?
		ORDER BY from_ident COLLATE BINARY ASC
	`, kind, ident)
}

// ClosureInsert adds entries, skipping ones already present.
func (t *Tx) ClosureInsert(ctx context.Context, entries []model.ClosureEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if t.readOnly {
		return classify("closure insert", errReadOnly)
	}
	stmt, err := t.tx.PrepareContext(ctx, `
		INSERT INTO relation_closure (kind, from_ident, to_ident) VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return classify("closure insert", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Kind, e.From, e.To); err != nil {
			return classify("closure insert", err)
		}
	}
	return nil
}

// ClosureReplaceKind deletes every entry of kind and inserts entries.
func (t *Tx) ClosureReplaceKind(ctx context.Context, kind string, entries []model.ClosureEntry) error {
	if _, err := t.exec(ctx, "closure clear", `DELETE FROM relation_closure WHERE kind = ?`, kind); err != nil {
		return err
	}
	return t.ClosureInsert(ctx, entries)
}

// ClosureEntries returns every entry of kind ordered by (from, to).
func (t *Tx) ClosureEntries(ctx context.Context, kind string) ([]model.ClosureEntry, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT from_ident, to_ident FROM relation_closure
		WHERE kind = ?
		ORDER BY from_ident COLLATE BINARY ASC, to_ident COLLATE BINARY ASC
	`, kind)
	if err != nil {
		return nil, classify("closure entries", err)
	}
	defer rows.Close()

	var out []model.ClosureEntry
	for rows.Next() {
		e := model.ClosureEntry{Kind: kind}
		if err := rows.Scan(&e.From, &e.To); err != nil {
			return nil, classify("scan closure entry", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate closure entries", err)
	}
	return out, nil
}

// MarkDirty records that kind's closure rows are stale.
func (t *Tx) MarkDirty(ctx context.Context, kind string) error {
	_, err := t.exec(ctx, "mark dirty", `
		INSERT INTO closure_dirty (kind) VALUES (?) ON CONFLICT DO NOTHING
	`, kind)
	return err
}

// ClearDirty removes kind's dirty mark.
func (t *Tx) ClearDirty(ctx context.Context, kind string) error {
	_, err := t.exec(ctx, "clear dirty", `DELETE FROM closure_dirty WHERE kind = ?`, kind)
	return err
}

// IsDirty reports whether kind has a pending rebuild.
func (t *Tx) IsDirty(ctx context.Context, kind string) (bool, error) {
	var one int
	err := t.tx.QueryRowContext(ctx, `SELECT 1 FROM closure_dirty WHERE kind = ?`, kind).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, classify("dirty lookup", err)
	}
	return true, nil
}

// DirtyKinds returns every kind with a pending rebuild.
func (t *Tx) DirtyKinds(ctx context.Context) ([]string, error) {
	return t.queryIdents(ctx, "dirty kinds", `
		SELECT kind FROM closure_dirty ORDER BY kind COLLATE BINARY ASC
	`)
}

// ClearAllClosure drops every closure row and dirty mark. Used when
// switching away from the view strategy, before a full rebuild.
func (t *Tx) ClearAllClosure(ctx context.Context) error {
	if _, err := t.exec(ctx, "clear closure", `DELETE FROM relation_closure`); err != nil {
		return err
	}
	_, err := t.exec(ctx, "clear dirty", `DELETE FROM closure_dirty`)
	return err
}
