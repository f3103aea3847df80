package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/roach88/fanling-index/internal/model"
)

// InsertRelation adds a base edge. A second insert of the same (from, to,
// kind) fails with DUPLICATE_RELATION and a self-edge with CYCLE_DETECTED.
func (t *Tx) InsertRelation(ctx context.Context, rel model.Relation) error {
	if err := model.ValidateIdent(rel.From); err != nil {
		return err
	}
	if err := model.ValidateIdent(rel.To); err != nil {
		return err
	}
	if rel.Kind == "" {
		return model.NewInvalidItem(rel.From, "relation kind is empty")
	}
	if rel.From == rel.To {
		return model.NewCycleError(rel.From, rel.Kind, []string{rel.From, rel.To})
	}

	var exists int
	err := t.tx.QueryRowContext(ctx, `
		SELECT 1 FROM relation WHERE kind = ? AND from_ident = ? AND to_ident = ?
	`, rel.Kind, rel.From, rel.To).Scan(&exists)
	switch {
	case err == nil:
		return model.NewDuplicateRelation(rel.From, rel.To, rel.Kind)
	case !errors.Is(err, sql.ErrNoRows):
		return classify("insert relation", err)
	}

	_, err = t.exec(ctx, "insert relation", `
		INSERT INTO relation (from_ident, to_ident, kind, when_created)
		VALUES (?, ?, ?, ?)
	`, rel.From, rel.To, rel.Kind, rel.WhenCreated.UTC().UnixMicro())
	if err != nil {
		if isUniqueViolation(err) {
			return model.NewDuplicateRelation(rel.From, rel.To, rel.Kind)
		}
		return err
	}
	return nil
}

// DeleteRelation removes a base edge. It reports whether a row was removed;
// deleting an absent edge is not an error.
func (t *Tx) DeleteRelation(ctx context.Context, from, to, kind string) (bool, error) {
	res, err := t.exec(ctx, "delete relation", `
		DELETE FROM relation WHERE kind = ? AND from_ident = ? AND to_ident = ?
	`, kind, from, to)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, classify("delete relation", err)
	}
	return n > 0, nil
}

// EdgesFrom returns the to-idents of kind edges leaving ident.
func (t *Tx) EdgesFrom(ctx context.Context, ident, kind string) ([]string, error) {
	return t.queryIdents(ctx, "edges from", `
		SELECT to_ident FROM relation
		WHERE kind = ? AND from_ident = ?
		ORDER BY to_ident COLLATE BINARY ASC
	`, kind, ident)
}

// EdgesTo returns the from-idents of kind edges entering ident.
func (t *Tx) EdgesTo(ctx context.Context, ident, kind string) ([]string, error) {
	return t.queryIdents(ctx, "edges to", `
		SELECT from_ident FROM relation
		WHERE kind = ? AND to_ident = ?
		ORDER BY from_ident COLLATE BINARY ASC
	`, kind, ident)
}

// KindEdges returns every edge of kind ordered by (from, to).
func (t *Tx) KindEdges(ctx context.Context, kind string) ([]model.Relation, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT from_ident, to_ident, kind, when_created FROM relation
		WHERE kind = ?
		ORDER BY from_ident COLLATE BINARY ASC, to_ident COLLATE BINARY ASC
	`, kind)
	if err != nil {
		return nil, classify("kind edges", err)
	}
	defer rows.Close()

	var rels []model.Relation
	for rows.Next() {
		var (
			rel     model.Relation
			created int64
		)
		if err := rows.Scan(&rel.From, &rel.To, &rel.Kind, &created); err != nil {
			return nil, classify("scan relation", err)
		}
		rel.WhenCreated = time.UnixMicro(created).UTC()
		rels = append(rels, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate relations", err)
	}
	return rels, nil
}

// Kinds returns every relation kind with at least one base edge or a
// pending dirty mark.
func (t *Tx) Kinds(ctx context.Context) ([]string, error) {
	return t.queryIdents(ctx, "relation kinds", `
		SELECT kind FROM relation
		UNION
		SELECT kind FROM closure_dirty
		ORDER BY 1 COLLATE BINARY ASC
	`)
}

func (t *Tx) queryIdents(ctx context.Context, op, query string, args ...any) ([]string, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, classify(op, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op, err)
	}
	return out, nil
}
