package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

// metaItemGeneration counts committed item writes across every handle on
// the database.
const metaItemGeneration = "item_generation"

// EnsureGlobal creates the allocator row with prefix if it does not exist
// yet and returns the prefix in effect. An existing prefix is never
// changed.
func (t *Tx) EnsureGlobal(ctx context.Context, prefix string) (string, error) {
	if _, err := t.exec(ctx, "ensure global", `
		INSERT INTO global (id, ident_prefix, last_ident) VALUES (1, ?, 0)
		ON CONFLICT(id) DO NOTHING
	`, prefix); err != nil {
		return "", err
	}
	var current string
	if err := t.tx.QueryRowContext(ctx, `SELECT ident_prefix FROM global WHERE id = 1`).Scan(&current); err != nil {
		return "", classify("read ident prefix", err)
	}
	return current, nil
}

// NextIdent allocates the next "<prefix>-<n>" ident. Numbers already taken
// by an item (for example one imported with an explicit ident) are
// skipped.
func (t *Tx) NextIdent(ctx context.Context) (string, error) {
	if t.readOnly {
		return "", fmt.Errorf("next ident: %w", errReadOnly)
	}
	for {
		var (
			prefix string
			n      int64
		)
		err := t.tx.QueryRowContext(ctx, `
			UPDATE global SET last_ident = last_ident + 1 WHERE id = 1
			RETURNING ident_prefix, last_ident
		`).Scan(&prefix, &n)
		if errors.Is(err, sql.ErrNoRows) {
			return "", errors.New("next ident: allocator not initialized")
		}
		if err != nil {
			return "", classify("next ident", err)
		}

		ident := fmt.Sprintf("%s-%d", prefix, n)
		var one int
		err = t.tx.QueryRowContext(ctx, `SELECT 1 FROM item WHERE ident = ?`, ident).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ident, nil
		}
		if err != nil {
			return "", classify("next ident", err)
		}
	}
}

// Meta returns the value stored under key and whether it was present.
func (t *Tx) Meta(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := t.tx.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, classify("read meta", err)
	}
	return v, true, nil
}

// SetMeta stores value under key.
func (t *Tx) SetMeta(ctx context.Context, key, value string) error {
	_, err := t.exec(ctx, "write meta", `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// ItemGeneration returns the number of item writes ever committed to the
// database. It is 0 for a database with no item writes.
func (t *Tx) ItemGeneration(ctx context.Context) (int64, error) {
	v, ok, err := t.Meta(ctx, metaItemGeneration)
	if err != nil || !ok {
		return 0, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", metaItemGeneration, v, err)
	}
	return n, nil
}

// bumpItemGeneration is called inside every item write so readers on other
// connections see the change on their next listing.
func (t *Tx) bumpItemGeneration(ctx context.Context) error {
	_, err := t.exec(ctx, "bump item generation", `
		INSERT INTO meta (key, value) VALUES (?, '1')
		ON CONFLICT(key) DO UPDATE SET value = CAST(CAST(value AS INTEGER) + 1 AS TEXT)
	`, metaItemGeneration)
	return err
}
