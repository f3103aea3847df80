package index

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/fanling-index/internal/hierarchy"
	"github.com/roach88/fanling-index/internal/model"
	"github.com/roach88/fanling-index/internal/testutil"
)

func testOptions(strategy string) Options {
	return Options{
		Strategy: strategy,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:    testutil.NewDefaultClock(),
		Prefixes: testutil.NewFixedPrefixGenerator("t"),
	}
}

// createTestIndex opens a fresh index in a temp directory.
func createTestIndex(t *testing.T, opts Options) *Index {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.db")
	ix, err := Open(context.Background(), path, opts)
	require.NoError(t, err)
	t.Cleanup(func() { ix.Close() })
	return ix
}

func item(ident, parent, sort string) model.Item {
	return model.Item{Ident: ident, TypeName: "note", Name: ident, Parent: parent, Sort: sort}
}

func put(t *testing.T, ix *Index, items ...model.Item) {
	t.Helper()
	for _, it := range items {
		_, err := ix.PutItem(context.Background(), it)
		require.NoError(t, err)
	}
}

func link(t *testing.T, ix *Index, kind string, pairs ...[2]string) {
	t.Helper()
	for _, p := range pairs {
		require.NoError(t, ix.InsertRelation(context.Background(), p[0], p[1], kind))
	}
}

func idents(entries []hierarchy.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Item.Ident)
	}
	return out
}
