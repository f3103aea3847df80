package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/fanling-index/internal/model"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testItem creates a live item with minimal required fields.
func testItem(ident, parent, sort string) model.Item {
	return model.Item{
		Ident:    ident,
		TypeName: "note",
		Name:     "item " + ident,
		Parent:   parent,
		Sort:     sort,
	}
}

// mustUpdate runs fn in a write transaction and fails the test on error.
func mustUpdate(t *testing.T, s *Store, fn func(*Tx) error) {
	t.Helper()
	if err := s.Update(context.Background(), fn); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
}

func putItems(t *testing.T, s *Store, items ...model.Item) {
	t.Helper()
	mustUpdate(t, s, func(tx *Tx) error {
		for _, it := range items {
			if _, err := tx.PutItem(context.Background(), it); err != nil {
				return err
			}
		}
		return nil
	})
}
