package closure

import (
	"context"
	"sort"

	"github.com/roach88/fanling-index/internal/model"
)

// memTable is an in-memory TableWriter for exercising strategies without
// a database.
type memTable struct {
	edges   map[model.ClosureEntry]bool
	closure map[model.ClosureEntry]bool
	dirty   map[string]bool
}

func newMemTable() *memTable {
	return &memTable{
		edges:   make(map[model.ClosureEntry]bool),
		closure: make(map[model.ClosureEntry]bool),
		dirty:   make(map[string]bool),
	}
}

// insert mirrors the store: write the edge, then let the strategy react.
func (m *memTable) insert(ctx context.Context, s Strategy, from, to, kind string) error {
	key := model.ClosureEntry{From: from, To: to, Kind: kind}
	m.edges[key] = true
	if err := s.OnInsert(ctx, m, model.Relation{From: from, To: to, Kind: kind}); err != nil {
		delete(m.edges, key)
		return err
	}
	return nil
}

func (m *memTable) remove(ctx context.Context, s Strategy, from, to, kind string) error {
	delete(m.edges, model.ClosureEntry{From: from, To: to, Kind: kind})
	return s.OnDelete(ctx, m, from, to, kind)
}

func (m *memTable) EdgesFrom(ctx context.Context, ident, kind string) ([]string, error) {
	var out []string
	for e := range m.edges {
		if e.Kind == kind && e.From == ident {
			out = append(out, e.To)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memTable) EdgesTo(ctx context.Context, ident, kind string) ([]string, error) {
	var out []string
	for e := range m.edges {
		if e.Kind == kind && e.To == ident {
			out = append(out, e.From)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memTable) KindEdges(ctx context.Context, kind string) ([]model.Relation, error) {
	var out []model.Relation
	for e := range m.edges {
		if e.Kind == kind {
			out = append(out, model.Relation{From: e.From, To: e.To, Kind: e.Kind})
		}
	}
	return out, nil
}

func (m *memTable) ClosureHas(ctx context.Context, from, to, kind string) (bool, error) {
	return m.closure[model.ClosureEntry{From: from, To: to, Kind: kind}], nil
}

func (m *memTable) ClosureFrom(ctx context.Context, ident, kind string) ([]string, error) {
	var out []string
	for e := range m.closure {
		if e.Kind == kind && e.From == ident {
			out = append(out, e.To)
		}
	}
	return out, nil
}

func (m *memTable) ClosureTo(ctx context.Context, ident, kind string) ([]string, error) {
	var out []string
	for e := range m.closure {
		if e.Kind == kind && e.To == ident {
			out = append(out, e.From)
		}
	}
	return out, nil
}

func (m *memTable) IsDirty(ctx context.Context, kind string) (bool, error) {
	return m.dirty[kind], nil
}

func (m *memTable) ClosureInsert(ctx context.Context, entries []model.ClosureEntry) error {
	for _, e := range entries {
		m.closure[e] = true
	}
	return nil
}

func (m *memTable) ClosureReplaceKind(ctx context.Context, kind string, entries []model.ClosureEntry) error {
	for e := range m.closure {
		if e.Kind == kind {
			delete(m.closure, e)
		}
	}
	return m.ClosureInsert(ctx, entries)
}

func (m *memTable) MarkDirty(ctx context.Context, kind string) error {
	m.dirty[kind] = true
	return nil
}

func (m *memTable) ClearDirty(ctx context.Context, kind string) error {
	delete(m.dirty, kind)
	return nil
}

// closureOfKind lists the table's entries for kind.
func (m *memTable) closureOfKind(kind string) []model.ClosureEntry {
	var out []model.ClosureEntry
	for e := range m.closure {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// bruteReachable is the reference: plain BFS over the base edges.
func bruteReachable(edges map[model.ClosureEntry]bool, from, to, kind string) bool {
	seen := map[string]bool{}
	queue := []string{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for e := range edges {
			if e.Kind != kind || e.From != cur {
				continue
			}
			if e.To == to {
				return true
			}
			if !seen[e.To] {
				seen[e.To] = true
				queue = append(queue, e.To)
			}
		}
	}
	return false
}
