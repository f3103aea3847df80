package closure

import (
	"context"
	"sort"

	"github.com/roach88/fanling-index/internal/model"
)

// View answers every query by walking the base edges.
type View struct{}

// Name implements Strategy.
func (View) Name() string { return StrategyView }

// OnInsert implements Strategy. Nothing is materialized.
func (View) OnInsert(ctx context.Context, w TableWriter, rel model.Relation) error { return nil }

// OnDelete implements Strategy. Nothing is materialized.
func (View) OnDelete(ctx context.Context, w TableWriter, from, to, kind string) error { return nil }

// Rebuild implements Strategy. Nothing is materialized.
func (View) Rebuild(ctx context.Context, w TableWriter, kind string) error { return nil }

// IsReachable implements Strategy.
func (View) IsReachable(ctx context.Context, r TableReader, from, to, kind string) (bool, error) {
	found := false
	err := walk(ctx, r, from, kind, model.Descendants, func(ident string) bool {
		if ident == to {
			found = true
			return false
		}
		return true
	})
	return found, err
}

// ClosureOf implements Strategy.
func (View) ClosureOf(ctx context.Context, r TableReader, ident, kind string, dir model.Direction) ([]string, error) {
	return Reach(ctx, r, ident, kind, dir)
}

// Reach returns, sorted, every node reachable from start by a non-empty
// path of kind edges in direction dir. start itself is included only if it
// lies on a cycle.
func Reach(ctx context.Context, r EdgeReader, start, kind string, dir model.Direction) ([]string, error) {
	var out []string
	err := walk(ctx, r, start, kind, dir, func(ident string) bool {
		out = append(out, ident)
		return true
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// walk runs a breadth-first traversal from start and calls visit once per
// newly reached node until visit returns false. The visited set bounds the
// walk even if the graph has cycles.
func walk(ctx context.Context, r EdgeReader, start, kind string, dir model.Direction, visit func(string) bool) error {
	next := r.EdgesFrom
	if dir == model.Ancestors {
		next = r.EdgesTo
	}

	visited := make(map[string]bool)
	queue := []string{start}
	for head := 0; head < len(queue); head++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		neighbors, err := next(ctx, queue[head], kind)
		if err != nil {
			return err
		}
		for _, n := range neighbors {
			if visited[n] {
				continue
			}
			visited[n] = true
			if !visit(n) {
				return nil
			}
			queue = append(queue, n)
		}
	}
	return nil
}

// findPath returns the node sequence of a shortest kind path from -> to,
// or nil if there is none.
func findPath(ctx context.Context, r EdgeReader, from, to, kind string) ([]string, error) {
	prev := map[string]string{}
	seen := map[string]bool{from: true}
	queue := []string{from}
	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		neighbors, err := r.EdgesFrom(ctx, cur, kind)
		if err != nil {
			return nil, err
		}
		for _, n := range neighbors {
			if seen[n] {
				continue
			}
			seen[n] = true
			prev[n] = cur
			if n == to {
				path := []string{to}
				for at := to; at != from; {
					at = prev[at]
					path = append(path, at)
				}
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return path, nil
			}
			queue = append(queue, n)
		}
	}
	return nil, nil
}
