// Package hierarchy derives the canonical depth-first order of items from
// their parent links.
//
// Every item gets a level (0 for roots) and a hierarchy key:
//
//	root:  sort + "!" + ident
//	child: parent.key + "!" + sort + "!" + ident
//
// Sorting by key gives a pre-order traversal in which siblings are ordered by
// (sort, ident). This only holds because model.ValidateItem keeps "!" and
// lower bytes out of idents and sort keys.
//
// The order is recomputed in full on each read; see Cache for memoization.
package hierarchy

import (
	"sort"
	"strings"

	"github.com/roach88/fanling-index/internal/model"
)

// Entry is one row of an ordered listing.
type Entry struct {
	Item  model.Item `json:"item"`
	Level int        `json:"level"`
	Key   string     `json:"hier_sort_key"`
}

// Order computes the hierarchy listing for items, ascending by key.
//
// Levels and keys are propagated breadth-first from the roots over all
// items, so archived parents still position their live children. With
// openOnly, archived items are then dropped from the result.
//
// Items never reached from a root are diagnosed: a dangling parent yields
// an OrphanParent error and a loop yields CycleDetected. With openOnly,
// unreached archived items are ignored because the acyclicity invariant only
// covers live items.
func Order(items []model.Item, openOnly bool) ([]Entry, error) {
	byIdent := make(map[string]int, len(items))
	for i, it := range items {
		if _, dup := byIdent[it.Ident]; dup {
			return nil, model.NewInvalidItem(it.Ident, "duplicate ident in listing input")
		}
		byIdent[it.Ident] = i
	}

	children := make(map[string][]int)
	queue := make([]int, 0, len(items))
	entries := make([]Entry, len(items))
	assigned := make([]bool, len(items))

	for i, it := range items {
		if it.IsRoot() {
			entries[i] = Entry{Item: it, Level: 0, Key: it.Sort + model.KeySeparator + it.Ident}
			assigned[i] = true
			queue = append(queue, i)
			continue
		}
		children[it.Parent] = append(children[it.Parent], i)
	}

	for head := 0; head < len(queue); head++ {
		p := entries[queue[head]]
		for _, c := range children[p.Item.Ident] {
			if assigned[c] {
				continue
			}
			it := items[c]
			entries[c] = Entry{
				Item:  it,
				Level: p.Level + 1,
				Key:   p.Key + model.KeySeparator + it.Sort + model.KeySeparator + it.Ident,
			}
			assigned[c] = true
			queue = append(queue, c)
		}
	}

	out := make([]Entry, 0, len(queue))
	for i := range items {
		if !assigned[i] {
			if openOnly && !items[i].Open() {
				continue
			}
			return nil, diagnose(items, byIdent, i)
		}
		if openOnly && !items[i].Open() {
			continue
		}
		out = append(out, entries[i])
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// diagnose explains why items[start] was never reached from a root.
// The walk is bounded by len(items) steps.
func diagnose(items []model.Item, byIdent map[string]int, start int) error {
	pos := make(map[int]int, 8) // item index → position in path
	var path []string
	cur := start
	for steps := 0; steps <= len(items); steps++ {
		it := items[cur]
		pos[cur] = len(path)
		path = append(path, it.Ident)

		if it.IsRoot() {
			// Unreachable for a root; kept so the walk can never spin.
			break
		}
		next, ok := byIdent[it.Parent]
		if !ok {
			return model.NewOrphanParent(it.Ident, it.Parent)
		}
		if at, seen := pos[next]; seen {
			cycle := append(append([]string{}, path[at:]...), items[next].Ident)
			return model.NewCycleError(items[start].Ident, "", cycle)
		}
		cur = next
	}
	return model.NewCycleError(items[start].Ident, "", path)
}

// Children returns the direct children of parent in listing order.
func Children(entries []Entry, parent string) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Item.Parent == parent {
			out = append(out, e)
		}
	}
	return out
}

// Subtree returns root and all its descendants in listing order.
// The descendants are exactly the entries whose key extends root's key.
func Subtree(entries []Entry, root string) []Entry {
	var prefix string
	for _, e := range entries {
		if e.Item.Ident == root {
			prefix = e.Key
			break
		}
	}
	if prefix == "" {
		return nil
	}
	var out []Entry
	for _, e := range entries {
		if e.Key == prefix || strings.HasPrefix(e.Key, prefix+model.KeySeparator) {
			out = append(out, e)
		}
	}
	return out
}
