package closure

import (
	"sort"

	"github.com/roach88/fanling-index/internal/model"
)

// Graph maps a node to its sorted out-neighbors for one kind.
type Graph map[string][]string

// GraphOf builds the adjacency of edges. Every endpoint is a key, so sinks
// appear with an empty neighbor list.
func GraphOf(edges []model.Relation) Graph {
	g := make(Graph)
	for _, e := range edges {
		g[e.From] = append(g[e.From], e.To)
		if _, ok := g[e.To]; !ok {
			g[e.To] = nil
		}
	}
	for n := range g {
		sort.Strings(g[n])
	}
	return g
}

// nodes returns the graph's nodes in sorted order.
func (g Graph) nodes() []string {
	out := make([]string, 0, len(g))
	for n := range g {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// frame is one level of the explicit DFS stack.
type frame struct {
	node string
	next int // index of the next neighbor to explore
}

const (
	white = iota // not yet visited
	gray         // on the current DFS path
	black        // finished
)

// Build computes the full closure of kind from its base edges.
//
// One iterative depth-first pass colors nodes; meeting a gray node means
// the walk revisited a node on its own path, and Build returns
// CycleDetected with that path. Otherwise nodes finish in post-order, so
// each node's descendant set is the union of its children and their
// already-complete sets.
func Build(kind string, edges []model.Relation) ([]model.ClosureEntry, error) {
	g := GraphOf(edges)
	color := make(map[string]int, len(g))
	var postOrder []string

	for _, root := range g.nodes() {
		if color[root] != white {
			continue
		}
		stack := []frame{{node: root}}
		color[root] = gray
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			neighbors := g[top.node]
			if top.next == len(neighbors) {
				color[top.node] = black
				postOrder = append(postOrder, top.node)
				stack = stack[:len(stack)-1]
				continue
			}
			n := neighbors[top.next]
			top.next++
			switch color[n] {
			case white:
				color[n] = gray
				stack = append(stack, frame{node: n})
			case gray:
				return nil, model.NewCycleError(n, kind, cyclePath(stack, n))
			}
		}
	}

	desc := make(map[string]map[string]struct{}, len(g))
	for _, v := range postOrder {
		set := make(map[string]struct{})
		for _, w := range g[v] {
			set[w] = struct{}{}
			for x := range desc[w] {
				set[x] = struct{}{}
			}
		}
		desc[v] = set
	}

	var entries []model.ClosureEntry
	for _, v := range g.nodes() {
		targets := make([]string, 0, len(desc[v]))
		for y := range desc[v] {
			targets = append(targets, y)
		}
		sort.Strings(targets)
		for _, y := range targets {
			entries = append(entries, model.ClosureEntry{From: v, To: y, Kind: kind})
		}
	}
	return entries, nil
}

// cyclePath extracts the on-path segment from n back to n.
func cyclePath(stack []frame, n string) []string {
	start := 0
	for i, f := range stack {
		if f.node == n {
			start = i
			break
		}
	}
	path := make([]string, 0, len(stack)-start+1)
	for _, f := range stack[start:] {
		path = append(path, f.node)
	}
	return append(path, n)
}
