package closure

import (
	"fmt"
	"sort"
	"strings"
)

// CycleReport describes one strongly connected component of a kind's
// graph that contains a cycle.
type CycleReport struct {
	Kind    string   `json:"kind"`
	Path    []string `json:"path"`    // e.g. ["a", "b", "a"]
	Message string   `json:"message"` // human-readable description
}

// FindCycles reports every cycle in g.
//
// Strongly connected components are found with Tarjan's algorithm; each
// component with more than one node, or a single node with a self-loop, is
// reported with one cycle path through it. A DAG returns an empty list.
// Reports are sorted by their first path element.
func FindCycles(kind string, g Graph) []CycleReport {
	reports := []CycleReport{}
	for _, scc := range tarjanSCC(g) {
		if len(scc) == 1 && !hasSelfLoop(scc[0], g) {
			continue
		}
		sort.Strings(scc)
		path := reconstructCyclePath(scc, g)
		reports = append(reports, CycleReport{
			Kind:    kind,
			Path:    path,
			Message: fmt.Sprintf("cycle in %q relations: %s", kind, strings.Join(path, " → ")),
		})
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Path[0] < reports[j].Path[0] })
	return reports
}

func hasSelfLoop(node string, g Graph) bool {
	for _, n := range g[node] {
		if n == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Single-node components without self-loops are not cycles.
func tarjanSCC(g Graph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range g.nodes() {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// reconstructCyclePath returns the shortest cycle through the smallest
// member, found breadth-first over edges that stay inside the component.
func reconstructCyclePath(scc []string, g Graph) []string {
	start := scc[0]
	if len(scc) == 1 {
		return []string{start, start}
	}

	members := make(map[string]bool, len(scc))
	for _, n := range scc {
		members[n] = true
	}

	prev := make(map[string]string)
	seen := map[string]bool{start: true}
	queue := []string{start}
	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		for _, n := range g[cur] {
			if !members[n] {
				continue
			}
			if n == start {
				var rev []string
				for at := cur; at != start; at = prev[at] {
					rev = append(rev, at)
				}
				path := []string{start}
				for i := len(rev) - 1; i >= 0; i-- {
					path = append(path, rev[i])
				}
				return append(path, start)
			}
			if !seen[n] {
				seen[n] = true
				prev[n] = cur
				queue = append(queue, n)
			}
		}
	}
	return append(append([]string{}, scc...), start)
}
