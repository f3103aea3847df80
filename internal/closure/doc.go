// Package closure derives the transitive closure of same-kind relation edges.
//
// Two strategies implement Strategy:
//
//   - View recomputes reachability on every query with a breadth-first walk
//     from the queried node. Nothing is stored; cost is proportional to the
//     reachable subgraph.
//   - Materialized keeps a closure table. Inserting edge (a,b,k) adds
//     (x,y,k) for every x in {a} ∪ ancestors(a) and y in {b} ∪ descendants(b).
//     A deletion can invalidate entries that had alternate paths, so it
//     triggers a full rebuild of kind k, or, with DeferRebuild, marks k dirty
//     so a later RebuildDirty batch can do it.
//
// Materialized is the default. Dirty kinds are answered by the View walk so
// that reads never observe a stale table and never write.
//
// Both strategies treat each kind's graph as a DAG. Materialized rejects an
// insert that would close a cycle, and a rebuild that meets a node already on
// its current DFS path aborts with a rebuild failure wrapping CycleDetected.
package closure
