// Package harness runs index scenarios described in YAML and records a
// plain-text transcript of every step and assertion.
//
// # Scenario Format
//
//	name: parent_and_reach
//	description: "Ordering and reachability on a small tree"
//	config:
//	  strategy: materialized      # or view
//	  defer_rebuild: false
//	  ident_prefix: t
//	  start: 2024-01-01T00:00:00Z # clock start, RFC3339
//	steps:
//	  - op: put_item
//	    ident: A
//	    sort: "1"
//	  - op: insert_relation
//	    from: A
//	    to: B
//	    kind: child
//	  - op: insert_relation
//	    from: B
//	    to: A
//	    kind: child
//	    expect_error: CYCLE_DETECTED
//	assertions:
//	  - type: ordered_items
//	    expect: [A, B]
//	  - type: reachable
//	    from: A
//	    to: B
//	    kind: child
//	    reachable: true
//
// Times in steps and assertions are RFC3339 or an offset from the clock
// start such as "+2h" or "-30m".
//
// # Step Ops
//
//   - put_item, delete_item, new_ident
//   - insert_relation, delete_relation
//   - put_task, close_task, reopen_task, block_task, unblock_task
//   - rebuild (one kind), rebuild_dirty
//
// # Assertion Types
//
//   - ordered_items: idents in listing order (open_only optional)
//   - reachable: is_reachable result
//   - closure: sorted descendants or ancestors (direction: up for ancestors)
//   - visible_tasks: idents visible at "at"
//   - special: live items with a special bit (kind: parent|context)
//   - children: live direct children of ident
//   - cycles: cycle paths of kind, as reported by the cycle checker
//
// # Golden Transcripts
//
// RunWithGolden compares the transcript against
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
