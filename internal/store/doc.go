// Package store provides SQLite-backed durable storage for the fanling
// index: items, base relations, the materialized relation closure, tasks,
// and the ident allocator.
//
// # Transactions
//
// All access goes through Store.Update or Store.View, which hand a *Tx to
// a callback. Update commits when the callback returns nil and rolls back
// otherwise, so a failed mutation never leaves partial rows behind. Tx
// implements closure.TableWriter, so closure maintenance runs inside the
// same transaction as the edge write that triggered it.
//
// # Deterministic reads
//
// Every multi-row query ends in an ORDER BY with COLLATE BINARY on the
// ident columns.
//
// # Errors
//
// SQLite busy/locked and I/O failures surface as model STORE_IO_FAILURE
// errors, which callers may retry. Constraint violations are mapped to the
// structural model codes (DUPLICATE_RELATION, ORPHAN_PARENT,
// CYCLE_DETECTED) and must not be retried.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait on lock contention before SQLITE_BUSY
//   - foreign_keys=ON: task rows follow their item
package store
