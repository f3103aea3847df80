// Package model provides the record types shared by every layer of the
// fanling index: items, relations, tasks and closure entries, together with
// the typed errors the index surfaces to callers.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import model; model imports nothing internal.
//
// Key design constraints:
//   - Idents are immutable once assigned and compared bytewise
//   - Item lifecycle is a tagged state (Live/Archived), persisted as "open"
//   - Idents and sort keys never contain "!" or bytes <= 0x20, which keeps
//     hierarchy key order equal to depth-first order
//   - All JSON tags use snake_case
package model
