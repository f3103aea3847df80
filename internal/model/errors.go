package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes index errors.
type ErrorCode string

const (
	// ErrCodeDuplicateRelation indicates (kind, from, to) already exists.
	ErrCodeDuplicateRelation ErrorCode = "DUPLICATE_RELATION"

	// ErrCodeCycleDetected indicates a parent chain or relation traversal
	// failed to terminate within the live item/edge count.
	ErrCodeCycleDetected ErrorCode = "CYCLE_DETECTED"

	// ErrCodeOrphanParent indicates an item references a missing parent, or
	// a delete would leave children pointing at a missing parent.
	ErrCodeOrphanParent ErrorCode = "ORPHAN_PARENT"

	// ErrCodeStoreIO indicates the underlying persistence failed.
	// This is the only transient code.
	ErrCodeStoreIO ErrorCode = "STORE_IO_FAILURE"

	// ErrCodeClosureRebuild indicates a materialized rebuild was aborted.
	ErrCodeClosureRebuild ErrorCode = "CLOSURE_REBUILD_FAILURE"

	// ErrCodeInvalidItem indicates an item failed key validation.
	ErrCodeInvalidItem ErrorCode = "INVALID_ITEM"

	// ErrCodeNotFound indicates the addressed record does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// IndexError is the typed failure surfaced by every index operation.
// Structural codes are never retried internally.
type IndexError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Ident is the item the error concerns, when there is one.
	Ident string

	// Kind is the relation kind, for relation and closure errors.
	Kind string

	// Path is the offending cycle, first element repeated at the end.
	Path []string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *IndexError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	switch {
	case e.Ident != "" && e.Kind != "":
		fmt.Fprintf(&b, " (ident=%s, kind=%s)", e.Ident, e.Kind)
	case e.Ident != "":
		fmt.Fprintf(&b, " (ident=%s)", e.Ident)
	case e.Kind != "":
		fmt.Fprintf(&b, " (kind=%s)", e.Kind)
	}
	if len(e.Path) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.Path, " → "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap exposes the cause.
func (e *IndexError) Unwrap() error { return e.Err }

// CodeOf returns the code of the first IndexError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var ie *IndexError
	if errors.As(err, &ie) {
		return ie.Code
	}
	return ""
}

// IsDuplicateRelation reports whether err is a duplicate relation error.
func IsDuplicateRelation(err error) bool { return hasCode(err, ErrCodeDuplicateRelation) }

// IsCycle reports whether err is, or wraps, a cycle detection error.
func IsCycle(err error) bool { return hasCode(err, ErrCodeCycleDetected) }

// IsOrphanParent reports whether err is an orphan parent error.
func IsOrphanParent(err error) bool { return hasCode(err, ErrCodeOrphanParent) }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsTransient reports whether the caller may retry err with backoff.
func IsTransient(err error) bool { return CodeOf(err) == ErrCodeStoreIO }

// hasCode walks the whole chain so a rebuild failure wrapping a cycle
// matches both codes.
func hasCode(err error, code ErrorCode) bool {
	for err != nil {
		var ie *IndexError
		if !errors.As(err, &ie) {
			return false
		}
		if ie.Code == code {
			return true
		}
		err = ie.Err
	}
	return false
}

// NewDuplicateRelation creates the error for an existing (kind, from, to).
func NewDuplicateRelation(from, to, kind string) *IndexError {
	return &IndexError{
		Code:    ErrCodeDuplicateRelation,
		Message: fmt.Sprintf("relation %s → %s already exists", from, to),
		Ident:   from,
		Kind:    kind,
	}
}

// NewCycleError creates a cycle error carrying the offending path.
func NewCycleError(ident, kind string, path []string) *IndexError {
	msg := "parent chain does not terminate at a root"
	if kind != "" {
		msg = "relation traversal revisited a node on its own path"
	}
	return &IndexError{
		Code:    ErrCodeCycleDetected,
		Message: msg,
		Ident:   ident,
		Kind:    kind,
		Path:    path,
	}
}

// NewOrphanParent creates the error for a dangling parent reference.
func NewOrphanParent(ident, parent string) *IndexError {
	return &IndexError{
		Code:    ErrCodeOrphanParent,
		Message: fmt.Sprintf("parent %q does not exist", parent),
		Ident:   ident,
	}
}

// NewHasChildren creates the error for deleting an item that is still a
// parent. It is INVALID_ITEM; ORPHAN_PARENT is only for dangling references.
func NewHasChildren(ident, child string) *IndexError {
	return &IndexError{
		Code:    ErrCodeInvalidItem,
		Message: fmt.Sprintf("item has children (first %q)", child),
		Ident:   ident,
	}
}

// NewStoreIOError wraps a persistence failure.
func NewStoreIOError(op string, err error) *IndexError {
	return &IndexError{
		Code:    ErrCodeStoreIO,
		Message: op,
		Err:     err,
	}
}

// NewRebuildError wraps the reason a materialized rebuild was aborted.
func NewRebuildError(kind string, err error) *IndexError {
	return &IndexError{
		Code:    ErrCodeClosureRebuild,
		Message: "closure rebuild aborted",
		Kind:    kind,
		Err:     err,
	}
}

// NewInvalidItem creates a validation error.
func NewInvalidItem(ident, reason string) *IndexError {
	return &IndexError{
		Code:    ErrCodeInvalidItem,
		Message: reason,
		Ident:   ident,
	}
}

// NewNotFound creates a not-found error.
func NewNotFound(what, ident string) *IndexError {
	return &IndexError{
		Code:    ErrCodeNotFound,
		Message: what + " not found",
		Ident:   ident,
	}
}
