// Package tasks holds the task state machine and the visibility rules of
// the task list.
//
// A task moves between Open and Closed; Blocked is an overlay that can be
// toggled in either state. The functions here are pure: persistence is the
// store's job. The store's VisibleTasks query is a prefilter; the index
// applies Visible and Less to its rows.
package tasks

import (
	"time"

	"github.com/roach88/fanling-index/internal/model"
)

// New returns an open, unblocked task with the default priority.
func New(ident string, showAfter time.Time) model.Task {
	return model.Task{
		Ident:     ident,
		ShowAfter: showAfter.UTC(),
		Priority:  model.DefaultPriority,
		Status:    model.TaskOpen,
	}
}

// Close moves an open task to Closed and stamps WhenClosed. Closing a
// closed task returns it unchanged and false.
func Close(t model.Task, now time.Time) (model.Task, bool) {
	if t.Status == model.TaskClosed {
		return t, false
	}
	when := now.UTC()
	t.Status = model.TaskClosed
	t.WhenClosed = &when
	return t, true
}

// Reopen moves a closed task back to Open and clears WhenClosed. Reopening
// an open task returns it unchanged and false.
func Reopen(t model.Task) (model.Task, bool) {
	if t.Status != model.TaskClosed {
		return t, false
	}
	t.Status = model.TaskOpen
	t.WhenClosed = nil
	return t, true
}

// SetBlocked sets the blocked overlay. It reports whether the value changed.
func SetBlocked(t model.Task, blocked bool) (model.Task, bool) {
	if t.Blocked == blocked {
		return t, false
	}
	t.Blocked = blocked
	return t, true
}

// Visible reports whether t belongs on the task list at now. The owning
// item's lifecycle is checked separately by the caller.
func Visible(t model.Task, now time.Time) bool {
	return t.Status == model.TaskOpen && !t.Blocked && !t.ShowAfter.After(now)
}

// Less orders tasks by priority, then deadline with missing deadlines
// last, then ident.
func Less(a, b model.Task) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	switch {
	case a.Deadline != nil && b.Deadline == nil:
		return true
	case a.Deadline == nil && b.Deadline != nil:
		return false
	case a.Deadline != nil && !a.Deadline.Equal(*b.Deadline):
		return a.Deadline.Before(*b.Deadline)
	}
	return a.Ident < b.Ident
}
