package model

import (
	"fmt"
	"time"
)

// Lifecycle is the tagged lifecycle state of an Item.
// Archived items are soft-deleted: they stay in the table so they can keep
// positioning their children, but open-only listings skip them.
type Lifecycle uint8

const (
	// Live items are open and appear in open-only listings.
	Live Lifecycle = iota
	// Archived items have been closed.
	Archived
)

// Open reports whether the lifecycle corresponds to the persisted open flag.
func (l Lifecycle) Open() bool { return l == Live }

// LifecycleFromOpen maps the persisted open column back to a Lifecycle.
func LifecycleFromOpen(open bool) Lifecycle {
	if open {
		return Live
	}
	return Archived
}

func (l Lifecycle) String() string {
	switch l {
	case Live:
		return "live"
	case Archived:
		return "archived"
	default:
		return fmt.Sprintf("lifecycle(%d)", uint8(l))
	}
}

// Classify is the secondary categorical tag on an item.
type Classify string

const (
	ClassifyNormal Classify = "normal"
	ClassifyOther  Classify = "other"
)

// Known reports whether c is one of the recognised classifications.
// Unknown values are preserved, not rejected.
func (c Classify) Known() bool {
	return c == ClassifyNormal || c == ClassifyOther
}

// SpecialKind names one bit of an item's special flags.
type SpecialKind uint8

const (
	// SpecialParent marks an item that may be chosen as a parent.
	SpecialParent SpecialKind = iota
	// SpecialContext marks an item that may be used as a task context.
	SpecialContext
)

// ParseSpecialKind converts "parent" or "context" into a SpecialKind.
func ParseSpecialKind(s string) (SpecialKind, error) {
	switch s {
	case "parent":
		return SpecialParent, nil
	case "context":
		return SpecialContext, nil
	default:
		return 0, fmt.Errorf("unknown special kind %q", s)
	}
}

func (k SpecialKind) String() string {
	switch k {
	case SpecialParent:
		return "parent"
	case SpecialContext:
		return "context"
	default:
		return fmt.Sprintf("special(%d)", uint8(k))
	}
}

// Specials is a bitset indexed by SpecialKind.
type Specials uint8

// Has reports whether bit k is set.
func (s Specials) Has(k SpecialKind) bool { return s&(1<<k) != 0 }

// With returns s with bit k set.
func (s Specials) With(k SpecialKind) Specials { return s | (1 << k) }

// Mask returns the single-bit mask for k.
func (k SpecialKind) Mask() Specials { return 1 << k }

// Item is one row of the item table.
type Item struct {
	Ident     string    `json:"ident"`
	TypeName  string    `json:"type_name"`
	Name      string    `json:"name"`
	Lifecycle Lifecycle `json:"lifecycle"`
	Parent    string    `json:"parent,omitempty"` // empty = root
	Sort      string    `json:"sort"`
	Classify  Classify  `json:"classify"`
	Special   Specials  `json:"special"`
	Targeted  bool      `json:"targeted"`
}

// IsRoot reports whether the item has no parent.
func (it Item) IsRoot() bool { return it.Parent == "" }

// Open reports whether the item is live.
func (it Item) Open() bool { return it.Lifecycle.Open() }

// Relation is a directed, kinded edge between two idents.
type Relation struct {
	From        string    `json:"from_ident"`
	To          string    `json:"to_ident"`
	Kind        string    `json:"kind"`
	WhenCreated time.Time `json:"when_created"`
}

// ClosureEntry states that a non-empty same-kind path leads From to To.
type ClosureEntry struct {
	From string `json:"from_ident"`
	To   string `json:"to_ident"`
	Kind string `json:"kind"`
}

// Direction selects which side of the closure to enumerate.
type Direction uint8

const (
	// Descendants follows edges from→to.
	Descendants Direction = iota
	// Ancestors follows edges to→from.
	Ancestors
)

func (d Direction) String() string {
	if d == Ancestors {
		return "ancestors"
	}
	return "descendants"
}

// TaskStatus is the persisted status of a task.
type TaskStatus string

const (
	TaskOpen   TaskStatus = "open"
	TaskClosed TaskStatus = "closed"
)

// ParseTaskStatus accepts "open", "closed" and the empty string (open).
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch s {
	case "", "open", "Open":
		return TaskOpen, nil
	case "closed", "Closed":
		return TaskClosed, nil
	default:
		return "", fmt.Errorf("unknown task status %q", s)
	}
}

// DefaultPriority is assigned to new tasks.
const DefaultPriority = 10

// Task extends the Item with the same ident with scheduling attributes.
// WhenClosed is non-nil iff Status is TaskClosed.
type Task struct {
	Ident      string     `json:"ident"`
	ShowAfter  time.Time  `json:"show_after"`
	Deadline   *time.Time `json:"deadline,omitempty"`
	WhenClosed *time.Time `json:"when_closed,omitempty"`
	Context    string     `json:"context"`
	Priority   int        `json:"priority"`
	Status     TaskStatus `json:"status"`
	Blocked    bool       `json:"blocked"`
}

// MarshalText renders the lifecycle as "live" or "archived".
func (l Lifecycle) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText accepts "live"/"open" and "archived"/"closed".
func (l *Lifecycle) UnmarshalText(b []byte) error {
	switch string(b) {
	case "live", "open":
		*l = Live
	case "archived", "closed":
		*l = Archived
	default:
		return fmt.Errorf("unknown lifecycle %q", b)
	}
	return nil
}
