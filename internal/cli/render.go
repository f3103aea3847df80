package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/roach88/fanling-index/internal/hierarchy"
	"github.com/roach88/fanling-index/internal/model"
)

func writeItem(w io.Writer, it model.Item) {
	fmt.Fprintf(w, "ident:     %s\n", it.Ident)
	fmt.Fprintf(w, "type:      %s\n", it.TypeName)
	if it.Name != "" {
		fmt.Fprintf(w, "name:      %s\n", it.Name)
	}
	fmt.Fprintf(w, "lifecycle: %s\n", it.Lifecycle)
	if it.Parent != "" {
		fmt.Fprintf(w, "parent:    %s\n", it.Parent)
	}
	fmt.Fprintf(w, "sort:      %s\n", it.Sort)
	fmt.Fprintf(w, "classify:  %s\n", it.Classify)
	if s := specialNames(it.Special); s != "" {
		fmt.Fprintf(w, "special:   %s\n", s)
	}
	if it.Targeted {
		fmt.Fprintln(w, "targeted:  yes")
	}
}

func specialNames(s model.Specials) string {
	var names []string
	for _, k := range []model.SpecialKind{model.SpecialParent, model.SpecialContext} {
		if s.Has(k) {
			names = append(names, k.String())
		}
	}
	return strings.Join(names, ",")
}

// writeEntries prints one listing row per line, indented by level.
func writeEntries(w io.Writer, entries []hierarchy.Entry) {
	for _, e := range entries {
		line := strings.Repeat("  ", e.Level) + e.Item.Ident
		if e.Item.Name != "" {
			line += "  " + e.Item.Name
		}
		if !e.Item.Open() {
			line += "  (archived)"
		}
		fmt.Fprintln(w, line)
	}
}

func writeTask(w io.Writer, t model.Task) {
	fmt.Fprintf(w, "ident:      %s\n", t.Ident)
	fmt.Fprintf(w, "status:     %s\n", t.Status)
	fmt.Fprintf(w, "priority:   %d\n", t.Priority)
	fmt.Fprintf(w, "show_after: %s\n", t.ShowAfter.Format(time.RFC3339))
	if t.Deadline != nil {
		fmt.Fprintf(w, "deadline:   %s\n", t.Deadline.Format(time.RFC3339))
	}
	if t.WhenClosed != nil {
		fmt.Fprintf(w, "closed:     %s\n", t.WhenClosed.Format(time.RFC3339))
	}
	if t.Context != "" {
		fmt.Fprintf(w, "context:    %s\n", t.Context)
	}
	if t.Blocked {
		fmt.Fprintln(w, "blocked:    yes")
	}
}

// writeTaskLine prints a task as one row of the visible list.
func writeTaskLine(w io.Writer, t model.Task) {
	line := fmt.Sprintf("%s  p%d", t.Ident, t.Priority)
	if t.Deadline != nil {
		line += "  due " + t.Deadline.Format(time.RFC3339)
	}
	if t.Context != "" {
		line += "  @" + t.Context
	}
	fmt.Fprintln(w, line)
}

func writeLines(w io.Writer, lines []string) {
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}
