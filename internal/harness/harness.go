package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/roach88/fanling-index/internal/index"
	"github.com/roach88/fanling-index/internal/model"
	"github.com/roach88/fanling-index/internal/tasks"
	"github.com/roach88/fanling-index/internal/testutil"
)

// Harness executes one scenario against one index.
type Harness struct {
	ix    *index.Index
	clock *testutil.DeterministicClock
	start time.Time
}

// Run executes a scenario in a fresh in-memory database and returns its
// transcript. The returned error covers setup problems only; failed steps
// and assertions are reported in the Result.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	return RunAt(ctx, scenario, ":memory:", nil)
}

// RunAt is Run against the database at path, logging to logger (nil
// discards logs).
func RunAt(ctx context.Context, scenario *Scenario, path string, logger *slog.Logger) (*Result, error) {
	start, err := scenario.start()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	clock := testutil.NewDeterministicClock(start, time.Second)

	ix, err := index.Open(ctx, path, index.Options{
		IdentPrefix:  scenario.Config.IdentPrefix,
		Strategy:     scenario.Config.Strategy,
		DeferRebuild: scenario.Config.DeferRebuild,
		Logger:       logger,
		Clock:        clock,
		Prefixes:     testutil.NewFixedPrefixGenerator(""),
	})
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer ix.Close()

	h := &Harness{ix: ix, clock: clock, start: start}
	result := NewResult()
	result.logf("scenario %s (%s)", scenario.Name, ix.Strategy())

	for i, step := range scenario.Steps {
		h.runStep(ctx, i+1, step, result)
	}
	for i, a := range scenario.Assertions {
		h.runAssertion(ctx, i+1, a, result)
	}
	return result, nil
}

func (h *Harness) runStep(ctx context.Context, n int, step Step, result *Result) {
	detail, err := h.execute(ctx, step)
	label := fmt.Sprintf("step %d %s %s", n, step.Op, describeStep(step))

	switch {
	case err == nil && step.ExpectError == "":
		result.logf("%s: ok%s", label, detail)
	case err == nil:
		result.logf("%s: ok (expected %s)", label, step.ExpectError)
		result.AddError("step %d: expected %s, got success", n, step.ExpectError)
	default:
		code := errorCode(err)
		if code == step.ExpectError {
			result.logf("%s: %s (expected)", label, code)
			return
		}
		result.logf("%s: %s (unexpected)", label, code)
		result.AddError("step %d: %v", n, err)
	}
}

// execute performs the step and returns extra transcript detail.
func (h *Harness) execute(ctx context.Context, s Step) (string, error) {
	switch s.Op {
	case OpPutItem:
		it, err := stepItem(s)
		if err != nil {
			return "", err
		}
		_, err = h.ix.PutItem(ctx, it)
		return "", err

	case OpDeleteItem:
		return "", h.ix.DeleteItem(ctx, s.Ident)

	case OpNewIdent:
		id, err := h.ix.NewIdent(ctx)
		return " " + id, err

	case OpInsertRelation:
		return "", h.ix.InsertRelation(ctx, s.From, s.To, s.Kind)

	case OpDeleteRelation:
		removed, err := h.ix.DeleteRelation(ctx, s.From, s.To, s.Kind)
		return changedWord(removed, "removed", "absent"), err

	case OpPutTask:
		task, err := h.stepTask(s)
		if err != nil {
			return "", err
		}
		return "", h.ix.PutTask(ctx, task)

	case OpCloseTask:
		_, changed, err := h.ix.CloseTask(ctx, s.Ident)
		return changedWord(changed, "changed", "unchanged"), err

	case OpReopenTask:
		_, changed, err := h.ix.ReopenTask(ctx, s.Ident)
		return changedWord(changed, "changed", "unchanged"), err

	case OpBlockTask, OpUnblockTask:
		_, changed, err := h.ix.SetBlocked(ctx, s.Ident, s.Op == OpBlockTask)
		return changedWord(changed, "changed", "unchanged"), err

	case OpRebuild:
		return "", h.ix.RebuildClosure(ctx, s.Kind)

	case OpRebuildDirty:
		kinds, err := h.ix.RebuildDirty(ctx)
		return " " + formatList(kinds), err

	default:
		return "", fmt.Errorf("unknown op %q", s.Op)
	}
}

func stepItem(s Step) (model.Item, error) {
	it := model.Item{
		Ident:     s.Ident,
		TypeName:  s.Type,
		Name:      s.Name,
		Parent:    s.Parent,
		Sort:      s.Sort,
		Lifecycle: model.LifecycleFromOpen(!s.Archived),
		Classify:  model.Classify(s.Classify),
		Targeted:  s.Targeted,
	}
	if it.TypeName == "" {
		it.TypeName = "note"
	}
	for _, name := range s.Special {
		k, err := model.ParseSpecialKind(name)
		if err != nil {
			return model.Item{}, err
		}
		it.Special = it.Special.With(k)
	}
	return it, nil
}

func (h *Harness) stepTask(s Step) (model.Task, error) {
	showAfter := h.start
	if s.ShowAfter != "" {
		t, err := parseTime(s.ShowAfter, h.start)
		if err != nil {
			return model.Task{}, fmt.Errorf("show_after: %w", err)
		}
		showAfter = t
	}
	task := tasks.New(s.Ident, showAfter)
	if s.Deadline != "" {
		d, err := parseTime(s.Deadline, h.start)
		if err != nil {
			return model.Task{}, fmt.Errorf("deadline: %w", err)
		}
		task.Deadline = &d
	}
	if s.Priority != nil {
		task.Priority = *s.Priority
	}
	task.Context = s.Context
	task.Blocked = s.Blocked
	return task, nil
}

func (h *Harness) runAssertion(ctx context.Context, n int, a Assertion, result *Result) {
	label, got, want, err := h.evaluate(ctx, a)
	prefix := fmt.Sprintf("assert %d %s", n, label)
	if err != nil {
		result.logf("%s: %s", prefix, errorCode(err))
		result.AddError("assertion %d (%s): %v", n, a.Type, err)
		return
	}
	if reflect.DeepEqual(got, want) {
		result.logf("%s = %s PASS", prefix, formatValue(got))
		return
	}
	result.logf("%s = %s FAIL (want %s)", prefix, formatValue(got), formatValue(want))
	result.AddError("assertion %d (%s): got %s, want %s", n, a.Type, formatValue(got), formatValue(want))
}

// evaluate runs the assertion's query and returns its label, the actual
// value and the expected value.
func (h *Harness) evaluate(ctx context.Context, a Assertion) (string, any, any, error) {
	want := a.Expect
	if want == nil {
		want = []string{}
	}

	switch a.Type {
	case AssertOrderedItems:
		mode := "all"
		if a.OpenOnly {
			mode = "open"
		}
		entries, err := h.ix.OrderedItems(ctx, a.OpenOnly)
		got := []string{}
		for _, e := range entries {
			got = append(got, e.Item.Ident)
		}
		return "ordered_items " + mode, got, want, err

	case AssertReachable:
		ok, err := h.ix.IsReachable(ctx, a.From, a.To, a.Kind)
		return fmt.Sprintf("reachable %s->%s %s", a.From, a.To, a.Kind), ok, *a.Reachable, err

	case AssertClosure:
		dir, word := model.Descendants, "down"
		if a.Direction == "up" {
			dir, word = model.Ancestors, "up"
		}
		got, err := h.ix.ClosureOf(ctx, a.Ident, a.Kind, dir)
		return fmt.Sprintf("closure %s %s %s", a.Ident, a.Kind, word), nonNil(got), want, err

	case AssertVisibleTasks:
		at := h.start
		if a.At != "" {
			t, err := parseTime(a.At, h.start)
			if err != nil {
				return "visible_tasks", nil, nil, err
			}
			at = t
		}
		list, err := h.ix.VisibleTasks(ctx, at)
		got := []string{}
		for _, t := range list {
			got = append(got, t.Ident)
		}
		return "visible_tasks at " + at.Format(time.RFC3339), got, want, err

	case AssertSpecial:
		kind, err := model.ParseSpecialKind(a.Kind)
		if err != nil {
			return "special " + a.Kind, nil, nil, err
		}
		items, err := h.ix.SearchSpecial(ctx, kind)
		got := []string{}
		for _, it := range items {
			got = append(got, it.Ident)
		}
		return "special " + a.Kind, got, want, err

	case AssertChildren:
		entries, err := h.ix.ReadyChildren(ctx, a.Ident)
		got := []string{}
		for _, e := range entries {
			got = append(got, e.Item.Ident)
		}
		return "children " + a.Ident, got, want, err

	case AssertCycles:
		reports, err := h.ix.CheckCycles(ctx, a.Kind)
		got := [][]string{}
		for _, r := range reports {
			got = append(got, r.Path)
		}
		wantCycles := a.Cycles
		if wantCycles == nil {
			wantCycles = [][]string{}
		}
		return "cycles " + a.Kind, got, wantCycles, err

	default:
		return a.Type, nil, nil, fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func describeStep(s Step) string {
	switch s.Op {
	case OpInsertRelation, OpDeleteRelation:
		return fmt.Sprintf("%s->%s %s", s.From, s.To, s.Kind)
	case OpRebuild:
		return s.Kind
	case OpNewIdent, OpRebuildDirty:
		return "-"
	default:
		return s.Ident
	}
}

func errorCode(err error) string {
	if code := model.CodeOf(err); code != "" {
		return string(code)
	}
	return "ERROR"
}

func changedWord(changed bool, yes, no string) string {
	if changed {
		return " " + yes
	}
	return " " + no
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func formatList(s []string) string {
	return "[" + strings.Join(s, " ") + "]"
}

func formatValue(v any) string {
	switch x := v.(type) {
	case []string:
		return formatList(x)
	case [][]string:
		parts := make([]string, len(x))
		for i, p := range x {
			parts[i] = formatList(p)
		}
		return formatList(parts)
	default:
		return fmt.Sprint(v)
	}
}
