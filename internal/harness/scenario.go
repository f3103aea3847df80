package harness

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of index mutations followed by
// assertions over the resulting queries.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	Config ScenarioConfig `yaml:"config,omitempty"`

	// Steps run in order against a fresh index.
	Steps []Step `yaml:"steps"`

	// Assertions run after every step has executed.
	Assertions []Assertion `yaml:"assertions"`
}

// ScenarioConfig selects how the index is opened.
type ScenarioConfig struct {
	Strategy     string `yaml:"strategy,omitempty"`
	DeferRebuild bool   `yaml:"defer_rebuild,omitempty"`
	IdentPrefix  string `yaml:"ident_prefix,omitempty"`
	// Start is the RFC3339 time of the deterministic clock's first tick.
	Start string `yaml:"start,omitempty"`
}

// Step is one mutation. Only the fields its op reads are meaningful.
type Step struct {
	Op string `yaml:"op"`

	// Item fields (put_item, delete_item) and task ident.
	Ident    string   `yaml:"ident,omitempty"`
	Type     string   `yaml:"type,omitempty"`
	Name     string   `yaml:"name,omitempty"`
	Parent   string   `yaml:"parent,omitempty"`
	Sort     string   `yaml:"sort,omitempty"`
	Archived bool     `yaml:"archived,omitempty"`
	Classify string   `yaml:"classify,omitempty"`
	Special  []string `yaml:"special,omitempty"`
	Targeted bool     `yaml:"targeted,omitempty"`

	// Relation fields.
	From string `yaml:"from,omitempty"`
	To   string `yaml:"to,omitempty"`
	Kind string `yaml:"kind,omitempty"`

	// Task fields (put_task).
	ShowAfter string `yaml:"show_after,omitempty"`
	Deadline  string `yaml:"deadline,omitempty"`
	Context   string `yaml:"context,omitempty"`
	Priority  *int   `yaml:"priority,omitempty"`
	Blocked   bool   `yaml:"blocked,omitempty"`

	// ExpectError is the model error code the step must fail with.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Assertion checks one query result after the steps ran.
type Assertion struct {
	Type string `yaml:"type"`

	OpenOnly  bool   `yaml:"open_only,omitempty"`
	Ident     string `yaml:"ident,omitempty"`
	From      string `yaml:"from,omitempty"`
	To        string `yaml:"to,omitempty"`
	Kind      string `yaml:"kind,omitempty"`
	Direction string `yaml:"direction,omitempty"`
	At        string `yaml:"at,omitempty"`

	// Expect is the expected ident list for list-valued assertions.
	Expect []string `yaml:"expect,omitempty"`
	// Reachable is the expected result of a reachable assertion.
	Reachable *bool `yaml:"reachable,omitempty"`
	// Cycles are the expected paths of a cycles assertion.
	Cycles [][]string `yaml:"cycles,omitempty"`
}

// Step ops.
const (
	OpPutItem        = "put_item"
	OpDeleteItem     = "delete_item"
	OpNewIdent       = "new_ident"
	OpInsertRelation = "insert_relation"
	OpDeleteRelation = "delete_relation"
	OpPutTask        = "put_task"
	OpCloseTask      = "close_task"
	OpReopenTask     = "reopen_task"
	OpBlockTask      = "block_task"
	OpUnblockTask    = "unblock_task"
	OpRebuild        = "rebuild"
	OpRebuildDirty   = "rebuild_dirty"
)

// Assertion types.
const (
	AssertOrderedItems = "ordered_items"
	AssertReachable    = "reachable"
	AssertClosure      = "closure"
	AssertVisibleTasks = "visible_tasks"
	AssertSpecial      = "special"
	AssertChildren     = "children"
	AssertCycles       = "cycles"
)

// DefaultStart is the clock start when a scenario sets none.
var DefaultStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if _, err := s.start(); err != nil {
		return fmt.Errorf("config.start: %w", err)
	}

	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(s Step) error {
	need := func(fields ...string) error {
		values := map[string]string{"ident": s.Ident, "from": s.From, "to": s.To, "kind": s.Kind}
		var missing []string
		for _, f := range fields {
			if values[f] == "" {
				missing = append(missing, f)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("%s requires %s", s.Op, strings.Join(missing, ", "))
		}
		return nil
	}

	switch s.Op {
	case OpPutItem, OpDeleteItem, OpPutTask, OpCloseTask, OpReopenTask, OpBlockTask, OpUnblockTask:
		return need("ident")
	case OpInsertRelation, OpDeleteRelation:
		return need("from", "to", "kind")
	case OpRebuild:
		return need("kind")
	case OpNewIdent, OpRebuildDirty:
		return nil
	case "":
		return fmt.Errorf("op is required")
	default:
		return fmt.Errorf("unknown op %q", s.Op)
	}
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertOrderedItems, AssertVisibleTasks:
		return nil
	case AssertReachable:
		if a.From == "" || a.To == "" || a.Kind == "" || a.Reachable == nil {
			return fmt.Errorf("reachable requires from, to, kind and reachable")
		}
	case AssertClosure:
		if a.Ident == "" || a.Kind == "" {
			return fmt.Errorf("closure requires ident and kind")
		}
		if a.Direction != "" && a.Direction != "down" && a.Direction != "up" {
			return fmt.Errorf("closure direction must be up or down, got %q", a.Direction)
		}
	case AssertSpecial, AssertCycles:
		if a.Kind == "" {
			return fmt.Errorf("%s requires kind", a.Type)
		}
	case AssertChildren:
		if a.Ident == "" {
			return fmt.Errorf("children requires ident")
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func (s *Scenario) start() (time.Time, error) {
	if s.Config.Start == "" {
		return DefaultStart, nil
	}
	t, err := time.Parse(time.RFC3339, s.Config.Start)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// parseTime accepts RFC3339 or a signed duration offset from base.
func parseTime(s string, base time.Time) (time.Time, error) {
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		d, err := time.ParseDuration(s)
		if err != nil {
			return time.Time{}, err
		}
		return base.Add(d), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
