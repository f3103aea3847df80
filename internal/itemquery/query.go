// Package itemquery is a small filter language over the item table that
// compiles to parameterized SQL.
//
// Predicate is a sealed interface: only this package implements it, so
// Compile can switch over it exhaustively. Every compiled query ends in a
// deterministic ORDER BY and every value is bound as a parameter, never
// interpolated.
package itemquery

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/fanling-index/internal/model"
)

// Predicate is a filter condition on item rows.
type Predicate interface {
	predicateNode()
}

// Equals matches rows where Field = Value.
type Equals struct {
	Field string
	Value any
}

// HasSpecial matches rows whose special bitset contains Kind.
type HasSpecial struct {
	Kind model.SpecialKind
}

// And matches rows satisfying every predicate. An empty And matches all.
type And struct {
	Predicates []Predicate
}

func (Equals) predicateNode()     {}
func (HasSpecial) predicateNode() {}
func (And) predicateNode()        {}

// Open is shorthand for Equals{"open", true}.
func Open() Predicate { return Equals{Field: "open", Value: true} }

// Columns lists the item columns, in SELECT order.
var Columns = []string{"ident", "type_name", "name", "open", "parent", "sort", "classify", "special", "targeted"}

var knownFields = func() map[string]bool {
	m := make(map[string]bool, len(Columns))
	for _, c := range Columns {
		m[c] = true
	}
	return m
}()

// OrderBy is appended to every compiled query: siblings order, with ident
// as the tiebreaker.
const OrderBy = "sort COLLATE BINARY ASC, ident COLLATE BINARY ASC"

// Compile returns the SQL and parameters selecting Columns from item rows
// that satisfy p. A nil p selects every row.
func Compile(p Predicate) (string, []any, error) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(Columns, ", "))
	b.WriteString(" FROM item")

	var params []any
	if p != nil {
		where, args, err := compilePredicate(p)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		if where != "" {
			b.WriteString(" WHERE ")
			b.WriteString(where)
			params = args
		}
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(OrderBy)
	return b.String(), params, nil
}

func compilePredicate(p Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case Equals:
		if !knownFields[pred.Field] {
			return "", nil, fmt.Errorf("unknown field %q", pred.Field)
		}
		if pred.Value == nil {
			return "", nil, fmt.Errorf("equals %s: NULL never compares equal", pred.Field)
		}
		return pred.Field + " = ?", []any{pred.Value}, nil
	case HasSpecial:
		return "(special & ?) != 0", []any{int64(pred.Kind.Mask())}, nil
	case And:
		if len(pred.Predicates) == 0 {
			return "", nil, nil
		}
		var parts []string
		var params []any
		for i, sub := range pred.Predicates {
			sql, args, err := compilePredicate(sub)
			if err != nil {
				return "", nil, fmt.Errorf("and[%d]: %w", i, err)
			}
			if sql == "" {
				continue
			}
			parts = append(parts, sql)
			params = append(params, args...)
		}
		if len(parts) == 1 {
			return parts[0], params, nil
		}
		return "(" + strings.Join(parts, " AND ") + ")", params, nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// Describe renders p for logs, with fields sorted for stable output.
func Describe(p Predicate) string {
	switch pred := p.(type) {
	case nil:
		return "all"
	case Equals:
		return fmt.Sprintf("%s=%v", pred.Field, pred.Value)
	case HasSpecial:
		return "special:" + pred.Kind.String()
	case And:
		parts := make([]string, len(pred.Predicates))
		for i, sub := range pred.Predicates {
			parts[i] = Describe(sub)
		}
		sort.Strings(parts)
		return strings.Join(parts, " ")
	default:
		return fmt.Sprintf("%T", p)
	}
}
