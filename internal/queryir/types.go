package queryir

import (
	"strings"

	"github.com/roach88/haze/internal/ir"
)

// Operator identifies a predicate in the catalogue.
//
// The zero value is OpInvalid. Clauses decoded from the wire keep the raw
// operator name so an unknown operator can still be reported; evaluation
// of a query containing OpInvalid yields an empty result.
type Operator int

const (
	OpInvalid Operator = iota
	OpEqual
	OpNotEqual
	OpGreater
	OpGreaterEqual
	OpLess
	OpLessEqual
	OpIn
	OpNotIn
	OpExists
	OpNotExists
	OpPrefix
	OpSuffix
	OpContains
	OpIPrefix
	OpISuffix
	OpIContains
)

var operatorNames = [...]string{
	OpInvalid:      "invalid",
	OpEqual:        "eq",
	OpNotEqual:     "neq",
	OpGreater:      "gt",
	OpGreaterEqual: "ge",
	OpLess:         "lt",
	OpLessEqual:    "le",
	OpIn:           "in",
	OpNotIn:        "nin",
	OpExists:       "exists",
	OpNotExists:    "nexists",
	OpPrefix:       "prefix",
	OpSuffix:       "suffix",
	OpContains:     "contains",
	OpIPrefix:      "iprefix",
	OpISuffix:      "isuffix",
	OpIContains:    "icontains",
}

// ParseOperator maps a wire name ("eq", "gt", ...) to its Operator.
// Unknown names map to OpInvalid.
func ParseOperator(name string) Operator {
	for op, n := range operatorNames {
		if Operator(op) != OpInvalid && n == name {
			return Operator(op)
		}
	}
	return OpInvalid
}

// String returns the wire name of the operator.
func (op Operator) String() string {
	if op >= 0 && int(op) < len(operatorNames) {
		return operatorNames[op]
	}
	return operatorNames[OpInvalid]
}

// Valid reports whether op is a catalogue operator.
func (op Operator) Valid() bool {
	return op > OpInvalid && int(op) < len(operatorNames)
}

// UsesValue reports whether the operator reads the clause value.
// exists/nexists only check presence.
func (op Operator) UsesValue() bool {
	return op != OpExists && op != OpNotExists
}

// Combine controls how clauses after the first are merged.
type Combine int

const (
	// CombineAnd intersects each clause's matches into the running set (default).
	CombineAnd Combine = iota
	// CombineOr unions each clause's matches into the running set.
	CombineOr
)

// String returns the wire name of the combine mode.
func (c Combine) String() string {
	if c == CombineOr {
		return "or"
	}
	return "and"
}

// Clause is a single (field, operator, value) condition.
type Clause struct {
	Field string
	Op    Operator
	RawOp string     // Operator name as supplied (kept for diagnostics)
	Value ir.IRValue // nil when omitted
}

// Where builds a clause from a wire operator name.
func Where(field, op string, value ir.IRValue) Clause {
	return Clause{Field: field, Op: ParseOperator(op), RawOp: op, Value: value}
}

// OperatorName returns the operator as supplied, falling back to the
// canonical name for clauses built in code.
func (c Clause) OperatorName() string {
	if c.RawOp != "" {
		return c.RawOp
	}
	return c.Op.String()
}

// Query is a request scoped to one collection.
//
// Semantics:
//   - Where clauses are evaluated in order; the first seeds the match set
//   - Combine governs every clause after the first
//   - Sort names one field, with a leading '-' for descending
//   - Skip and Limit are optional and clamped to the result length
//   - Count returns the number of matches instead of documents
//   - Include lists dotted reference paths to expand in each result
type Query struct {
	Collection string
	Where      []Clause
	Combine    Combine
	Sort       string
	Skip       *int
	Limit      *int
	Count      bool
	Include    []string
}

// SortKey splits Sort into the field name and direction.
func (q Query) SortKey() (field string, descending bool) {
	if strings.HasPrefix(q.Sort, "-") {
		return q.Sort[1:], true
	}
	return q.Sort, false
}

// Int returns a pointer to n, for Skip and Limit literals.
func Int(n int) *int {
	return &n
}

// Result is the outcome of a query: either documents or a count.
type Result struct {
	Results   []ir.IRObject
	Count     int
	CountOnly bool
}

// EmptyResult is the result of a query that matched nothing.
func EmptyResult(countOnly bool) Result {
	if countOnly {
		return Result{CountOnly: true}
	}
	return Result{Results: []ir.IRObject{}}
}

// MarshalJSON encodes the result as {"count": n} or {"results": [...]}.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.CountOnly {
		return ir.MarshalCanonical(map[string]any{"count": r.Count})
	}
	docs := make([]any, len(r.Results))
	for i, d := range r.Results {
		docs[i] = d
	}
	return ir.MarshalCanonical(map[string]any{"results": docs})
}

// IDs returns the id field of each result in order.
func (r Result) IDs() []string {
	ids := make([]string, 0, len(r.Results))
	for _, d := range r.Results {
		id, _ := d.ID()
		ids = append(ids, id)
	}
	return ids
}
