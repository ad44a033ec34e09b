package queryir

import (
	"fmt"
	"strings"

	"github.com/roach88/haze/internal/ir"
)

// ValidationResult contains lint findings for a query.
//
// Queries with findings still evaluate; the findings explain results a
// caller may not expect (for example an empty result caused by an unknown
// operator).
type ValidationResult struct {
	// Evaluable is false when the query contains an unknown operator and
	// will therefore always return an empty result.
	Evaluable bool

	// Warnings lists every finding in clause order.
	Warnings []string
}

// Validate lints a query without evaluating it.
//
// Validate is a pure function with no side effects.
func Validate(q Query) ValidationResult {
	v := &validator{warnings: []string{}}
	v.validate(q)

	return ValidationResult{
		Evaluable: !v.voided,
		Warnings:  v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
	voided   bool
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validate(q Query) {
	for i, c := range q.Where {
		v.validateClause(i, c)
	}

	if q.Skip != nil && *q.Skip < 0 {
		v.addWarning("skip %d is negative - treated as 0", *q.Skip)
	}
	if q.Limit != nil && *q.Limit < 0 {
		v.addWarning("limit %d is negative - treated as 0", *q.Limit)
	}
	if q.Count && (q.Sort != "" || q.Skip != nil || q.Limit != nil || len(q.Include) > 0) {
		v.addWarning("count query ignores sort, skip, limit and include")
	}

	for _, path := range q.Include {
		for _, seg := range strings.Split(path, ".") {
			if seg == "" {
				v.addWarning("include path %q has an empty segment", path)
				break
			}
		}
	}
}

func (v *validator) validateClause(i int, c Clause) {
	if !c.Op.Valid() {
		v.voided = true
		v.addWarning("clause %d: unknown operator %q - query will return no results", i, c.OperatorName())
		return
	}

	if c.Field == "" {
		v.addWarning("clause %d: empty field name never matches", i)
	}

	switch c.Op {
	case OpExists, OpNotExists:
		if c.Value != nil {
			v.addWarning("clause %d: %s ignores its value", i, c.Op)
		}
	case OpGreater, OpGreaterEqual, OpLess, OpLessEqual:
		if k := ir.KindOf(c.Value); k != ir.KindNumber && k != ir.KindString {
			v.addWarning("clause %d: %s against a %s value never matches", i, c.Op, k)
		}
	case OpIn, OpNotIn:
		if k := ir.KindOf(c.Value); k != ir.KindArray && k != ir.KindObject {
			v.addWarning("clause %d: %s expects an array or object value, got %s", i, c.Op, k)
		}
	case OpEqual:
		if c.Value == nil {
			v.addWarning("clause %d: eq without a value never matches", i)
		}
	}
}
