package engine

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/roach88/haze/internal/ir"
	"github.com/roach88/haze/internal/queryir"
)

// predicate reports whether a field value satisfies a clause argument.
// present is false when the document has no such field; field is nil then.
type predicate func(field ir.IRValue, present bool, arg ir.IRValue) bool

var predicates = [...]predicate{
	queryir.OpEqual:        predEqual,
	queryir.OpNotEqual:     predNotEqual,
	queryir.OpGreater:      ordering(func(c int) bool { return c > 0 }),
	queryir.OpGreaterEqual: ordering(func(c int) bool { return c >= 0 }),
	queryir.OpLess:         ordering(func(c int) bool { return c < 0 }),
	queryir.OpLessEqual:    ordering(func(c int) bool { return c <= 0 }),
	queryir.OpIn:           predIn,
	queryir.OpNotIn:        predNotIn,
	queryir.OpExists:       predExists,
	queryir.OpNotExists:    predNotExists,
	queryir.OpPrefix:       textMatch(strings.HasPrefix, false),
	queryir.OpSuffix:       textMatch(strings.HasSuffix, false),
	queryir.OpContains:     textMatch(strings.Contains, false),
	queryir.OpIPrefix:      textMatch(strings.HasPrefix, true),
	queryir.OpISuffix:      textMatch(strings.HasSuffix, true),
	queryir.OpIContains:    textMatch(strings.Contains, true),
}

// predicateFor returns the predicate for op; false for unknown operators.
func predicateFor(op queryir.Operator) (predicate, bool) {
	if !op.Valid() || int(op) >= len(predicates) || predicates[op] == nil {
		return nil, false
	}
	return predicates[op], true
}

func predEqual(field ir.IRValue, present bool, arg ir.IRValue) bool {
	return present && ir.Equal(field, argOrNull(arg))
}

func predNotEqual(field ir.IRValue, present bool, arg ir.IRValue) bool {
	return present && !ir.Equal(field, argOrNull(arg))
}

// argOrNull treats an omitted comparison argument as null.
func argOrNull(arg ir.IRValue) ir.IRValue {
	if arg == nil {
		return ir.IRNull{}
	}
	return arg
}

func ordering(accept func(int) bool) predicate {
	return func(field ir.IRValue, present bool, arg ir.IRValue) bool {
		if !present || !ir.Ordered(field, arg) {
			return false
		}
		return accept(ir.Compare(field, arg))
	}
}

func predIn(field ir.IRValue, present bool, arg ir.IRValue) bool {
	if !present {
		return false
	}
	member, ok := contains(arg, field)
	return ok && member
}

func predNotIn(field ir.IRValue, present bool, arg ir.IRValue) bool {
	if !present {
		return false
	}
	member, ok := contains(arg, field)
	return !ok || !member
}

// contains tests membership of v in a collection argument. An array tests
// element equality; an object tests key membership of a string value.
// ok is false when arg is not a collection.
func contains(arg, v ir.IRValue) (member, ok bool) {
	switch a := arg.(type) {
	case ir.IRArray:
		for _, elem := range a {
			if ir.Equal(elem, v) {
				return true, true
			}
		}
		return false, true
	case ir.IRObject:
		s, isString := v.(ir.IRString)
		if !isString {
			return false, true
		}
		_, has := a[string(s)]
		return has, true
	default:
		return false, false
	}
}

func predExists(_ ir.IRValue, present bool, _ ir.IRValue) bool {
	return present
}

func predNotExists(_ ir.IRValue, present bool, _ ir.IRValue) bool {
	return !present
}

// textMatch builds a literal string predicate over the field coerced to
// text. With fold set, both sides are case folded first.
func textMatch(match func(s, sub string) bool, fold bool) predicate {
	return func(field ir.IRValue, present bool, arg ir.IRValue) bool {
		if !present || arg == nil {
			return false
		}
		s, sub := ir.Text(field), ir.Text(arg)
		if fold {
			// A Caser is not safe for concurrent use.
			caser := cases.Fold()
			s, sub = caser.String(s), caser.String(sub)
		}
		return match(s, sub)
	}
}
