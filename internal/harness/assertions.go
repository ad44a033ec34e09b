package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/haze/internal/engine"
	"github.com/roach88/haze/internal/ir"
	"github.com/roach88/haze/internal/queryir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			switch ev.Type {
			case RecordOp:
				fmt.Fprintf(&buf, "  [%d] %s %s %s\n", ev.Seq, ev.Op, ev.Collection, describe(ev.Args))
			case RecordEvent:
				id, _ := ev.Document.ID()
				fmt.Fprintf(&buf, "  [%d]   -> %s %s:%s\n", ev.Seq, ev.Event, ev.Collection, id)
			}
		}
	}

	return buf.String()
}

// eventMatches reports whether ev is an event of kind in collection
// (empty collection matches any).
func eventMatches(ev TraceEvent, kind, collection string) bool {
	return ev.Type == RecordEvent && ev.Event == kind &&
		(collection == "" || ev.Collection == collection)
}

// assertTraceContains checks if the trace contains an event matching the
// kind, collection and document (subset match).
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	want, err := toObject(assertion.Document)
	if err != nil {
		return fmt.Errorf("trace_contains document: %w", err)
	}

	for _, ev := range trace {
		if !eventMatches(ev, assertion.Event, assertion.Collection) {
			continue
		}
		if _, ok := subsetMismatch(want, ev.Document); ok {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("%s event in %s with document %s", assertion.Event, orAny(assertion.Collection), describe(want)),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks if events appear in the specified order.
// Events don't need to be consecutive (intervening events are allowed).
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	// Step 1: Find first position of each expected event
	positions := make(map[string]int)
	for i, ev := range trace {
		if ev.Type != RecordEvent {
			continue
		}
		for _, kind := range assertion.Events {
			if eventMatches(ev, kind, assertion.Collection) && positions[kind] == 0 {
				positions[kind] = i + 1 // 1-indexed for readability
			}
		}
	}

	// Step 2: Verify all events found
	for _, kind := range assertion.Events {
		if positions[kind] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all events present: %v", assertion.Events),
				Actual:   fmt.Sprintf("missing event: %s", kind),
				Trace:    trace,
			}
		}
	}

	// Step 3: Verify order
	for i := 1; i < len(assertion.Events); i++ {
		prev := assertion.Events[i-1]
		curr := assertion.Events[i]

		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("events in order: %v", assertion.Events),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

// assertTraceCount checks if the event appears exactly the specified number of times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, ev := range trace {
		if eventMatches(ev, assertion.Event, assertion.Collection) {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d %s events in %s", assertion.Count, assertion.Event, orAny(assertion.Collection)),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}

	return nil
}

// assertFinalState selects documents of the collection whose fields equal
// Where (via an engine query) and checks Expect against the single match.
func assertFinalState(eng *engine.Engine, assertion Assertion) error {
	where, err := toObject(assertion.Where)
	if err != nil {
		return fmt.Errorf("final_state where: %w", err)
	}
	want, err := toObject(assertion.Expect)
	if err != nil {
		return fmt.Errorf("final_state expect: %w", err)
	}

	res := eng.Query(whereQuery(assertion.Collection, where))
	whereDesc := formatWhereClause(where)

	if assertion.Absent {
		if len(res.Results) > 0 {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("no document in %s where %s", assertion.Collection, whereDesc),
				Actual:   fmt.Sprintf("%d documents matched: %v", len(res.Results), res.IDs()),
			}
		}
		return nil
	}

	switch len(res.Results) {
	case 0:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("document in %s where %s", assertion.Collection, whereDesc),
			Actual:   "document not found",
		}
	case 1:
	default:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("exactly one document in %s where %s", assertion.Collection, whereDesc),
			Actual:   fmt.Sprintf("multiple documents matched (assertion is ambiguous): %v", res.IDs()),
		}
	}

	actual := res.Results[0]
	if key, ok := subsetMismatch(want, actual); !ok {
		got, present := actual[key]
		actualDesc := "absent"
		if present {
			actualDesc = describe(got)
		}
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("field %q = %s", key, describe(want[key])),
			Actual:   fmt.Sprintf("field %q = %s", key, actualDesc),
		}
	}

	return nil
}

// whereQuery builds an eq-clause query from field values. Keys are sorted
// for determinism.
func whereQuery(collection string, where ir.IRObject) queryir.Query {
	q := queryir.Query{Collection: collection}
	for _, key := range where.SortedKeys() {
		q.Where = append(q.Where, queryir.Clause{Field: key, Op: queryir.OpEqual, Value: where[key]})
	}
	return q
}

// formatWhereClause creates a human-readable description of where conditions.
func formatWhereClause(where ir.IRObject) string {
	if len(where) == 0 {
		return "(no conditions)"
	}

	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, describe(where[k])))
	}
	return strings.Join(parts, " AND ")
}

// subsetMismatch checks that actual contains every field of want with an
// equal value. It returns the first (sorted) mismatching key and false.
func subsetMismatch(want, actual ir.IRObject) (string, bool) {
	for _, key := range want.SortedKeys() {
		got, ok := actual[key]
		if !ok || !ir.Equal(want[key], got) {
			return key, false
		}
	}
	return "", true
}

// describe renders a value as canonical JSON for messages.
func describe(v ir.IRValue) string {
	if v == nil {
		return "absent"
	}
	b, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func orAny(collection string) string {
	if collection == "" {
		return "any collection"
	}
	return collection
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// final_state assertions read from eng.
func EvaluateAssertions(result *Result, assertions []Assertion, eng *engine.Engine) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertFinalState:
			if eng == nil {
				err = fmt.Errorf("assertion[%d]: final_state requires an engine", i)
			} else {
				err = assertFinalState(eng, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
