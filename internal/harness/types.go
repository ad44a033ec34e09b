package harness

import "github.com/roach88/haze/internal/ir"

// Trace record types.
const (
	RecordOp    = "op"
	RecordEvent = "event"
)

// TraceEvent is one record of a scenario trace: either a step ("op") or a
// change notification ("event").
type TraceEvent struct {
	Type       string      `json:"type"`
	Seq        int64       `json:"seq"`
	Op         string      `json:"op,omitempty"`    // op records
	Event      string      `json:"event,omitempty"` // event records
	Collection string      `json:"collection,omitempty"`
	Args       ir.IRObject `json:"args,omitempty"`     // op records
	Result     any         `json:"result,omitempty"`   // op records
	Document   ir.IRObject `json:"document,omitempty"` // event records
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains op and event records in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expect and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the final registry, keyed by collection name, with documents
	// in insertion order.
	State map[string][]ir.IRObject `json:"state,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State:  make(map[string][]ir.IRObject),
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// addOp appends an op record and returns its index so the result can be
// filled in once the step has run.
func (r *Result) addOp(op, collection string, args ir.IRObject) int {
	r.Trace = append(r.Trace, TraceEvent{
		Type:       RecordOp,
		Seq:        int64(len(r.Trace) + 1),
		Op:         op,
		Collection: collection,
		Args:       args,
	})
	return len(r.Trace) - 1
}

// addEvent appends an event record.
func (r *Result) addEvent(kind, collection string, doc ir.IRObject) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:       RecordEvent,
		Seq:        int64(len(r.Trace) + 1),
		Event:      kind,
		Collection: collection,
		Document:   doc,
	})
}

// Events returns the event records of the trace in order.
func (r *Result) Events() []TraceEvent {
	var out []TraceEvent
	for _, ev := range r.Trace {
		if ev.Type == RecordEvent {
			out = append(out, ev)
		}
	}
	return out
}
