package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/haze/internal/engine"
	"github.com/roach88/haze/internal/fixture"
	"github.com/roach88/haze/internal/ir"
	"github.com/roach88/haze/internal/queryir"
	"github.com/roach88/haze/internal/store"
	"github.com/roach88/haze/internal/testutil"
)

// Harness is the scenario execution engine.
// It runs scenarios with deterministic ids and versions.
type Harness struct {
	engine *engine.Engine
	result *Result
	logger *slog.Logger
}

func newEngine(logger *slog.Logger) *engine.Engine {
	return engine.New(
		engine.WithIDGenerator(testutil.NewSequentialIDs("doc")),
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithLogger(logger),
	)
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Create a fresh engine with deterministic ids and versions
//  2. Seed fixtures (not traced)
//  3. Execute steps, tracing each op and the events it emits
//  4. Round-trip the registry through an in-memory SQLite snapshot
//  5. Evaluate assertions against the trace and the restored registry
//
// Expect and assertion failures are reported in Result.Errors; the returned
// error is reserved for scenarios that cannot run at all.
func Run(scenario *Scenario) (*Result, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	eng := newEngine(logger)

	for _, path := range scenario.Fixtures {
		fixtures, err := fixture.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load fixture %s: %w", path, err)
		}
		fixture.Apply(eng, fixtures)
	}

	h := &Harness{engine: eng, result: NewResult(), logger: logger}
	unsubscribe := eng.Subscribe(engine.EventAll, func(ev engine.Event) {
		h.result.addEvent(ev.Kind.String(), ev.Collection, ev.Document)
	})

	for i, step := range scenario.Steps {
		if err := h.executeStep(i, step); err != nil {
			unsubscribe()
			return nil, fmt.Errorf("failed to execute step %d: %w", i, err)
		}
	}
	unsubscribe()

	restored, err := roundTrip(context.Background(), eng, logger)
	if err != nil {
		return nil, fmt.Errorf("snapshot round trip: %w", err)
	}

	for _, snap := range restored.Snapshot() {
		docs := make([]ir.IRObject, 0, len(snap.Documents))
		for _, sd := range snap.Documents {
			docs = append(docs, sd.Document)
		}
		h.result.State[snap.Name] = docs
	}

	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions, restored) {
		h.result.AddError(msg)
	}

	return h.result, nil
}

// roundTrip saves the registry to an in-memory snapshot store and restores
// it into a fresh engine.
func roundTrip(ctx context.Context, eng *engine.Engine, logger *slog.Logger) (*engine.Engine, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if err := st.Save(ctx, eng.Snapshot()); err != nil {
		return nil, err
	}
	snaps, err := st.Load(ctx)
	if err != nil {
		return nil, err
	}

	restored := newEngine(logger)
	restored.Restore(snaps)
	return restored, nil
}

// executeStep runs one step and checks its expect clause.
func (h *Harness) executeStep(i int, step Step) error {
	switch step.Op {
	case OpCreate:
		fields, err := toObject(step.Fields)
		if err != nil {
			return fmt.Errorf("fields: %w", err)
		}
		idx := h.result.addOp(step.Op, step.Collection, fields)
		created := h.engine.Create(step.Collection, fields)
		h.result.Trace[idx].Result = map[string]any{"id": created.ID, "version": created.Version}
		h.checkCreate(i, step.Expect, created)

	case OpGet:
		args := ir.IRObject{"id": ir.IRString(step.ID)}
		if len(step.Include) > 0 {
			args["include"] = stringsValue(step.Include)
		}
		idx := h.result.addOp(step.Op, step.Collection, args)
		doc, found := h.engine.Get(step.Collection, step.ID, step.Include...)
		res := map[string]any{"found": found}
		if found {
			res["document"] = doc
		}
		h.result.Trace[idx].Result = res
		if err := h.checkGet(i, step.Expect, doc, found); err != nil {
			return err
		}

	case OpUpdate:
		doc, err := toObject(step.Document)
		if err != nil {
			return fmt.Errorf("document: %w", err)
		}
		idx := h.result.addOp(step.Op, step.Collection, doc)
		ok := h.engine.Update(step.Collection, doc)
		h.result.Trace[idx].Result = map[string]any{"ok": ok}
		h.checkOK(i, step.Expect, ok)

	case OpDestroy:
		idx := h.result.addOp(step.Op, step.Collection, ir.IRObject{"id": ir.IRString(step.ID)})
		ok := h.engine.Destroy(step.Collection, step.ID)
		h.result.Trace[idx].Result = map[string]any{"ok": ok}
		h.checkOK(i, step.Expect, ok)

	case OpIncrement:
		args := ir.IRObject{"id": ir.IRString(step.ID), "key": ir.IRString(step.Key)}
		var by ir.IRValue
		if step.By != nil {
			v, err := ir.FromGo(step.By)
			if err != nil {
				return fmt.Errorf("by: %w", err)
			}
			by = v
			args["by"] = v
		}
		h.result.addOp(step.Op, step.Collection, args)
		h.engine.Increment(step.Collection, step.ID, step.Key, by)

	case OpQuery:
		q, err := queryir.DecodeValue(step.Query)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		args, err := toObject(step.Query)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		idx := h.result.addOp(step.Op, q.Collection, args)
		res := h.engine.Query(q)
		h.result.Trace[idx].Result = queryResultValue(res)
		h.checkQuery(i, step.Expect, res)

	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}

	h.logger.Info("step completed", "step", i, "op", step.Op, "collection", step.Collection)
	return nil
}

func (h *Harness) checkCreate(i int, exp *Expect, created engine.Created) {
	if exp == nil {
		return
	}
	if exp.ID != "" && exp.ID != created.ID {
		h.result.AddError(fmt.Sprintf("steps[%d] create: expected id %q, got %q", i, exp.ID, created.ID))
	}
	if exp.Version != nil && *exp.Version != created.Version {
		h.result.AddError(fmt.Sprintf("steps[%d] create: expected version %d, got %d", i, *exp.Version, created.Version))
	}
}

func (h *Harness) checkGet(i int, exp *Expect, doc ir.IRObject, found bool) error {
	if exp == nil {
		return nil
	}
	if exp.Found != nil && *exp.Found != found {
		h.result.AddError(fmt.Sprintf("steps[%d] get: expected found=%t, got %t", i, *exp.Found, found))
		return nil
	}
	if exp.Document != nil {
		want, err := toObject(exp.Document)
		if err != nil {
			return fmt.Errorf("expect.document: %w", err)
		}
		if key, ok := subsetMismatch(want, doc); !ok {
			h.result.AddError(fmt.Sprintf("steps[%d] get: field %q = %s, expected %s",
				i, key, describe(doc[key]), describe(want[key])))
		}
	}
	return nil
}

func (h *Harness) checkOK(i int, exp *Expect, ok bool) {
	if exp == nil || exp.OK == nil {
		return
	}
	if *exp.OK != ok {
		h.result.AddError(fmt.Sprintf("steps[%d]: expected ok=%t, got %t", i, *exp.OK, ok))
	}
}

func (h *Harness) checkQuery(i int, exp *Expect, res queryir.Result) {
	if exp == nil {
		return
	}
	if exp.Count != nil {
		got := res.Count
		if !res.CountOnly {
			got = len(res.Results)
		}
		if got != *exp.Count {
			h.result.AddError(fmt.Sprintf("steps[%d] query: expected count %d, got %d", i, *exp.Count, got))
		}
	}
	if exp.IDs != nil {
		got := res.IDs()
		if !slices.Equal(exp.IDs, got) {
			h.result.AddError(fmt.Sprintf("steps[%d] query: expected ids %v, got %v", i, exp.IDs, got))
		}
	}
}

// queryResultValue renders a query result for the trace.
func queryResultValue(res queryir.Result) any {
	if res.CountOnly {
		return map[string]any{"count": res.Count}
	}
	docs := make([]any, len(res.Results))
	for i, d := range res.Results {
		docs[i] = d
	}
	return map[string]any{"results": docs}
}

// toObject converts a YAML-parsed map to an IRObject.
func toObject(m map[string]any) (ir.IRObject, error) {
	if m == nil {
		return ir.IRObject{}, nil
	}
	return ir.ObjectFromGo(m)
}

func stringsValue(ss []string) ir.IRArray {
	arr := make(ir.IRArray, len(ss))
	for i, s := range ss {
		arr[i] = ir.IRString(s)
	}
	return arr
}
