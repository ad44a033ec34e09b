// Package harness runs YAML scenarios against a haze engine.
//
// A scenario seeds the engine from CUE fixtures, runs a list of steps
// (create, get, update, destroy, increment, query) with optional expect
// clauses, and evaluates assertions over the resulting trace and the final
// registry state.
//
// # Determinism
//
// Every run uses a fresh engine with sequential ids ("doc-1", "doc-2", ...)
// and versions 1, 2, 3..., so the same scenario always produces the same
// trace. RunWithGolden compares that trace, encoded as canonical JSON,
// against testdata/golden/<name>.golden.
//
// # Trace
//
// The trace interleaves two record types:
//   - "op": one per step, with its arguments and result
//   - "event": one per change notification emitted while the step ran
//
// Events appear after the op record of the step that caused them.
//
// # Persistence check
//
// Before final_state assertions are evaluated, the registry is saved to an
// in-memory SQLite snapshot and restored into a fresh engine. Assertions
// run against the restored engine, so every scenario also exercises the
// snapshot round trip.
package harness
