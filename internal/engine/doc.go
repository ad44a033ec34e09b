// Package engine implements the haze document store.
//
// The engine owns a registry of named collections. Each collection maps a
// generated id to a schemaless document (ir.IRObject). Writers use the
// document's version field for optimistic concurrency: Update only
// succeeds when the caller holds the current version.
//
// ARCHITECTURE:
//
// Store operations (store.go):
// Create, Get, Update, Destroy and Increment mutate or read one document.
// Absence and version conflict are return values, never errors.
//
// Query evaluation (query.go, predicates.go):
// Clauses are evaluated in order against a snapshot of the collection. The
// first clause seeds the match set; later clauses intersect (and) or union
// (or) into it. Results are then sorted, paginated and expanded.
//
// Reference expansion (resolve.go):
// Fields holding "collection:id" strings are replaced by the referenced
// document along dotted include paths. Expansion always works on copies.
//
// Change notification (notifier.go):
// Every successful mutation publishes an Event after the registry lock is
// released, synchronously and in subscription order.
//
// ORDERING:
//
// Each stored document carries a logical seq from Clock.Next(). Queries and
// snapshots materialize documents in seq order, so results never depend on
// Go map iteration.
//
// CONCURRENCY:
//
// A single RWMutex guards the registry. Reads take the read lock; writes take
// the write lock. Listeners run without the lock held and may call back into
// the engine.
package engine
