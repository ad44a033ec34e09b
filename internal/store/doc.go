// Package store persists haze registry snapshots in SQLite.
//
// The document store itself is in-memory. The store package is the outer
// layer the CLI uses between runs: load a snapshot, restore it into an
// engine, run one operation, snapshot and save.
//
// # Layout
//
//   - collections: one row per collection, so empty collections survive
//   - documents: (collection, id) primary key, seq, version, canonical JSON body
//   - snapshot_meta: snapshot format and engine version of the last save
//
// # Ordering
//
// Load returns collections ordered by name and documents ordered by
// seq ASC, id ASC COLLATE BINARY, so a restored engine materializes
// documents in the order they were created.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
