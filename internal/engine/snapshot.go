package engine

import (
	"cmp"
	"slices"

	"github.com/roach88/haze/internal/ir"
)

// Snapshot returns a deep copy of every collection, sorted by name, with
// documents in insertion order. Empty collections are included.
func (e *Engine) Snapshot() []ir.CollectionSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]ir.CollectionSnapshot, 0, len(e.collections))
	for _, c := range e.collections {
		snap := ir.CollectionSnapshot{Name: c.name, Documents: make([]ir.StoredDocument, 0, len(c.docs))}
		for _, ent := range c.ordered() {
			snap.Documents = append(snap.Documents, ir.StoredDocument{Seq: ent.seq, Document: ent.doc.Clone()})
		}
		out = append(out, snap)
	}
	slices.SortFunc(out, func(a, b ir.CollectionSnapshot) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// Restore replaces the registry with snaps. No events are emitted.
//
// Documents without a string id are skipped. The insertion clock continues
// after the highest restored seq, and a version clock that supports it is
// advanced past the highest restored version, so later writes never reuse
// a stamp.
func (e *Engine) Restore(snaps []ir.CollectionSnapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	registry := make(map[string]*collection, len(snaps))
	var maxSeq, maxVersion int64
	for _, snap := range snaps {
		c, ok := registry[snap.Name]
		if !ok {
			c = newCollection(snap.Name)
			registry[snap.Name] = c
		}
		for _, sd := range snap.Documents {
			id, ok := sd.Document.ID()
			if !ok {
				e.logger.Warn("restore skipped document without id", "collection", snap.Name, "seq", sd.Seq)
				continue
			}
			c.docs[id] = &entry{seq: sd.Seq, doc: sd.Document.Clone()}
			maxSeq = max(maxSeq, sd.Seq)
			if v, ok := sd.Document.Version(); ok {
				maxVersion = max(maxVersion, v)
			}
		}
	}

	e.collections = registry
	e.seq = NewClockAt(maxSeq)
	if a, ok := e.versions.(advancer); ok {
		a.Advance(maxVersion)
	}
	e.logger.Debug("registry restored", "collections", len(registry), "max_seq", maxSeq)
}
