package engine

import (
	"github.com/roach88/haze/internal/ir"
)

// DefaultIncrement is the amount Increment adds when called with a nil amount.
const DefaultIncrement = ir.IRInt(1)

// Created identifies a newly stored document.
type Created struct {
	ID      string `json:"id"`
	Version int64  `json:"version"`
}

// Create stores a new document in collection, creating the collection if
// needed. Any id or version in fields is overwritten. Create always succeeds.
//
// Emits EventCreated with a copy of the stored document.
func (e *Engine) Create(coll string, fields ir.IRObject) Created {
	doc := fields.Clone()
	if doc == nil {
		doc = ir.IRObject{}
	}

	e.mu.Lock()
	c, ok := e.collections[coll]
	if !ok {
		c = newCollection(coll)
		e.collections[coll] = c
	}

	id := e.ids.Generate()
	for {
		if _, taken := c.docs[id]; !taken {
			break
		}
		e.logger.Warn("generated id already in use, regenerating", "collection", coll, "id", id)
		id = e.ids.Generate()
	}

	version := e.versions.Next()
	doc[ir.FieldID] = ir.IRString(id)
	doc[ir.FieldVersion] = ir.IRInt(version)
	c.docs[id] = &entry{seq: e.seq.Next(), doc: doc}
	ev := Event{Kind: EventCreated, Collection: coll, Document: doc.Clone()}
	e.mu.Unlock()

	e.logger.Debug("document created", "collection", coll, "id", id, "version", version)
	e.notifier.Publish(ev)
	return Created{ID: id, Version: version}
}

// Get returns a copy of the document, with include paths expanded on the
// copy. Returns (nil, false) when the collection or document is absent.
func (e *Engine) Get(coll, id string, include ...string) (ir.IRObject, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	doc, ok := e.lookup(coll, id)
	if !ok {
		return nil, false
	}
	return e.resolveIncludes(include, doc), true
}

// lookup returns a copy of the stored document.
// Caller must hold the engine lock.
func (e *Engine) lookup(coll, id string) (ir.IRObject, bool) {
	c, ok := e.collections[coll]
	if !ok {
		return nil, false
	}
	ent, ok := c.docs[id]
	if !ok {
		return nil, false
	}
	return ent.doc.Clone(), true
}

// Update replaces a stored document wholesale.
//
// Returns false when the collection is absent, doc has no string id, no
// document has that id, or doc's version does not equal the stored version.
// On success the stored copy gets a fresh version and keeps its insertion
// position. doc itself is not modified.
//
// Emits EventUpdated with a copy of the new document.
func (e *Engine) Update(coll string, doc ir.IRObject) bool {
	id, ok := doc.ID()
	if !ok {
		return false
	}
	version, ok := doc.Version()
	if !ok {
		return false
	}

	e.mu.Lock()
	c, ok := e.collections[coll]
	if !ok {
		e.mu.Unlock()
		return false
	}
	ent, ok := c.docs[id]
	if !ok {
		e.mu.Unlock()
		return false
	}
	current, _ := ent.doc.Version()
	if current != version {
		e.mu.Unlock()
		e.logger.Debug("update rejected: version conflict",
			"collection", coll, "id", id, "have", version, "want", current)
		return false
	}

	next := doc.Clone()
	newVersion := e.versions.Next()
	next[ir.FieldVersion] = ir.IRInt(newVersion)
	ent.doc = next
	ev := Event{Kind: EventUpdated, Collection: coll, Document: next.Clone()}
	e.mu.Unlock()

	e.logger.Debug("document updated", "collection", coll, "id", id, "version", newVersion)
	e.notifier.Publish(ev)
	return true
}

// Destroy removes a document. Returns false only when the collection is
// absent; destroying an id that is not stored succeeds without effect.
//
// Emits EventDestroyed with the removed document, only if one was removed.
func (e *Engine) Destroy(coll, id string) bool {
	e.mu.Lock()
	c, ok := e.collections[coll]
	if !ok {
		e.mu.Unlock()
		return false
	}
	ent, ok := c.docs[id]
	if !ok {
		e.mu.Unlock()
		return true
	}
	delete(c.docs, id)
	ev := Event{Kind: EventDestroyed, Collection: coll, Document: ent.doc}
	e.mu.Unlock()

	e.logger.Debug("document destroyed", "collection", coll, "id", id)
	e.notifier.Publish(ev)
	return true
}

// Increment adds amount to a numeric field. A nil amount adds
// DefaultIncrement. A missing or non-numeric field counts as 0. Integer
// plus integer stays integral; any float operand makes the result a float.
//
// Increment never changes the document version. It does nothing when the
// document is absent, amount is not a number, or key is a reserved field.
//
// Emits EventIncremented with a copy of the changed document.
func (e *Engine) Increment(coll, id, key string, amount ir.IRValue) {
	if amount == nil {
		amount = DefaultIncrement
	}
	if ir.KindOf(amount) != ir.KindNumber {
		e.logger.Warn("increment ignored: amount is not a number",
			"collection", coll, "id", id, "key", key, "amount_kind", ir.KindOf(amount).String())
		return
	}
	if ir.IsReservedField(key) {
		e.logger.Warn("increment ignored: key is a reserved field",
			"collection", coll, "id", id, "key", key)
		return
	}

	e.mu.Lock()
	c, ok := e.collections[coll]
	if !ok {
		e.mu.Unlock()
		return
	}
	ent, ok := c.docs[id]
	if !ok {
		e.mu.Unlock()
		return
	}

	sum := addNumbers(ent.doc[key], amount)
	ent.doc[key] = sum
	ev := Event{Kind: EventIncremented, Collection: coll, Document: ent.doc.Clone()}
	e.mu.Unlock()

	e.logger.Debug("field incremented", "collection", coll, "id", id, "key", key)
	e.notifier.Publish(ev)
}

func addNumbers(current, amount ir.IRValue) ir.IRValue {
	if ir.KindOf(current) != ir.KindNumber {
		current = ir.IRInt(0)
	}
	if a, ok := current.(ir.IRInt); ok {
		if b, ok := amount.(ir.IRInt); ok {
			return a + b
		}
	}
	a, _ := ir.AsNumber(current)
	b, _ := ir.AsNumber(amount)
	return ir.IRFloat(a + b)
}
