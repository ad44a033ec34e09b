package engine

import (
	"strings"

	"github.com/roach88/haze/internal/ir"
)

// ResolveIncludes returns a copy of doc with every include path expanded.
// doc itself is never modified.
//
// For each dotted path the head segment names a field. If the field holds a
// reference string ("collection:id"), it is replaced by a copy of the target
// document; if the target does not exist, the field is removed. Remaining
// segments are then resolved inside the target. Fields that are absent or
// hold non-reference values are left untouched.
func (e *Engine) ResolveIncludes(paths []string, doc ir.IRObject) ir.IRObject {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.resolveIncludes(paths, doc.Clone())
}

// resolveIncludes expands paths in place on doc, which must be a private
// copy. Caller must hold the engine lock.
func (e *Engine) resolveIncludes(paths []string, doc ir.IRObject) ir.IRObject {
	for _, path := range paths {
		e.resolvePath(path, doc)
	}
	return doc
}

func (e *Engine) resolvePath(path string, doc ir.IRObject) {
	head, rest, _ := strings.Cut(path, ".")
	if head == "" {
		return
	}
	val, ok := doc[head]
	if !ok {
		return
	}

	// Expanded by an earlier path ("author" then "author.org").
	if obj, ok := val.(ir.IRObject); ok {
		if rest != "" {
			e.resolvePath(rest, obj)
		}
		return
	}

	ref, ok := ir.ReferenceOf(val)
	if !ok {
		return
	}
	target, found := e.lookup(ref.Collection, ref.ID)
	if !found {
		delete(doc, head)
		return
	}
	if rest != "" {
		e.resolvePath(rest, target)
	}
	doc[head] = target
}
