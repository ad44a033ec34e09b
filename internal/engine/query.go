package engine

import (
	"slices"

	"github.com/roach88/haze/internal/ir"
	"github.com/roach88/haze/internal/queryir"
)

// Query evaluates q against its collection.
//
// Algorithm:
//  1. An absent or empty collection yields an empty result (count 0).
//  2. With no clauses every document matches.
//  3. Clauses run in order. The first clause seeds the match set; each later
//     clause unions (CombineOr) or intersects (CombineAnd) its matches.
//  4. An unknown operator in any clause voids the query: empty result.
//  5. Count queries return the number of matches.
//  6. Otherwise matches are copied, stably sorted, skipped, limited, and
//     include paths are expanded on each copy.
//
// Matches are materialized in insertion order, which is also the tie order
// for the stable sort.
func (e *Engine) Query(q queryir.Query) queryir.Result {
	e.mu.RLock()
	defer e.mu.RUnlock()

	c, ok := e.collections[q.Collection]
	if !ok || len(c.docs) == 0 {
		return queryir.EmptyResult(q.Count)
	}
	entries := c.ordered()

	matched, ok := e.match(entries, q)
	if !ok {
		return queryir.EmptyResult(q.Count)
	}

	if q.Count {
		return queryir.Result{Count: len(matched), CountOnly: true}
	}

	docs := make([]ir.IRObject, len(matched))
	for i, ent := range matched {
		docs[i] = ent.doc.Clone()
	}

	if q.Sort != "" {
		sortDocuments(docs, q)
	}
	docs = paginate(docs, q.Skip, q.Limit)

	if len(q.Include) > 0 {
		for i, doc := range docs {
			docs[i] = e.resolveIncludes(q.Include, doc)
		}
	}

	return queryir.Result{Results: docs, Count: len(docs)}
}

// match applies q's clauses to entries, preserving entry order.
// Returns false when a clause names an unknown operator.
func (e *Engine) match(entries []*entry, q queryir.Query) ([]*entry, bool) {
	if len(q.Where) == 0 {
		return entries, true
	}

	selected := make([]bool, len(entries))
	for i, clause := range q.Where {
		pred, ok := predicateFor(clause.Op)
		if !ok {
			e.logger.Warn("query voided: unknown operator",
				"collection", q.Collection, "field", clause.Field, "op", clause.OperatorName())
			return nil, false
		}

		union := i == 0 || q.Combine == queryir.CombineOr
		for j, ent := range entries {
			if !union && !selected[j] {
				continue
			}
			field, present := ent.doc[clause.Field]
			hit := pred(field, present, clause.Value)
			if union {
				selected[j] = selected[j] || hit
			} else {
				selected[j] = hit
			}
		}
	}

	out := make([]*entry, 0, len(entries))
	for j, ent := range entries {
		if selected[j] {
			out = append(out, ent)
		}
	}
	return out, true
}

// sortDocuments orders docs by the sort field. Missing fields sort first
// ascending; documents with equal keys keep their relative order.
func sortDocuments(docs []ir.IRObject, q queryir.Query) {
	field, descending := q.SortKey()
	slices.SortStableFunc(docs, func(a, b ir.IRObject) int {
		c := ir.Compare(a[field], b[field])
		if descending {
			return -c
		}
		return c
	})
}

// paginate clamps skip and limit to the slice bounds. Negative values are
// treated as 0 for skip and "no results" for limit.
func paginate(docs []ir.IRObject, skip, limit *int) []ir.IRObject {
	if skip != nil {
		s := max(*skip, 0)
		if s >= len(docs) {
			return []ir.IRObject{}
		}
		docs = docs[s:]
	}
	if limit != nil {
		l := max(*limit, 0)
		if l < len(docs) {
			docs = docs[:l]
		}
	}
	return docs
}
