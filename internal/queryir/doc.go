// Package queryir provides the query model for haze collections.
//
// A Query is a list of where-clauses over one collection plus a combine
// mode, sort key, pagination, a count flag, and include paths:
//
//	{"collection": "tasks",
//	 "where": [["count", "gt", 4], ["count", "lt", 8]],
//	 "combine": "and",
//	 "sort": "-count", "skip": 0, "limit": 10,
//	 "include": ["owner", "owner.team"]}
//
// OPERATORS:
//
// Operator is a closed enum (eq, neq, gt, ge, lt, le, in, nin, exists,
// nexists, prefix, suffix, contains, iprefix, isuffix, icontains). The
// engine dispatches on it through a fixed table; any other name decodes to
// OpInvalid, which voids the entire query at evaluation time instead of
// failing the decode.
//
// COMBINING:
//
// The first clause always seeds the match set. Every later clause is
// intersected (CombineAnd, the default) or unioned (CombineOr). Per-clause
// combine modes are not supported.
//
// This package only describes and lints queries; evaluation lives in
// internal/engine.
package queryir
