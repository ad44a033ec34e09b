package ir

import "strings"

// Reference is a parsed foreign key of the form "collection:id".
type Reference struct {
	Collection string
	ID         string
}

// ParseReference parses s as a reference string. The string is split at
// the first ':' and both halves must be non-empty.
func ParseReference(s string) (Reference, bool) {
	coll, id, ok := strings.Cut(s, ":")
	if !ok || coll == "" || id == "" {
		return Reference{}, false
	}
	return Reference{Collection: coll, ID: id}, true
}

// ReferenceOf parses v as a reference if it is a string.
func ReferenceOf(v IRValue) (Reference, bool) {
	s, ok := v.(IRString)
	if !ok {
		return Reference{}, false
	}
	return ParseReference(string(s))
}

// String formats the reference as "collection:id".
func (r Reference) String() string {
	return r.Collection + ":" + r.ID
}

// Value returns the reference as a storable field value.
func (r Reference) Value() IRString {
	return IRString(r.String())
}
