package ir

// Reserved document fields.
const (
	// FieldID holds the document identifier. Assigned at creation, never changed.
	FieldID = "id"

	// FieldVersion holds the optimistic-concurrency token.
	FieldVersion = "version"
)

// ID returns the document's id field if it is a string.
func (obj IRObject) ID() (string, bool) {
	s, ok := obj[FieldID].(IRString)
	return string(s), ok
}

// Version returns the document's version field if it is integral.
func (obj IRObject) Version() (int64, bool) {
	switch v := obj[FieldVersion].(type) {
	case IRInt:
		return int64(v), true
	case IRFloat:
		// JSON clients may send 1.7e12 style stamps.
		if f := float64(v); f == float64(int64(f)) {
			return int64(f), true
		}
	}
	return 0, false
}

// IsReservedField reports whether field is managed by the store rather
// than by callers.
func IsReservedField(field string) bool {
	return field == FieldID || field == FieldVersion
}
