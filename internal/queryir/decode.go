package queryir

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/roach88/haze/internal/ir"
)

// DecodeError reports a query that could not be decoded from its wire form.
//
// Unknown operators are NOT decode errors: they decode to OpInvalid and
// void the query at evaluation time.
type DecodeError struct {
	// Code identifies the error category.
	Code DecodeErrorCode

	// Message is a human-readable description.
	Message string

	// Clause is the index of the offending where-clause, or -1.
	Clause int
}

// DecodeErrorCode categorizes decode errors.
type DecodeErrorCode string

const (
	// ErrCodeMalformedQuery indicates the query is not a JSON object or has wrongly typed fields.
	ErrCodeMalformedQuery DecodeErrorCode = "MALFORMED_QUERY"

	// ErrCodeMissingCollection indicates the collection name is empty.
	ErrCodeMissingCollection DecodeErrorCode = "MISSING_COLLECTION"

	// ErrCodeMalformedClause indicates a where-clause is not [field, op, value?].
	ErrCodeMalformedClause DecodeErrorCode = "MALFORMED_CLAUSE"

	// ErrCodeUnknownCombine indicates a combine mode other than "and" or "or".
	ErrCodeUnknownCombine DecodeErrorCode = "UNKNOWN_COMBINE"
)

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Clause >= 0 {
		return fmt.Sprintf("%s: %s (clause=%d)", e.Code, e.Message, e.Clause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsDecodeError returns true if err is (or wraps) a DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

func newDecodeError(code DecodeErrorCode, clause int, format string, args ...any) *DecodeError {
	return &DecodeError{Code: code, Message: fmt.Sprintf(format, args...), Clause: clause}
}

// wireQuery mirrors the JSON request shape:
//
//	{"collection": "tasks", "where": [["count", "gt", 4]], "combine": "or",
//	 "sort": "-count", "skip": 0, "limit": 10, "count": false, "include": ["owner"]}
type wireQuery struct {
	Collection string            `json:"collection"`
	Where      []json.RawMessage `json:"where"`
	Combine    *string           `json:"combine"`
	Sort       string            `json:"sort"`
	Skip       json.RawMessage   `json:"skip"`
	Limit      json.RawMessage   `json:"limit"`
	Count      bool              `json:"count"`
	Include    []string          `json:"include"`
}

// Decode parses a query from its JSON wire form.
func Decode(data []byte) (Query, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var w wireQuery
	if err := dec.Decode(&w); err != nil {
		return Query{}, newDecodeError(ErrCodeMalformedQuery, -1, "%v", err)
	}

	if w.Collection == "" {
		return Query{}, newDecodeError(ErrCodeMissingCollection, -1, "collection is required")
	}

	q := Query{
		Collection: w.Collection,
		Sort:       w.Sort,
		Count:      w.Count,
		Include:    w.Include,
	}

	if w.Combine != nil {
		c, err := ParseCombine(*w.Combine)
		if err != nil {
			return Query{}, err
		}
		q.Combine = c
	}

	for i, raw := range w.Where {
		clause, err := decodeClause(i, raw)
		if err != nil {
			return Query{}, err
		}
		q.Where = append(q.Where, clause)
	}

	var err error
	if q.Skip, err = decodeOptionalInt("skip", w.Skip); err != nil {
		return Query{}, err
	}
	if q.Limit, err = decodeOptionalInt("limit", w.Limit); err != nil {
		return Query{}, err
	}

	return q, nil
}

// DecodeValue converts an already-decoded request (for example a YAML map)
// into a Query by way of its JSON form.
func DecodeValue(v any) (Query, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Query{}, newDecodeError(ErrCodeMalformedQuery, -1, "%v", err)
	}
	return Decode(data)
}

// ParseCombine maps "and" (or "") and "or" to a Combine mode.
func ParseCombine(s string) (Combine, error) {
	switch s {
	case "", "and":
		return CombineAnd, nil
	case "or":
		return CombineOr, nil
	default:
		return CombineAnd, newDecodeError(ErrCodeUnknownCombine, -1, "combine must be \"and\" or \"or\", got %q", s)
	}
}

func decodeClause(index int, raw json.RawMessage) (Clause, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return Clause{}, newDecodeError(ErrCodeMalformedClause, index, "clause must be an array: %v", err)
	}
	if len(parts) < 2 || len(parts) > 3 {
		return Clause{}, newDecodeError(ErrCodeMalformedClause, index, "clause must have 2 or 3 elements, got %d", len(parts))
	}

	var field, op string
	if err := json.Unmarshal(parts[0], &field); err != nil || field == "" {
		return Clause{}, newDecodeError(ErrCodeMalformedClause, index, "field must be a non-empty string")
	}
	if err := json.Unmarshal(parts[1], &op); err != nil {
		return Clause{}, newDecodeError(ErrCodeMalformedClause, index, "operator must be a string")
	}

	var value ir.IRValue
	if len(parts) == 3 {
		v, err := ir.ParseJSON(parts[2])
		if err != nil {
			return Clause{}, newDecodeError(ErrCodeMalformedClause, index, "value: %v", err)
		}
		value = v
	}

	return Where(field, op, value), nil
}

// decodeOptionalInt accepts a JSON number or a numeric string, truncating
// fractions. Absent or null yields nil.
func decodeOptionalInt(name string, raw json.RawMessage) (*int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	v, err := ir.ParseJSON(raw)
	if err != nil {
		return nil, newDecodeError(ErrCodeMalformedQuery, -1, "%s: %v", name, err)
	}

	switch n := v.(type) {
	case ir.IRInt:
		return Int(int(n)), nil
	case ir.IRFloat:
		return Int(int(n)), nil
	case ir.IRString:
		i, err := strconv.Atoi(string(n))
		if err != nil {
			return nil, newDecodeError(ErrCodeMalformedQuery, -1, "%s must be an integer, got %q", name, string(n))
		}
		return Int(i), nil
	default:
		return nil, newDecodeError(ErrCodeMalformedQuery, -1, "%s must be an integer, got %s", name, ir.KindOf(v))
	}
}
