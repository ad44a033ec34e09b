package ir

import (
	"cmp"
	"strconv"
	"strings"
)

// Kind names the dynamic type of an IRValue.
type Kind int

// Kinds are declared in cross-type sort order: values of different kinds
// compare by kind, so a missing field sorts before null, null before
// booleans, and so on.
const (
	KindMissing Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

var kindNames = [...]string{"missing", "null", "bool", "number", "string", "array", "object"}

// String returns the kind's name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// KindOf reports the kind of v. A nil IRValue is KindMissing.
func KindOf(v IRValue) Kind {
	switch v.(type) {
	case nil:
		return KindMissing
	case IRNull:
		return KindNull
	case IRBool:
		return KindBool
	case IRInt, IRFloat:
		return KindNumber
	case IRString:
		return KindString
	case IRArray:
		return KindArray
	case IRObject:
		return KindObject
	default:
		return KindMissing
	}
}

// AsNumber returns v as a float64 when v is numeric.
func AsNumber(v IRValue) (float64, bool) {
	switch n := v.(type) {
	case IRInt:
		return float64(n), true
	case IRFloat:
		return float64(n), true
	default:
		return 0, false
	}
}

// Equal reports deep equality. Integral and fractional numbers compare by
// numeric value, so IRInt(2) equals IRFloat(2).
func Equal(a, b IRValue) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return false
	}

	switch av := a.(type) {
	case nil, IRNull:
		return true
	case IRBool:
		return av == b.(IRBool)
	case IRString:
		return av == b.(IRString)
	case IRInt:
		if bi, ok := b.(IRInt); ok {
			return av == bi
		}
		bf, _ := AsNumber(b)
		return float64(av) == bf
	case IRFloat:
		bf, _ := AsNumber(b)
		return float64(av) == bf
	case IRArray:
		bv := b.(IRArray)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case IRObject:
		bv := b.(IRObject)
		if len(av) != len(bv) {
			return false
		}
		for k, ae := range av {
			be, ok := bv[k]
			if !ok || !Equal(ae, be) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Ordered reports whether a and b have a natural ordering between them:
// both numbers or both strings.
func Ordered(a, b IRValue) bool {
	ka, kb := KindOf(a), KindOf(b)
	return ka == kb && (ka == KindNumber || ka == KindString)
}

// Compare returns -1, 0 or 1. Numbers and strings use their natural order;
// values of different kinds order by Kind; arrays compare element-wise and
// objects by their canonical encoding.
func Compare(a, b IRValue) int {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return cmp.Compare(ka, kb)
	}

	switch ka {
	case KindNumber:
		if ai, ok := a.(IRInt); ok {
			if bi, ok := b.(IRInt); ok {
				return cmp.Compare(ai, bi)
			}
		}
		af, _ := AsNumber(a)
		bf, _ := AsNumber(b)
		return cmp.Compare(af, bf)
	case KindString:
		return strings.Compare(string(a.(IRString)), string(b.(IRString)))
	case KindBool:
		ab, bb := bool(a.(IRBool)), bool(b.(IRBool))
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case KindArray:
		av, bv := a.(IRArray), b.(IRArray)
		for i := 0; i < len(av) && i < len(bv); i++ {
			if c := Compare(av[i], bv[i]); c != 0 {
				return c
			}
		}
		return cmp.Compare(len(av), len(bv))
	case KindObject:
		ab, _ := MarshalCanonical(a)
		bb, _ := MarshalCanonical(b)
		return strings.Compare(string(ab), string(bb))
	default:
		return 0
	}
}

// Text coerces a value to text for the pattern operators. Strings are
// returned as-is, numbers in their shortest form, arrays as comma-joined
// elements and objects as canonical JSON.
func Text(v IRValue) string {
	switch val := v.(type) {
	case nil:
		return ""
	case IRNull:
		return "null"
	case IRString:
		return string(val)
	case IRInt:
		return strconv.FormatInt(int64(val), 10)
	case IRFloat:
		b, err := MarshalCanonical(val)
		if err != nil {
			return strconv.FormatFloat(float64(val), 'g', -1, 64)
		}
		return string(b)
	case IRBool:
		return strconv.FormatBool(bool(val))
	case IRArray:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = Text(elem)
		}
		return strings.Join(parts, ",")
	case IRObject:
		b, _ := MarshalCanonical(val)
		return string(b)
	default:
		return ""
	}
}

// Clone returns a deep copy of v. Stored documents are never handed out
// directly; every read and every event carries a clone.
func Clone(v IRValue) IRValue {
	switch val := v.(type) {
	case IRArray:
		out := make(IRArray, len(val))
		for i, elem := range val {
			out[i] = Clone(elem)
		}
		return out
	case IRObject:
		return val.Clone()
	default:
		return v
	}
}

// Clone returns a deep copy of the object. A nil object clones to nil.
func (obj IRObject) Clone() IRObject {
	if obj == nil {
		return nil
	}
	out := make(IRObject, len(obj))
	for k, v := range obj {
		out[k] = Clone(v)
	}
	return out
}
