package ir

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func posInf() float64 { return math.Inf(1) }

func TestIRValueSealed(t *testing.T) {
	var _ IRValue = IRNull{}
	var _ IRValue = IRString("test")
	var _ IRValue = IRInt(42)
	var _ IRValue = IRFloat(4.2)
	var _ IRValue = IRBool(true)
	var _ IRValue = IRArray{IRString("a"), IRInt(1)}
	var _ IRValue = IRObject{"key": IRString("value")}
}

func TestIRObjectSortedKeys(t *testing.T) {
	obj := IRObject{
		"zebra":  IRString("z"),
		"apple":  IRString("a"),
		"banana": IRString("b"),
	}

	assert.Equal(t, []string{"apple", "banana", "zebra"}, obj.SortedKeys())
	assert.Empty(t, IRObject{}.SortedKeys())
}

func TestParseJSONNumbers(t *testing.T) {
	tests := []struct {
		input    string
		expected IRValue
	}{
		{"5", IRInt(5)},
		{"-12", IRInt(-12)},
		{"1.5", IRFloat(1.5)},
		{"2.0", IRFloat(2)},
		{"1e3", IRFloat(1000)},
		{"99999999999999999999", IRFloat(1e20)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := ParseJSON([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestParseObject(t *testing.T) {
	obj, err := ParseObject([]byte(`{"name":"Ann","tags":["a",1],"meta":{"ok":true},"gone":null}`))
	require.NoError(t, err)

	assert.Equal(t, IRObject{
		"name": IRString("Ann"),
		"tags": IRArray{IRString("a"), IRInt(1)},
		"meta": IRObject{"ok": IRBool(true)},
		"gone": IRNull{},
	}, obj)
}

func TestParseObjectRejectsNonObject(t *testing.T) {
	_, err := ParseObject([]byte(`[1,2]`))
	assert.Error(t, err)

	_, err = ParseObject([]byte(`{"a":1} {"b":2}`))
	assert.Error(t, err)
}

func TestIRObjectJSONRoundTrip(t *testing.T) {
	in := IRObject{"b": IRInt(1), "a": IRArray{IRFloat(0.5)}}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, `{"a":[0.5],"b":1}`, string(data))

	var out IRObject
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestFromGo(t *testing.T) {
	v, err := FromGo(map[string]any{
		"i": 3,
		"f": 2.0,
		"h": 2.5,
		"l": []any{"x", true, nil},
	})
	require.NoError(t, err)

	assert.Equal(t, IRObject{
		"i": IRInt(3),
		"f": IRInt(2),
		"h": IRFloat(2.5),
		"l": IRArray{IRString("x"), IRBool(true), IRNull{}},
	}, v)

	_, err = FromGo(struct{}{})
	assert.Error(t, err)
}

func TestToGo(t *testing.T) {
	got := ToGo(IRObject{"n": IRInt(1), "s": IRArray{IRString("a")}, "z": IRNull{}})
	assert.Equal(t, map[string]any{"n": int64(1), "s": []any{"a"}, "z": nil}, got)
}

func TestDocumentReservedFields(t *testing.T) {
	doc := IRObject{FieldID: IRString("u1"), FieldVersion: IRInt(17)}

	id, ok := doc.ID()
	require.True(t, ok)
	assert.Equal(t, "u1", id)

	v, ok := doc.Version()
	require.True(t, ok)
	assert.Equal(t, int64(17), v)

	_, ok = IRObject{FieldVersion: IRString("17")}.Version()
	assert.False(t, ok)

	v, ok = IRObject{FieldVersion: IRFloat(1700000000000)}.Version()
	require.True(t, ok)
	assert.Equal(t, int64(1700000000000), v)
}

func TestIsReservedField(t *testing.T) {
	assert.True(t, IsReservedField(FieldID))
	assert.True(t, IsReservedField(FieldVersion))
	assert.False(t, IsReservedField("count"))
	assert.False(t, IsReservedField(""))
}
