package queryir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/haze/internal/ir"
)

func TestParseOperator(t *testing.T) {
	names := []string{
		"eq", "neq", "gt", "ge", "lt", "le", "in", "nin", "exists", "nexists",
		"prefix", "suffix", "contains", "iprefix", "isuffix", "icontains",
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			op := ParseOperator(name)
			assert.True(t, op.Valid())
			assert.Equal(t, name, op.String())
		})
	}

	assert.Equal(t, OpInvalid, ParseOperator("regex"))
	assert.Equal(t, OpInvalid, ParseOperator("invalid"))
	assert.Equal(t, OpInvalid, ParseOperator(""))
	assert.False(t, OpInvalid.Valid())
	assert.False(t, Operator(99).Valid())
}

func TestOperatorUsesValue(t *testing.T) {
	assert.False(t, OpExists.UsesValue())
	assert.False(t, OpNotExists.UsesValue())
	assert.True(t, OpEqual.UsesValue())
}

func TestWhereKeepsRawOperator(t *testing.T) {
	c := Where("name", "like", ir.IRString("A"))
	assert.Equal(t, OpInvalid, c.Op)
	assert.Equal(t, "like", c.OperatorName())

	c = Clause{Field: "n", Op: OpGreater}
	assert.Equal(t, "gt", c.OperatorName())
}

func TestSortKey(t *testing.T) {
	field, desc := Query{Sort: "-count"}.SortKey()
	assert.Equal(t, "count", field)
	assert.True(t, desc)

	field, desc = Query{Sort: "name"}.SortKey()
	assert.Equal(t, "name", field)
	assert.False(t, desc)
}

func TestResultMarshalJSON(t *testing.T) {
	data, err := json.Marshal(Result{CountOnly: true, Count: 3})
	require.NoError(t, err)
	assert.Equal(t, `{"count":3}`, string(data))

	data, err = json.Marshal(EmptyResult(false))
	require.NoError(t, err)
	assert.Equal(t, `{"results":[]}`, string(data))

	data, err = json.Marshal(Result{Results: []ir.IRObject{{"id": ir.IRString("a"), "n": ir.IRInt(1)}}})
	require.NoError(t, err)
	assert.Equal(t, `{"results":[{"id":"a","n":1}]}`, string(data))
}

func TestResultIDs(t *testing.T) {
	r := Result{Results: []ir.IRObject{
		{"id": ir.IRString("b")},
		{"id": ir.IRString("a")},
	}}
	assert.Equal(t, []string{"b", "a"}, r.IDs())
}
