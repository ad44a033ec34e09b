package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		input string
		want  Reference
		ok    bool
	}{
		{"users:u1", Reference{"users", "u1"}, true},
		{"users:a:b", Reference{"users", "a:b"}, true},
		{"users:", Reference{}, false},
		{":u1", Reference{}, false},
		{"plain", Reference{}, false},
		{"", Reference{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseReference(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReferenceOf(t *testing.T) {
	ref, ok := ReferenceOf(IRString("tasks:t1"))
	assert.True(t, ok)
	assert.Equal(t, "tasks:t1", ref.String())
	assert.Equal(t, IRString("tasks:t1"), ref.Value())

	_, ok = ReferenceOf(IRInt(5))
	assert.False(t, ok)
}
