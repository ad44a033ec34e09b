package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_ResolvesFixturePaths(t *testing.T) {
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "tasks_query.yaml"))
	require.NoError(t, err)

	require.Len(t, s.Fixtures, 1)
	assert.Equal(t, filepath.Join("testdata", "fixtures", "tasks.cue"), s.Fixtures[0])
	assert.Len(t, s.Steps, 11)
	assert.Len(t, s.Assertions, 5)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_MissingFixture(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: s
description: d
fixtures: [missing.cue]
steps:
  - op: create
    collection: c
`), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fixture not found")
}

func TestParseScenario_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown field",
			yaml:    "name: a\ndescription: b\nsteps: [{op: create, collection: c}]\nassertion: []\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "missing name",
			yaml:    "description: b\nsteps: [{op: create, collection: c}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: a\nsteps: [{op: create, collection: c}]\n",
			wantErr: "description is required",
		},
		{
			name:    "no steps",
			yaml:    "name: a\ndescription: b\nsteps: []\n",
			wantErr: "steps list is required",
		},
		{
			name:    "unknown op",
			yaml:    "name: a\ndescription: b\nsteps: [{op: upsert, collection: c}]\n",
			wantErr: `unknown op "upsert"`,
		},
		{
			name:    "get without id",
			yaml:    "name: a\ndescription: b\nsteps: [{op: get, collection: c}]\n",
			wantErr: "collection and id are required for get",
		},
		{
			name:    "update without document",
			yaml:    "name: a\ndescription: b\nsteps: [{op: update, collection: c}]\n",
			wantErr: "document is required for update",
		},
		{
			name:    "increment without key",
			yaml:    "name: a\ndescription: b\nsteps: [{op: increment, collection: c, id: x}]\n",
			wantErr: "key are required for increment",
		},
		{
			name:    "query without query",
			yaml:    "name: a\ndescription: b\nsteps: [{op: query}]\n",
			wantErr: "query is required",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: a\ndescription: b\nsteps: [{op: create, collection: c}]\nassertions: [{type: trace_magic}]\n",
			wantErr: `unknown assertion type "trace_magic"`,
		},
		{
			name:    "trace_order without events",
			yaml:    "name: a\ndescription: b\nsteps: [{op: create, collection: c}]\nassertions: [{type: trace_order}]\n",
			wantErr: "events list is required",
		},
		{
			name:    "final_state without expect",
			yaml:    "name: a\ndescription: b\nsteps: [{op: create, collection: c}]\nassertions: [{type: final_state, collection: c}]\n",
			wantErr: "expect is required for final_state",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseScenario_AbsentFinalStateNeedsNoExpect(t *testing.T) {
	_, err := ParseScenario([]byte(
		"name: a\ndescription: b\nsteps: [{op: destroy, collection: c, id: x}]\n" +
			"assertions: [{type: final_state, collection: c, where: {id: x}, absent: true}]\n"))
	assert.NoError(t, err)
}
