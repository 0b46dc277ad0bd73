package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: test_scenario
description: "Test scenario for validation"
config:
  readOnly: true
  extensions:
    "*": [".json"]
steps:
  - op: save_setting
    name: flows
    value: [{id: n1}]
  - op: get_entry
    type: flows
    path: B/flow
    expect: Hi
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	require.NotNil(t, scenario.Config)
	assert.True(t, scenario.Config.ReadOnly)
	assert.False(t, scenario.Config.FlowFilePretty)
	assert.Equal(t, map[string][]string{"*": {".json"}}, scenario.Config.Extensions)

	require.Len(t, scenario.Steps, 2)
	assert.Equal(t, OpSaveSetting, scenario.Steps[0].Op)
	assert.Equal(t, []any{map[string]any{"id": "n1"}}, scenario.Steps[0].Value)
	assert.Equal(t, "B/flow", scenario.Steps[1].Path)
	assert.Equal(t, "Hi", scenario.Steps[1].Expect)
}

func TestLoadScenario_BodyAndEmptyPath(t *testing.T) {
	path := writeScenario(t, `
name: body
description: "Body and root path"
steps:
  - op: save_entry
    type: object
    path: file1.js
    meta: {abc: def}
    body: "line one\nline two"
  - op: get_entry
    type: object
    path: ""
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	save := scenario.Steps[0]
	require.NotNil(t, save.Body)
	assert.Equal(t, "line one\nline two", *save.Body)
	assert.Equal(t, map[string]any{"abc": "def"}, save.Meta)
	assert.Equal(t, "", scenario.Steps[1].Path)
	assert.Nil(t, scenario.Steps[1].Expect)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: "Misspelled key"
steps:
  - op: get_setting
    name: flows
    expected: []
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "description: d\nsteps: [{op: get_setting, name: flows}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			content: "name: n\nsteps: [{op: get_setting, name: flows}]\n",
			wantErr: "description is required",
		},
		{
			name:    "no steps",
			content: "name: n\ndescription: d\n",
			wantErr: "steps list is required",
		},
		{
			name:    "missing op",
			content: "name: n\ndescription: d\nsteps: [{name: flows}]\n",
			wantErr: "steps[0]: op is required",
		},
		{
			name:    "unknown op",
			content: "name: n\ndescription: d\nsteps: [{op: delete_setting, name: flows}]\n",
			wantErr: `unknown op "delete_setting"`,
		},
		{
			name:    "setting without name",
			content: "name: n\ndescription: d\nsteps: [{op: get_setting}]\n",
			wantErr: "name is required for get_setting",
		},
		{
			name:    "save without value",
			content: "name: n\ndescription: d\nsteps: [{op: save_setting, name: flows}]\n",
			wantErr: "value is required for save_setting",
		},
		{
			name:    "value on a read",
			content: "name: n\ndescription: d\nsteps: [{op: get_setting, name: flows, value: 1}]\n",
			wantErr: "value is only valid for save_setting",
		},
		{
			name:    "body on a read",
			content: "name: n\ndescription: d\nsteps: [{op: get_entry, type: t, body: x}]\n",
			wantErr: "meta and body are only valid for save_entry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_Testdata(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			assert.Equal(t, filepath.Base(path), scenario.Name+".yaml")
		})
	}
}
