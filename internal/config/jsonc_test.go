package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSONFile_AcceptsComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rush.json")
	content := `{
  // Rush configuration files allow comments
  "rushVersion": "5.120.0",
  /* and trailing commas */
  "projects": [ { "packageName": "a", "projectFolder": "apps/a" }, ],
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	var doc struct {
		RushVersion string `json:"rushVersion"`
		Projects    []struct {
			PackageName string `json:"packageName"`
		} `json:"projects"`
	}
	require.NoError(t, ReadJSONFile(path, &doc))
	assert.Equal(t, "5.120.0", doc.RushVersion)
	require.Len(t, doc.Projects, 1)
	assert.Equal(t, "a", doc.Projects[0].PackageName)
}

func TestReadJSONFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": `), 0o600))

	var v map[string]any
	err := ReadJSONFile(path, &v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestStandardizeJSON_LeavesInputUnchanged(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "line comment", input: "{\n  // keep me\n  \"a\": 1\n}", want: `{"a":1}`},
		{name: "block comment", input: `{ /* keep me */ "a": 1 }`, want: `{"a":1}`},
		{name: "trailing comma", input: `{"a": [1, 2,],}`, want: `{"a":[1,2]}`},
		{name: "plain json", input: `{"a": 1}`, want: `{"a":1}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := []byte(tc.input)
			std, err := StandardizeJSON(data)
			require.NoError(t, err)
			assert.Equal(t, tc.input, string(data))
			assert.JSONEq(t, tc.want, string(std))
		})
	}
}
