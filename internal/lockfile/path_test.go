package lockfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatForMajorVersion(t *testing.T) {
	tests := []struct {
		major int
		want  PathFormat
	}{
		{3, FormatV5},
		{5, FormatV5},
		{6, FormatV6},
		{7, FormatV6},
		{9, FormatV9},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatForMajorVersion(tc.major), "major %d", tc.major)
	}
}

func TestPathFormat_Build(t *testing.T) {
	assert.Equal(t, "/lodash/1.0.0", FormatV5.Build("lodash", "1.0.0"))
	assert.Equal(t, "/lodash@1.0.0", FormatV6.Build("lodash", "1.0.0"))
	assert.Equal(t, "lodash@1.0.0", FormatV9.Build("lodash", "1.0.0"))
	assert.Equal(t, "/@types/node@20.1.0", FormatV6.Build("@types/node", "20.1.0"))
}

func TestPathFormat_Parse(t *testing.T) {
	tests := []struct {
		name        string
		format      PathFormat
		path        string
		wantName    string
		wantVersion string
		wantOK      bool
	}{
		{"v5 plain", FormatV5, "/lodash/1.0.0", "lodash", "1.0.0", true},
		{"v5 scoped", FormatV5, "/@types/node/20.1.0", "@types/node", "20.1.0", true},
		{"v5 peer suffix", FormatV5, "/react-dom/18.2.0_react@18.2.0", "react-dom", "18.2.0", true},
		{"v5 missing version", FormatV5, "/lodash", "", "", false},
		{"v6 plain", FormatV6, "/lodash@1.0.0", "lodash", "1.0.0", true},
		{"v6 scoped", FormatV6, "/@types/node@20.1.0", "@types/node", "20.1.0", true},
		{"v6 peer suffix", FormatV6, "/react-dom@18.2.0(react@18.2.0)", "react-dom", "18.2.0", true},
		{"v6 scope only", FormatV6, "/@types", "", "", false},
		{"v9 scoped", FormatV9, "@scope/pkg@2.0.0(peer@1.0.0)", "@scope/pkg", "2.0.0", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			name, version, ok := tc.format.Parse(tc.path)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.wantName, name)
				assert.Equal(t, tc.wantVersion, version)
			}
		})
	}
}

func TestIsLink(t *testing.T) {
	assert.True(t, IsLink("/lib@link:../../libraries/lib"))
	assert.True(t, IsLink("link:../lib"))
	assert.False(t, IsLink("/lodash@1.0.0"))
}
