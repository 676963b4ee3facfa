package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "dev stays bare", input: "dev", want: "dev"},
		{name: "empty stays empty", input: "", want: ""},
		{name: "bare version gets v prefix", input: "1.2.3", want: "v1.2.3"},
		{name: "prefixed version unchanged", input: "v1.2.3", want: "v1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatVersion(tt.input))
		})
	}
}

func TestSetVersionInfo(t *testing.T) {
	originalVersion := version
	originalCommit := commit
	originalDate := date
	defer func() {
		version = originalVersion
		commit = originalCommit
		date = originalDate
	}()

	SetVersionInfo("2.0.0", "def5678", "2026-06-15T10:00:00Z")

	assert.Equal(t, "2.0.0", version)
	assert.Equal(t, "2.0.0", GetVersion())
	assert.Equal(t, "def5678", commit)
	assert.Equal(t, "2026-06-15T10:00:00Z", date)
}
