package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeRoot(t *testing.T, args ...string) string {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return stdout.String()
}

func TestVersionOutput(t *testing.T) {
	original := GetVersion()
	defer SetVersion(original)

	tests := []struct {
		name    string
		version string
		args    []string
	}{
		{name: "version command", version: "1.4.0", args: []string{"version"}},
		{name: "version flag", version: "1.4.0", args: []string{"--version"}},
		{name: "pre-release", version: "v2.0.0-rc.1", args: []string{"version"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetVersion(tt.version)
			assert.Equal(t, "sessionctl version "+tt.version+"\n", executeRoot(t, tt.args...))
		})
	}
}

func TestVersionCommand_NeedsNoSettings(t *testing.T) {
	original := newClientFactory
	defer func() { newClientFactory = original }()
	newClientFactory = nil

	out := executeRoot(t, "--config", "/nonexistent/config.yaml", "version")
	assert.Contains(t, out, "sessionctl version")
}
