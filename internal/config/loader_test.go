package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// Helper function to create a temporary settings file
func createTempSettingsFile(t *testing.T, dir string, content Settings) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	data, err := yaml.Marshal(&content)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestLoadSettings_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(InstallPathEnvVar, "")

	settings, err := LoadSettings(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultInstallPath, settings.InstallPath)
	assert.Equal(t, "default", settings.Namespace)
	assert.Equal(t, "localhost:8090", settings.Listen)
}

func TestLoadSettings_InstallPathFromEnvironment(t *testing.T) {
	t.Setenv(InstallPathEnvVar, "/usr/lib/flink")

	settings, err := LoadSettings(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/usr/lib/flink", settings.InstallPath)
}

func TestLoadSettings_FileOverridesDefaults(t *testing.T) {
	path := createTempSettingsFile(t, t.TempDir(), Settings{
		InstallPath: "/srv/flink",
		Namespace:   "analytics",
		Image:       "flink:1.19",
		Properties:  map[string]string{KeyTaskSlots: "4"},
	})

	settings, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/flink", settings.InstallPath)
	assert.Equal(t, "analytics", settings.Namespace)
	assert.Equal(t, "flink:1.19", settings.Image)
	assert.Equal(t, "4", settings.Properties[KeyTaskSlots])
	// untouched fields keep their defaults
	assert.Equal(t, "localhost:8090", settings.Listen)
}

func TestLoadSettings_Errors(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errorType string
	}{
		{
			name:      "malformed yaml",
			content:   "installPath: [unterminated",
			errorType: "parse",
		},
		{
			name:      "relative install path",
			content:   "installPath: flink",
			errorType: "validation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := LoadSettings(path)
			require.Error(t, err)
			assert.True(t, IsConfigurationError(err))

			var ce ConfigurationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.errorType, ce.ErrorType)
			assert.Equal(t, "config.yaml", ce.FileName)
		})
	}
}

func TestSettings_Overrides(t *testing.T) {
	settings := Settings{
		Namespace:  "analytics",
		Image:      "flink:1.19",
		Properties: map[string]string{KeyTaskSlots: "4", KeyRestPort: "9000"},
	}
	perCall := map[string]string{KeyRestPort: "9091", KeyParallelism: ""}

	got := settings.Overrides(perCall)

	assert.Equal(t, map[string]string{
		KeyNamespace: "analytics",
		KeyImage:     "flink:1.19",
		KeyTaskSlots: "4",
		KeyRestPort:  "9091",
	}, got)
	assert.Equal(t, map[string]string{KeyRestPort: "9091", KeyParallelism: ""}, perCall, "per-call map must not be modified")
}
