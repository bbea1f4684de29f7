package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/giantswarm/sessionctl/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/sessionctl"
	configFileName = "config.yaml"

	// InstallPathEnvVar names the runtime installation when the settings file does not.
	InstallPathEnvVar = "FLINK_HOME"
)

// Settings is the sessionctl settings file. It selects the control plane and
// carries properties that are layered onto every operation's configuration.
type Settings struct {
	// InstallPath is the runtime installation whose lib and plugins are staged.
	InstallPath string `yaml:"installPath,omitempty"`

	// Kubeconfig is the kubeconfig file; empty means in-cluster or $KUBECONFIG.
	Kubeconfig string `yaml:"kubeconfig,omitempty"`

	// Context selects a kubeconfig context.
	Context string `yaml:"context,omitempty"`

	// Namespace hosts the session clusters.
	Namespace string `yaml:"namespace,omitempty"`

	// Image is the runtime container image.
	Image string `yaml:"image,omitempty"`

	// Listen is the address of the HTTP gateway started by `sessionctl serve`.
	Listen string `yaml:"listen,omitempty"`

	// Properties are configuration overrides applied to every operation.
	Properties map[string]string `yaml:"properties,omitempty"`
}

// DefaultSettings returns settings with every optional field defaulted.
func DefaultSettings() Settings {
	installPath := os.Getenv(InstallPathEnvVar)
	if installPath == "" {
		installPath = DefaultInstallPath
	}
	return Settings{
		InstallPath: installPath,
		Namespace:   "default",
		Listen:      "localhost:8090",
	}
}

// DefaultSettingsPath returns $HOME/.config/sessionctl/config.yaml.
func DefaultSettingsPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

// LoadSettings reads the settings file at path. A missing file yields the
// defaults; a malformed one yields a ConfigurationError.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("Config", "No settings file at %s, using defaults", path)
			return settings, nil
		}
		return Settings{}, NewConfigurationError(path, "io", err.Error())
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Settings{}, NewConfigurationError(path, "parse", err.Error())
	}

	if err := settings.Validate(); err != nil {
		return Settings{}, NewConfigurationError(path, "validation", err.Error())
	}

	logging.Debug("Config", "Loaded settings from %s", path)
	return settings, nil
}

// Validate checks the fields that cannot be defaulted.
func (s Settings) Validate() error {
	if s.InstallPath == "" {
		return errors.New("installPath must not be empty")
	}
	if !filepath.IsAbs(s.InstallPath) {
		return fmt.Errorf("installPath %q must be absolute", s.InstallPath)
	}
	for k := range s.Properties {
		if k == "" {
			return errors.New("properties must not contain an empty key")
		}
	}
	return nil
}

// Overrides merges the settings-level properties with per-call properties.
// Per-call values win; the inputs are not modified.
func (s Settings) Overrides(perCall map[string]string) map[string]string {
	out := make(map[string]string, len(s.Properties)+len(perCall)+2)
	if s.Namespace != "" {
		out[KeyNamespace] = s.Namespace
	}
	if s.Image != "" {
		out[KeyImage] = s.Image
	}
	for k, v := range s.Properties {
		out[k] = v
	}
	for k, v := range perCall {
		if v == "" {
			continue
		}
		out[k] = v
	}
	return out
}
