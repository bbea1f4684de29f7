package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/giantswarm/sessionctl/internal/api"
	"github.com/giantswarm/sessionctl/internal/config"
	"github.com/giantswarm/sessionctl/internal/controlplane"
	"github.com/giantswarm/sessionctl/internal/formatting"
	"github.com/giantswarm/sessionctl/internal/kubernetes"
	"github.com/giantswarm/sessionctl/internal/metrics"
	"github.com/giantswarm/sessionctl/internal/session"
	"github.com/giantswarm/sessionctl/pkg/logging"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeCredentialsRequired indicates the environment requires credentials that are not available.
	ExitCodeCredentialsRequired = 2
	// ExitCodeIndeterminate indicates a deploy whose cluster exposes no reachable endpoint yet.
	ExitCodeIndeterminate = 3
)

// Global flags shared by every command.
var (
	rootConfigPath string
	rootKubeconfig string
	rootContext    string
	rootNamespace  string
	rootFlinkHome  string
	rootImage      string
	rootLogLevel   string
	rootLogFormat  string
	rootEnvFile    string
	rootOutput     string
	rootQuiet      bool
	rootProperties []string
	rootNoColor    bool
)

// newClientFactory builds the control plane for the loaded settings. Tests
// replace it with a factory backed by a fake Kubernetes client.
var newClientFactory = func(settings config.Settings) (controlplane.ClientFactory, error) {
	k8sClient, err := kubernetes.NewClient(settings.Kubeconfig, settings.Context)
	if err != nil {
		return nil, err
	}
	return kubernetes.NewFactory(k8sClient), nil
}

// IndeterminateDeployError is returned by the deploy command when the cluster
// was deployed but exposes no reachable endpoint.
type IndeterminateDeployError struct{}

func (e *IndeterminateDeployError) Error() string {
	return "session cluster deployed but no reachable endpoint is available yet; retry or check the cluster"
}

// rootCmd represents the base command for the sessionctl application.
var rootCmd = &cobra.Command{
	Use:   "sessionctl",
	Short: "Manage shared session clusters on Kubernetes",
	Long: `sessionctl deploys long-lived session clusters that many jobs share,
reattaches to them, submits and cancels jobs, triggers savepoints and shuts
the clusters down.

Settings are read from $HOME/.config/sessionctl/config.yaml (or --config).
Any configuration property can be overridden per call with -D key=value.`,
	SilenceUsage:      true,
	PersistentPreRunE: initGlobals,
}

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}
	if api.IsSecurityPrecondition(err) {
		return ExitCodeCredentialsRequired
	}
	var indeterminate *IndeterminateDeployError
	if errors.As(err, &indeterminate) {
		return ExitCodeIndeterminate
	}
	return ExitCodeError
}

func initGlobals(cmd *cobra.Command, _ []string) error {
	if rootEnvFile != "" {
		if err := godotenv.Load(rootEnvFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", rootEnvFile, err)
		}
	}

	level, err := logging.ParseLevel(rootLogLevel)
	if err != nil {
		return err
	}
	format := logging.FormatText
	if rootLogFormat == string(logging.FormatJSON) {
		format = logging.FormatJSON
	}
	logging.Init(level, cmd.ErrOrStderr(), format)
	return nil
}

// loadSettings reads the settings file and applies the global flag overrides.
func loadSettings() (config.Settings, error) {
	path := rootConfigPath
	if path == "" {
		var err error
		path, err = config.DefaultSettingsPath()
		if err != nil {
			return config.Settings{}, err
		}
	}

	settings, err := config.LoadSettings(path)
	if err != nil {
		return config.Settings{}, err
	}

	if rootKubeconfig != "" {
		settings.Kubeconfig = rootKubeconfig
	}
	if rootContext != "" {
		settings.Context = rootContext
	}
	if rootNamespace != "" {
		settings.Namespace = rootNamespace
	}
	if rootFlinkHome != "" {
		settings.InstallPath = rootFlinkHome
	}
	if rootImage != "" {
		settings.Image = rootImage
	}
	if err := settings.Validate(); err != nil {
		return config.Settings{}, err
	}
	return settings, nil
}

// newService wires the lifecycle service for the current invocation.
func newService(recorder *metrics.Recorder) (*session.Service, config.Settings, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, config.Settings{}, err
	}

	factory, err := newClientFactory(settings)
	if err != nil {
		return nil, config.Settings{}, err
	}

	return session.NewService(factory, settings.InstallPath,
		session.WithProperties(settings.Overrides(nil)),
		session.WithMetrics(recorder),
	), settings, nil
}

// parseProperties turns repeated -D key=value flags into a map.
func parseProperties(raw []string) (map[string]string, error) {
	props := make(map[string]string, len(raw))
	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, &api.ValidationError{Field: "property", Message: fmt.Sprintf("%q is not of the form key=value", kv)}
		}
		props[key] = value
	}
	return props, nil
}

// newFormatter returns the formatter selected by --output and --quiet.
func newFormatter(cmd *cobra.Command) (formatting.Formatter, error) {
	format, err := formatting.ParseFormat(rootOutput)
	if err != nil {
		return nil, err
	}
	return formatting.NewFactory().CreateFormatter(formatting.Options{
		Format: format,
		Quiet:  rootQuiet,
		Color:  !rootNoColor,
		Out:    cmd.OutOrStdout(),
	}), nil
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootConfigPath, "config", "", "settings file (default is $HOME/.config/sessionctl/config.yaml)")
	flags.StringVar(&rootKubeconfig, "kubeconfig", "", "kubeconfig file (default follows $KUBECONFIG and ~/.kube/config)")
	flags.StringVar(&rootContext, "context", "", "kubeconfig context to use")
	flags.StringVarP(&rootNamespace, "namespace", "n", "", "namespace hosting the session clusters")
	flags.StringVar(&rootFlinkHome, "flink-home", "", "runtime installation whose lib and plugins are staged (default $FLINK_HOME)")
	flags.StringVar(&rootImage, "image", "", "runtime container image")
	flags.StringArrayVarP(&rootProperties, "property", "D", nil, "configuration override as key=value (repeatable)")
	flags.StringVar(&rootLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&rootLogFormat, "log-format", "text", "log format (text, json)")
	flags.StringVar(&rootEnvFile, "env-file", "", "load environment variables from this file first")
	flags.StringVarP(&rootOutput, "output", "o", "table", "output format (table, console, json, yaml)")
	flags.BoolVarP(&rootQuiet, "quiet", "q", false, "print identifiers only")
	flags.BoolVar(&rootNoColor, "no-color", false, "disable colored output")

	rootCmd.SetVersionTemplate(`{{printf "sessionctl version %s\n" .Version}}`)
	rootCmd.AddCommand(newVersionCmd())
}
