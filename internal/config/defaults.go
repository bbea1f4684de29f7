package config

// DefaultInstallPath is used when neither the settings file nor FLINK_HOME
// name a runtime installation.
const DefaultInstallPath = "/opt/flink"

// Defaults returns the baseline configuration every operation starts from.
func Defaults() map[string]string {
	return map[string]string{
		KeyRestPort:         "8081",
		KeyNamespace:        "default",
		KeyImage:            "flink:1.18",
		KeyDeployTimeout:    "5m",
		KeySavepointTimeout: "5m",
		KeyParallelism:      "1",
		KeyJobManagerMemory: "1600m",
		KeyTaskSlots:        "1",
	}
}
