// Package config assembles the effective configuration of session operations
// and loads the sessionctl settings file.
//
// # Effective configuration
//
// Configuration is an immutable key/value set. Each operation builds its own
// with Assemble, which layers, in order:
//
//  1. Defaults (REST port, namespace, image, timeouts, parallelism)
//  2. caller overrides, skipping empty values
//  3. the session deployment entries: execution.target=session, the staged
//     lib and plugins directories, the distribution jar and the conf directory
//
// With, WithAll and Without return new values, so no operation can observe
// another's changes.
//
//	cfg := config.Assemble("/opt/flink", map[string]string{"rest.port": "9091"})
//	cfg = config.ForCluster(cfg, "application_1718000000_1a2b3c4d")
//
// # Settings file
//
// LoadSettings reads $HOME/.config/sessionctl/config.yaml:
//
//	installPath: /opt/flink
//	namespace: analytics
//	image: flink:1.18
//	properties:
//	  taskmanager.numberOfTaskSlots: "4"
//
// A missing file yields DefaultSettings; parse and validation problems are
// reported as ConfigurationError.
package config
