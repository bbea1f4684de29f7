package config

import (
	"path/filepath"
	"sort"
)

const distArtifactPattern = "flink-dist*.jar"

// Assemble builds the effective configuration of a session deployment for
// the runtime installed at installPath.
//
// Defaults come first, the caller's overrides are layered on top (empty
// values skipped), and the deployment-specific entries are set last: the
// session target, the staged lib and plugins directories, the distribution
// artifact and the configuration directory. overrides is not modified.
//
// The result depends only on the arguments and on which distribution
// artifacts exist under installPath/lib.
func Assemble(installPath string, overrides map[string]string) Configuration {
	cfg := New(Defaults()).WithAll(overrides)
	return ForDeployment(cfg, installPath)
}

// ForDeployment sets the session deployment entries for installPath on cfg.
func ForDeployment(cfg Configuration, installPath string) Configuration {
	libDir := filepath.Join(installPath, "lib")
	pluginsDir := filepath.Join(installPath, "plugins")

	return cfg.
		With(KeyExecutionTarget, TargetSession).
		WithList(KeyShipFiles, []string{libDir, pluginsDir}).
		With(KeyDistArtifact, distArtifact(libDir)).
		With(KeyConfigDir, filepath.Join(installPath, "conf"))
}

// ForCluster addresses cfg at an existing session cluster.
func ForCluster(cfg Configuration, clusterID string) Configuration {
	return cfg.
		With(KeyClusterID, clusterID).
		With(KeyExecutionTarget, TargetSession)
}

// distArtifact picks the first distribution jar in libDir in lexical order,
// falling back to the conventional name when none is present.
func distArtifact(libDir string) string {
	matches, err := filepath.Glob(filepath.Join(libDir, distArtifactPattern))
	if err != nil || len(matches) == 0 {
		return filepath.Join(libDir, "flink-dist.jar")
	}
	sort.Strings(matches)
	return matches[0]
}
