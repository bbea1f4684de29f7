package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfiguration_WithDoesNotMutateReceiver(t *testing.T) {
	base := New(map[string]string{"a": "1"})
	next := base.With("b", "2").Without("a")

	v, ok := base.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	_, ok = base.Get("b")
	assert.False(t, ok)

	assert.Equal(t, map[string]string{"b": "2"}, next.ToMap())
}

func TestConfiguration_NewCopiesInput(t *testing.T) {
	in := map[string]string{"a": "1"}
	cfg := New(in)
	in["a"] = "changed"

	assert.Equal(t, "1", cfg.GetString("a", ""))

	out := cfg.ToMap()
	out["a"] = "changed"
	assert.Equal(t, "1", cfg.GetString("a", ""))
}

func TestConfiguration_ZeroValue(t *testing.T) {
	var cfg Configuration

	assert.Equal(t, 0, cfg.Len())
	assert.Empty(t, cfg.Keys())
	assert.NotNil(t, cfg.ToMap())
	assert.Equal(t, "x", cfg.GetString("missing", "x"))
	assert.Equal(t, "v", cfg.With("k", "v").GetString("k", ""))
}

func TestConfiguration_TypedGetters(t *testing.T) {
	cfg := New(map[string]string{
		"int":      "42",
		"badInt":   "forty",
		"bool":     "true",
		"duration": "90s",
		"seconds":  "30",
		"list":     "/a;/b",
	})

	assert.Equal(t, 42, cfg.GetInt("int", 0))
	assert.Equal(t, 7, cfg.GetInt("badInt", 7))
	assert.Equal(t, 7, cfg.GetInt("missing", 7))
	assert.True(t, cfg.GetBool("bool", false))
	assert.True(t, cfg.GetBool("missing", true))
	assert.Equal(t, 90*time.Second, cfg.GetDuration("duration", 0))
	assert.Equal(t, 30*time.Second, cfg.GetDuration("seconds", 0))
	assert.Equal(t, time.Minute, cfg.GetDuration("missing", time.Minute))
	assert.Equal(t, []string{"/a", "/b"}, cfg.GetList("list"))
	assert.Nil(t, cfg.GetList("missing"))
}

func TestConfiguration_WithAllSkipsEmptyValues(t *testing.T) {
	cfg := New(map[string]string{"keep": "yes", "replace": "old"}).
		WithAll(map[string]string{"replace": "new", "keep": "", "added": "1"})

	assert.Equal(t, map[string]string{"keep": "yes", "replace": "new", "added": "1"}, cfg.ToMap())
}

func TestAssemble(t *testing.T) {
	install := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(install, "lib"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(install, "lib", "flink-dist-1.18.1.jar"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(install, "lib", "flink-dist-1.17.0.jar"), nil, 0644))

	overrides := map[string]string{
		KeyRestPort:        "9091",
		KeyExecutionTarget: "per-job",
		KeyParallelism:     "",
	}

	cfg := Assemble(install, overrides)

	assert.Equal(t, TargetSession, cfg.GetString(KeyExecutionTarget, ""), "deployment entries win over overrides")
	assert.Equal(t, "9091", cfg.GetString(KeyRestPort, ""))
	assert.Equal(t, "1", cfg.GetString(KeyParallelism, ""), "empty override keeps the default")
	assert.Equal(t, []string{filepath.Join(install, "lib"), filepath.Join(install, "plugins")}, cfg.GetList(KeyShipFiles))
	assert.Equal(t, filepath.Join(install, "lib", "flink-dist-1.17.0.jar"), cfg.GetString(KeyDistArtifact, ""))
	assert.Equal(t, filepath.Join(install, "conf"), cfg.GetString(KeyConfigDir, ""))

	assert.Equal(t, map[string]string{
		KeyRestPort:        "9091",
		KeyExecutionTarget: "per-job",
		KeyParallelism:     "",
	}, overrides, "caller overrides must not be mutated")
}

func TestAssemble_FallbackDistArtifact(t *testing.T) {
	cfg := Assemble("/opt/flink", nil)
	assert.Equal(t, "/opt/flink/lib/flink-dist.jar", cfg.GetString(KeyDistArtifact, ""))
}

func TestAssemble_Deterministic(t *testing.T) {
	overrides := map[string]string{KeyNamespace: "analytics", KeyTaskSlots: "4"}

	first := Assemble("/opt/flink", overrides)
	second := Assemble("/opt/flink", overrides)

	assert.True(t, first.Equal(second))
	assert.Equal(t, first.ToMap(), second.ToMap())
}

func TestForCluster(t *testing.T) {
	cfg := ForCluster(New(nil), "application_001")

	assert.Equal(t, "application_001", cfg.GetString(KeyClusterID, ""))
	assert.Equal(t, TargetSession, cfg.GetString(KeyExecutionTarget, ""))
}

func TestIsSettingsOnly(t *testing.T) {
	assert.True(t, IsSettingsOnly(KeyAuthRequired))
	assert.True(t, IsSettingsOnly(KeyAuthTokenFile))
	assert.True(t, IsSettingsOnly(" security.ssl.enabled"))
	assert.False(t, IsSettingsOnly(KeyParallelism))
	assert.False(t, IsSettingsOnly("cluster.security"))
}
