package config

import (
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Configuration keys understood by sessionctl and its control-plane adapters.
const (
	KeyExecutionTarget  = "execution.target"
	KeyClusterID        = "cluster.id"
	KeyShipFiles        = "cluster.ship-files"
	KeyDistArtifact     = "cluster.dist-artifact"
	KeyConfigDir        = "cluster.config-dir"
	KeyDeployTimeout    = "cluster.deploy-timeout"
	KeyNamespace        = "kubernetes.namespace"
	KeyImage            = "kubernetes.container.image"
	KeyRestPort         = "rest.port"
	KeyParallelism      = "parallelism.default"
	KeySavepointDir     = "state.savepoints.dir"
	KeySavepointTimeout = "savepoint.timeout"
	KeyJobManagerMemory = "jobmanager.memory.process.size"
	KeyTaskSlots        = "taskmanager.numberOfTaskSlots"
	KeyAuthRequired     = "security.auth.required"
	KeyAuthTokenFile    = "security.auth.token-file"
)

// settingsOnlyPrefix marks keys that only the settings file and the service
// itself may set. Per-call overrides must not weaken security preconditions.
const settingsOnlyPrefix = "security."

// IsSettingsOnly reports whether key may not be overridden per call.
func IsSettingsOnly(key string) bool {
	return strings.HasPrefix(strings.TrimSpace(key), settingsOnlyPrefix)
}

// TargetSession is the only deployment target sessionctl drives.
const TargetSession = "session"

// listSeparator joins list-valued entries such as the ship files.
const listSeparator = ";"

// Configuration is an immutable set of key/value pairs assembled for one
// operation. Methods that change it return a new value; the receiver is
// never modified, so a Configuration may be passed around by value freely.
// The zero value is an empty configuration.
type Configuration struct {
	values map[string]string
}

// New returns a Configuration holding a copy of values.
func New(values map[string]string) Configuration {
	return Configuration{values: maps.Clone(values)}
}

// Get returns the value stored under key.
func (c Configuration) Get(key string) (string, bool) {
	v, ok := c.values[key]
	return v, ok
}

// GetString returns the value for key or def when it is unset.
func (c Configuration) GetString(key, def string) string {
	if v, ok := c.values[key]; ok {
		return v
	}
	return def
}

// GetList splits a list-valued entry. Unset keys yield nil.
func (c Configuration) GetList(key string) []string {
	v, ok := c.values[key]
	if !ok || v == "" {
		return nil
	}
	return strings.Split(v, listSeparator)
}

// GetInt parses an integer entry, falling back to def when unset or malformed.
func (c Configuration) GetInt(key string, def int) int {
	v, ok := c.values[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// GetBool parses a boolean entry, falling back to def when unset or malformed.
func (c Configuration) GetBool(key string, def bool) bool {
	v, ok := c.values[key]
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

// GetDuration parses a duration entry such as "5m" or "30s". Plain integers
// are read as seconds.
func (c Configuration) GetDuration(key string, def time.Duration) time.Duration {
	v, ok := c.values[key]
	if !ok {
		return def
	}
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// With returns a copy of c with key set to value.
func (c Configuration) With(key, value string) Configuration {
	next := make(map[string]string, len(c.values)+1)
	maps.Copy(next, c.values)
	next[key] = value
	return Configuration{values: next}
}

// WithList returns a copy of c with key set to the joined items.
func (c Configuration) WithList(key string, items []string) Configuration {
	return c.With(key, strings.Join(items, listSeparator))
}

// WithAll returns a copy of c with every non-empty entry of overrides applied.
// Empty values mean "unset" and are skipped.
func (c Configuration) WithAll(overrides map[string]string) Configuration {
	next := make(map[string]string, len(c.values)+len(overrides))
	maps.Copy(next, c.values)
	for k, v := range overrides {
		if v == "" {
			continue
		}
		next[k] = v
	}
	return Configuration{values: next}
}

// Without returns a copy of c with key removed.
func (c Configuration) Without(key string) Configuration {
	next := maps.Clone(c.values)
	delete(next, key)
	return Configuration{values: next}
}

// Keys returns the configured keys in sorted order.
func (c Configuration) Keys() []string {
	return slices.Sorted(maps.Keys(c.values))
}

// ToMap returns a copy of the entries, safe for the caller to modify.
func (c Configuration) ToMap() map[string]string {
	out := maps.Clone(c.values)
	if out == nil {
		out = map[string]string{}
	}
	return out
}

// Len returns the number of entries.
func (c Configuration) Len() int {
	return len(c.values)
}

// Equal reports whether both configurations hold the same entries.
func (c Configuration) Equal(other Configuration) bool {
	return maps.Equal(c.values, other.values)
}
