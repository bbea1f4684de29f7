package api

import (
	"fmt"
	"strings"

	"github.com/giantswarm/sessionctl/internal/config"
)

// Request types for the session lifecycle operations. Requests are owned by
// the caller and never modified by the operation that receives them.

// DeployRequest asks for a session cluster. When ClusterID is set the
// operation first tries to reattach to that cluster.
type DeployRequest struct {
	// ClusterID is the identity of a cluster deployed earlier (optional).
	ClusterID string `json:"clusterId,omitempty"`

	// Properties override configuration defaults. Empty values are ignored.
	Properties map[string]string `json:"properties,omitempty"`
}

// Validate checks the request at entry.
func (r DeployRequest) Validate() error {
	return ValidateProperties(r.Properties)
}

// JobSpec describes the packaged job artifact and how to run it.
type JobSpec struct {
	// JarPath is the local path of the job artifact (required).
	JarPath string `json:"jarPath"`

	// EntryClass overrides the main class recorded in the artifact manifest.
	EntryClass string `json:"entryClass,omitempty"`

	// Args are passed to the job's main method.
	Args []string `json:"args,omitempty"`

	// Parallelism overrides parallelism.default when greater than zero.
	Parallelism int `json:"parallelism,omitempty"`

	// SavepointPath restores the job from an existing savepoint.
	SavepointPath string `json:"savepointPath,omitempty"`

	// AllowNonRestoredState skips savepoint state that cannot be mapped.
	AllowNonRestoredState bool `json:"allowNonRestoredState,omitempty"`
}

// SubmitRequest submits one job to a running session cluster.
type SubmitRequest struct {
	ClusterID  string            `json:"clusterId"`
	Properties map[string]string `json:"properties,omitempty"`
	Job        JobSpec           `json:"job"`
}

// Validate checks the request at entry.
func (r SubmitRequest) Validate() error {
	if err := requireClusterID(r.ClusterID); err != nil {
		return err
	}
	if strings.TrimSpace(r.Job.JarPath) == "" {
		return &ValidationError{Field: "job.jarPath", Message: "must not be empty"}
	}
	if r.Job.Parallelism < 0 {
		return &ValidationError{Field: "job.parallelism", Message: "must not be negative"}
	}
	return ValidateProperties(r.Properties)
}

// CancelRequest cancels a job running on a session cluster.
type CancelRequest struct {
	ClusterID  string            `json:"clusterId"`
	JobID      string            `json:"jobId"`
	Properties map[string]string `json:"properties,omitempty"`
}

// Validate checks the request at entry.
func (r CancelRequest) Validate() error {
	if err := requireClusterID(r.ClusterID); err != nil {
		return err
	}
	if err := requireJobID(r.JobID); err != nil {
		return err
	}
	return ValidateProperties(r.Properties)
}

// TriggerSavepointRequest triggers a savepoint for a running job.
type TriggerSavepointRequest struct {
	ClusterID string `json:"clusterId"`
	JobID     string `json:"jobId"`

	// TargetDirectory overrides state.savepoints.dir for this savepoint.
	TargetDirectory string `json:"targetDirectory,omitempty"`

	Properties map[string]string `json:"properties,omitempty"`
}

// Validate checks the request at entry.
func (r TriggerSavepointRequest) Validate() error {
	if err := requireClusterID(r.ClusterID); err != nil {
		return err
	}
	if err := requireJobID(r.JobID); err != nil {
		return err
	}
	return ValidateProperties(r.Properties)
}

// ShutDownRequest stops a session cluster. Shutting down a cluster that is
// already gone is not an error.
type ShutDownRequest struct {
	ClusterID  string            `json:"clusterId"`
	Properties map[string]string `json:"properties,omitempty"`
}

// Validate checks the request at entry.
func (r ShutDownRequest) Validate() error {
	if err := requireClusterID(r.ClusterID); err != nil {
		return err
	}
	return ValidateProperties(r.Properties)
}

func requireClusterID(id string) error {
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Field: "clusterId", Message: "must not be empty"}
	}
	return nil
}

func requireJobID(id string) error {
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Field: "jobId", Message: "must not be empty"}
	}
	return nil
}

// ValidateProperties rejects property maps with empty keys and with keys
// that only the settings file may set.
func ValidateProperties(props map[string]string) error {
	for key := range props {
		if strings.TrimSpace(key) == "" {
			return &ValidationError{Field: "properties", Message: "keys must not be empty"}
		}
		if config.IsSettingsOnly(key) {
			return &ValidationError{Field: "properties", Message: fmt.Sprintf("%s can only be set in the settings file", key)}
		}
	}
	return nil
}
