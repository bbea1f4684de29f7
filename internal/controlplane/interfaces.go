package controlplane

import (
	"context"
	"io"
	"time"

	"github.com/giantswarm/sessionctl/internal/config"
)

// FinalStatus is the resource manager's final status of an application.
type FinalStatus string

const (
	// FinalStatusUndefined means the application has not finished: it is live.
	FinalStatusUndefined FinalStatus = "UNDEFINED"
	FinalStatusSucceeded FinalStatus = "SUCCEEDED"
	FinalStatusFailed    FinalStatus = "FAILED"
	FinalStatusKilled    FinalStatus = "KILLED"
)

// ApplicationReport is the control plane's status snapshot of one session cluster.
type ApplicationReport struct {
	ClusterID   string
	Namespace   string
	State       string
	FinalStatus FinalStatus
	CreatedAt   time.Time
}

// ClusterSpec describes the session cluster to create.
type ClusterSpec struct {
	Configuration config.Configuration
}

// JobGraph is the runnable form of a packaged job, produced by the job
// graph builder and consumed by ClusterClient.SubmitJob.
type JobGraph struct {
	JobID                 string
	Name                  string
	EntryClass            string
	Args                  []string
	Parallelism           int
	SavepointPath         string
	AllowNonRestoredState bool

	// ArtifactName is the file name the artifact is uploaded under.
	ArtifactName string

	// Artifact streams the job artifact.
	Artifact io.Reader
}

// SavepointOptions tune a savepoint trigger.
type SavepointOptions struct {
	TargetDirectory string
	Timeout         time.Duration
}

// ClientFactory resolves which cluster a configuration addresses and creates
// descriptors for it.
type ClientFactory interface {
	// ClusterID returns the cluster identity configured in cfg. It fails when
	// cfg does not address a cluster.
	ClusterID(cfg config.Configuration) (string, error)

	// NewDescriptor returns a descriptor able to create, retrieve and list
	// session clusters in the namespace cfg points at.
	NewDescriptor(ctx context.Context, cfg config.Configuration) (Descriptor, error)
}

// Descriptor creates and retrieves session clusters.
type Descriptor interface {
	// Deploy creates a new session cluster and returns a client bound to it.
	Deploy(ctx context.Context, spec ClusterSpec) (ClusterClient, error)

	// Retrieve returns a client bound to an existing cluster. A missing
	// cluster is reported as an api.NotFoundError.
	Retrieve(ctx context.Context, clusterID string) (ClusterClient, error)

	// ApplicationReport returns the current status of a cluster. A missing
	// cluster is reported as an api.NotFoundError.
	ApplicationReport(ctx context.Context, clusterID string) (ApplicationReport, error)

	// List returns the reports of all session clusters known to the descriptor.
	List(ctx context.Context) ([]ApplicationReport, error)

	Close() error
}

// ClusterClient talks to one session cluster.
type ClusterClient interface {
	ClusterID() string

	// SubmitJob runs graph on the cluster and returns the job id.
	SubmitJob(ctx context.Context, graph JobGraph) (string, error)

	// CancelJob cancels a job and returns the cluster's acknowledgement.
	CancelJob(ctx context.Context, jobID string) (string, error)

	// TriggerSavepoint triggers a savepoint and returns its location once completed.
	TriggerSavepoint(ctx context.Context, jobID string, opts SavepointOptions) (string, error)

	// ShutDownCluster stops the whole session cluster.
	ShutDownCluster(ctx context.Context) error

	// WebInterfaceURL returns the cluster's web endpoint, empty when none is exposed.
	WebInterfaceURL() string

	Close() error
}
