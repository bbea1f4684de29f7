package api

import "time"

// DeployOutcome classifies how a deploy call ended.
type DeployOutcome string

const (
	// DeployCreated means a new session cluster was created and is reachable.
	DeployCreated DeployOutcome = "created"

	// DeployReattached means an existing running cluster was reused.
	DeployReattached DeployOutcome = "reattached"

	// DeployIndeterminate means no reachable endpoint became available after
	// the attempt. The cluster may or may not exist; the caller decides
	// whether to retry or escalate.
	DeployIndeterminate DeployOutcome = "indeterminate"
)

// DeployResponse references a reachable session cluster.
type DeployResponse struct {
	ClusterID       string `json:"clusterId"`
	WebInterfaceURL string `json:"webInterfaceUrl"`
}

// DeployResult is the outcome of a deploy call. Response is nil iff the
// outcome is DeployIndeterminate.
type DeployResult struct {
	Outcome  DeployOutcome   `json:"outcome"`
	Response *DeployResponse `json:"response,omitempty"`
}

// Ready reports whether the deploy produced a reachable cluster.
func (r DeployResult) Ready() bool {
	return r.Outcome != DeployIndeterminate && r.Response != nil
}

// SubmitResponse describes an accepted job submission.
type SubmitResponse struct {
	ClusterID string `json:"clusterId"`

	// Configuration is a snapshot of the effective configuration used for the submission.
	Configuration map[string]string `json:"configuration"`

	JobID           string `json:"jobId"`
	WebInterfaceURL string `json:"webInterfaceUrl"`
}

// CancelResponse describes the result of a cancel request.
type CancelResponse struct {
	ClusterID string `json:"clusterId"`
	JobID     string `json:"jobId"`
	Cancelled bool   `json:"cancelled"`
	Status    string `json:"status"`
}

// SavepointResponse carries the location of a completed savepoint.
type SavepointResponse struct {
	ClusterID string `json:"clusterId"`
	JobID     string `json:"jobId"`
	Location  string `json:"location"`
}

// ShutDownResponse acknowledges a shutdown request.
type ShutDownResponse struct {
	ClusterID string `json:"clusterId"`
}

// ClusterSummary is one row of the session cluster listing.
type ClusterSummary struct {
	ClusterID   string    `json:"clusterId"`
	State       string    `json:"state"`
	FinalStatus string    `json:"finalStatus"`
	Namespace   string    `json:"namespace,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
