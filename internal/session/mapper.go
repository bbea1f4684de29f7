package session

import (
	"net/url"

	"github.com/giantswarm/sessionctl/internal/api"
	"github.com/giantswarm/sessionctl/internal/config"
	"github.com/giantswarm/sessionctl/internal/controlplane"
)

// reachable reports whether raw is an absolute http(s) URL with a host.
func reachable(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func deployResult(outcome api.DeployOutcome, c controlplane.ClusterClient) api.DeployResult {
	if outcome == api.DeployIndeterminate || c == nil {
		return api.DeployResult{Outcome: api.DeployIndeterminate}
	}
	return api.DeployResult{
		Outcome: outcome,
		Response: &api.DeployResponse{
			ClusterID:       c.ClusterID(),
			WebInterfaceURL: c.WebInterfaceURL(),
		},
	}
}

func submitResponse(c controlplane.ClusterClient, cfg config.Configuration, jobID string) *api.SubmitResponse {
	return &api.SubmitResponse{
		ClusterID:       c.ClusterID(),
		Configuration:   cfg.ToMap(),
		JobID:           jobID,
		WebInterfaceURL: c.WebInterfaceURL(),
	}
}

func cancelResponse(clusterID, jobID, status string) *api.CancelResponse {
	return &api.CancelResponse{
		ClusterID: clusterID,
		JobID:     jobID,
		Cancelled: true,
		Status:    status,
	}
}

func savepointResponse(clusterID, jobID, location string) *api.SavepointResponse {
	return &api.SavepointResponse{
		ClusterID: clusterID,
		JobID:     jobID,
		Location:  location,
	}
}

func shutDownResponse(clusterID string) *api.ShutDownResponse {
	return &api.ShutDownResponse{ClusterID: clusterID}
}

func clusterSummary(r controlplane.ApplicationReport) api.ClusterSummary {
	return api.ClusterSummary{
		ClusterID:   r.ClusterID,
		State:       r.State,
		FinalStatus: string(r.FinalStatus),
		Namespace:   r.Namespace,
		CreatedAt:   r.CreatedAt,
	}
}
