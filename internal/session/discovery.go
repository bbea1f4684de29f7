package session

import (
	"context"

	"github.com/giantswarm/sessionctl/internal/api"
	"github.com/giantswarm/sessionctl/internal/controlplane"
)

// Status classifies a session cluster as seen by the control plane.
type Status int

const (
	// StatusNotFound means the control plane does not know the cluster.
	StatusNotFound Status = iota
	// StatusRunning means the cluster has no final status yet.
	StatusRunning
	// StatusTerminated means the cluster finished, failed or was killed.
	StatusTerminated
)

func (s Status) String() string {
	switch s {
	case StatusNotFound:
		return "NotFound"
	case StatusRunning:
		return "Running"
	case StatusTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// Discover asks the control plane for the status of clusterID. An unknown
// cluster is StatusNotFound with a nil error; any other control plane error is
// returned unchanged.
func Discover(ctx context.Context, d controlplane.Descriptor, clusterID string) (Status, controlplane.ApplicationReport, error) {
	report, err := d.ApplicationReport(ctx, clusterID)
	if err != nil {
		if api.IsNotFound(err) {
			return StatusNotFound, controlplane.ApplicationReport{ClusterID: clusterID}, nil
		}
		return StatusNotFound, controlplane.ApplicationReport{}, err
	}

	if report.FinalStatus == controlplane.FinalStatusUndefined {
		return StatusRunning, report, nil
	}
	return StatusTerminated, report, nil
}
