package session

import (
	"context"
	"io"

	"github.com/giantswarm/sessionctl/internal/api"
	"github.com/giantswarm/sessionctl/internal/config"
	"github.com/giantswarm/sessionctl/internal/controlplane"
)

type fakeClient struct {
	id  string
	url string

	submitErr         error
	cancelStatus      string
	cancelErr         error
	savepointLocation string
	savepointErr      error
	shutdownErr       error
	closeErr          error

	submitted       []controlplane.JobGraph
	submittedBodies []string
	cancelled       []string
	savepointOpts   []controlplane.SavepointOptions
	shutdowns       int
	closes          int
}

func (c *fakeClient) ClusterID() string       { return c.id }
func (c *fakeClient) WebInterfaceURL() string { return c.url }

func (c *fakeClient) SubmitJob(_ context.Context, graph controlplane.JobGraph) (string, error) {
	if c.submitErr != nil {
		return "", c.submitErr
	}
	body, err := io.ReadAll(graph.Artifact)
	if err != nil {
		return "", err
	}
	c.submitted = append(c.submitted, graph)
	c.submittedBodies = append(c.submittedBodies, string(body))
	return graph.JobID, nil
}

func (c *fakeClient) CancelJob(_ context.Context, jobID string) (string, error) {
	if c.cancelErr != nil {
		return "", c.cancelErr
	}
	c.cancelled = append(c.cancelled, jobID)
	return c.cancelStatus, nil
}

func (c *fakeClient) TriggerSavepoint(_ context.Context, _ string, opts controlplane.SavepointOptions) (string, error) {
	c.savepointOpts = append(c.savepointOpts, opts)
	if c.savepointErr != nil {
		return "", c.savepointErr
	}
	return c.savepointLocation, nil
}

func (c *fakeClient) ShutDownCluster(context.Context) error {
	c.shutdowns++
	return c.shutdownErr
}

func (c *fakeClient) Close() error {
	c.closes++
	return c.closeErr
}

type fakeDescriptor struct {
	reports   map[string]controlplane.ApplicationReport
	reportErr error
	listErr   error

	clients     map[string]*fakeClient
	retrieveErr error

	deployClient *fakeClient
	deployErr    error

	closeErr error

	deploys   []controlplane.ClusterSpec
	retrieves []string
	closes    int
}

func newFakeDescriptor() *fakeDescriptor {
	return &fakeDescriptor{
		reports: map[string]controlplane.ApplicationReport{},
		clients: map[string]*fakeClient{},
	}
}

// withCluster registers a cluster with the given final status and endpoint.
func (d *fakeDescriptor) withCluster(id string, final controlplane.FinalStatus, url string) *fakeClient {
	d.reports[id] = controlplane.ApplicationReport{ClusterID: id, Namespace: "default", State: "RUNNING", FinalStatus: final}
	c := &fakeClient{id: id, url: url, cancelStatus: "accepted"}
	d.clients[id] = c
	return c
}

func (d *fakeDescriptor) Deploy(_ context.Context, spec controlplane.ClusterSpec) (controlplane.ClusterClient, error) {
	d.deploys = append(d.deploys, spec)
	if d.deployErr != nil {
		return nil, d.deployErr
	}
	return d.deployClient, nil
}

func (d *fakeDescriptor) Retrieve(_ context.Context, id string) (controlplane.ClusterClient, error) {
	d.retrieves = append(d.retrieves, id)
	if d.retrieveErr != nil {
		return nil, d.retrieveErr
	}
	c, ok := d.clients[id]
	if !ok {
		return nil, api.NewApplicationNotFoundError(id)
	}
	return c, nil
}

func (d *fakeDescriptor) ApplicationReport(_ context.Context, id string) (controlplane.ApplicationReport, error) {
	if d.reportErr != nil {
		return controlplane.ApplicationReport{}, d.reportErr
	}
	r, ok := d.reports[id]
	if !ok {
		return controlplane.ApplicationReport{}, api.NewApplicationNotFoundError(id)
	}
	return r, nil
}

func (d *fakeDescriptor) List(context.Context) ([]controlplane.ApplicationReport, error) {
	if d.listErr != nil {
		return nil, d.listErr
	}
	out := make([]controlplane.ApplicationReport, 0, len(d.reports))
	for _, r := range d.reports {
		out = append(out, r)
	}
	return out, nil
}

func (d *fakeDescriptor) Close() error {
	d.closes++
	return d.closeErr
}

type fakeFactory struct {
	descriptor   *fakeDescriptor
	err          error
	clusterIDErr error
	resolvedID   string

	configs []config.Configuration
}

func (f *fakeFactory) ClusterID(cfg config.Configuration) (string, error) {
	if f.clusterIDErr != nil {
		return "", f.clusterIDErr
	}
	if f.resolvedID != "" {
		return f.resolvedID, nil
	}
	id := cfg.GetString(config.KeyClusterID, "")
	if id == "" {
		return "", &api.ValidationError{Field: config.KeyClusterID, Message: "not set"}
	}
	return id, nil
}

func (f *fakeFactory) NewDescriptor(_ context.Context, cfg config.Configuration) (controlplane.Descriptor, error) {
	f.configs = append(f.configs, cfg)
	if f.err != nil {
		return nil, f.err
	}
	return f.descriptor, nil
}
