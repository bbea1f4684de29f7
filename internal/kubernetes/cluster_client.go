package kubernetes

import (
	"context"

	appsv1 "k8s.io/api/apps/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/giantswarm/sessionctl/internal/api"
	"github.com/giantswarm/sessionctl/internal/controlplane"
	"github.com/giantswarm/sessionctl/internal/restapi"
	"github.com/giantswarm/sessionctl/pkg/logging"
)

// ClusterClient talks to one session cluster: job calls go to its REST
// endpoint, lifecycle bookkeeping to the Kubernetes API.
type ClusterClient struct {
	id     string
	webURL string
	rest   *restapi.Client
	kube   client.Client
	key    types.NamespacedName
}

var _ controlplane.ClusterClient = (*ClusterClient)(nil)

func (c *ClusterClient) ClusterID() string {
	return c.id
}

func (c *ClusterClient) WebInterfaceURL() string {
	return c.webURL
}

func (c *ClusterClient) SubmitJob(ctx context.Context, graph controlplane.JobGraph) (string, error) {
	if err := c.requireEndpoint("submit job"); err != nil {
		return "", err
	}
	return c.rest.SubmitJob(ctx, graph)
}

func (c *ClusterClient) CancelJob(ctx context.Context, jobID string) (string, error) {
	if err := c.requireEndpoint("cancel job " + jobID); err != nil {
		return "", err
	}
	return c.rest.CancelJob(ctx, jobID)
}

func (c *ClusterClient) TriggerSavepoint(ctx context.Context, jobID string, opts controlplane.SavepointOptions) (string, error) {
	if err := c.requireEndpoint("savepoint job " + jobID); err != nil {
		return "", err
	}
	return c.rest.TriggerSavepoint(ctx, jobID, opts)
}

// ShutDownCluster asks the job manager to stop, then records the final status
// and scales the cluster to zero. A cluster without a reachable endpoint is
// only scaled down.
func (c *ClusterClient) ShutDownCluster(ctx context.Context) error {
	if c.rest != nil {
		if err := c.rest.ShutDownCluster(ctx); err != nil {
			return err
		}
	}

	var dep appsv1.Deployment
	if err := c.kube.Get(ctx, c.key, &dep); err != nil {
		if apierrors.IsNotFound(err) {
			return nil
		}
		return api.NewControlPlaneError("get deployment "+c.key.Name, err)
	}

	patch := client.MergeFrom(dep.DeepCopy())
	if dep.Annotations == nil {
		dep.Annotations = map[string]string{}
	}
	dep.Annotations[AnnotationFinalStatus] = string(controlplane.FinalStatusSucceeded)
	zero := int32(0)
	dep.Spec.Replicas = &zero

	if err := c.kube.Patch(ctx, &dep, patch); err != nil {
		return api.NewControlPlaneError("patch deployment "+c.key.Name, err)
	}
	logging.Info("Kubernetes", "Session cluster %s finished and scaled to zero", c.id)
	return nil
}

func (c *ClusterClient) Close() error {
	if c.rest == nil {
		return nil
	}
	return c.rest.Close()
}

func (c *ClusterClient) requireEndpoint(operation string) error {
	if c.rest == nil {
		return &api.ControlPlaneError{Operation: operation, Message: "cluster " + c.id + " exposes no reachable endpoint"}
	}
	return nil
}
