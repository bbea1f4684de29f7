package kubernetes

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/wait"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/giantswarm/sessionctl/internal/api"
	"github.com/giantswarm/sessionctl/internal/config"
	"github.com/giantswarm/sessionctl/internal/controlplane"
	"github.com/giantswarm/sessionctl/internal/restapi"
	"github.com/giantswarm/sessionctl/pkg/logging"
)

// Labels and annotations set on every object of a session cluster.
const (
	LabelManagedBy  = "app.kubernetes.io/managed-by"
	LabelComponent  = "app.kubernetes.io/component"
	LabelInstance   = "app.kubernetes.io/instance"
	ManagedByValue  = "sessionctl"
	ComponentMaster = "jobmanager"

	AnnotationApplicationID = "sessionctl.io/application-id"
	AnnotationFinalStatus   = "sessionctl.io/final-status"
	AnnotationShipFiles     = "sessionctl.io/ship-files"
	AnnotationDistArtifact  = "sessionctl.io/dist-artifact"

	// StateRunning is reported for a cluster with at least one available job manager.
	StateRunning = "RUNNING"
	// StateAccepted is reported for a cluster that was created but is not yet available.
	StateAccepted = "ACCEPTED"
	// StateFinished is reported once a final status was recorded.
	StateFinished = "FINISHED"

	containerName = "jobmanager"
	restPortName  = "rest"
)

// Descriptor creates, retrieves and lists session clusters in one namespace.
type Descriptor struct {
	client       client.Client
	namespace    string
	cfg          config.Configuration
	resolver     EndpointResolver
	tokens       oauth2.TokenSource
	httpClient   *http.Client
	pollInterval time.Duration
}

var _ controlplane.Descriptor = (*Descriptor)(nil)

// Namespace returns the namespace the descriptor operates in.
func (d *Descriptor) Namespace() string {
	return d.namespace
}

// Deploy creates the Deployment and Service of a new session cluster and waits
// up to cluster.deploy-timeout for it to become available. A cluster that is
// not available in time is returned without a web endpoint.
func (d *Descriptor) Deploy(ctx context.Context, spec controlplane.ClusterSpec) (controlplane.ClusterClient, error) {
	id := NewClusterID(time.Now())
	name := ObjectName(id)
	port := int32(spec.Configuration.GetInt(config.KeyRestPort, 8081))

	deployment := buildDeployment(id, name, d.namespace, port, spec.Configuration)
	if err := d.client.Create(ctx, deployment); err != nil {
		return nil, api.NewControlPlaneError("create deployment "+name, err)
	}
	logging.Info("Kubernetes", "Created deployment %s/%s for %s", d.namespace, name, id)

	service := buildService(id, name, d.namespace, port)
	if err := d.client.Create(ctx, service); err != nil {
		if delErr := d.client.Delete(ctx, deployment); delErr != nil && !apierrors.IsNotFound(delErr) {
			logging.Warn("Kubernetes", "Failed to remove deployment %s/%s after service creation failed: %v", d.namespace, name, delErr)
		}
		return nil, api.NewControlPlaneError("create service "+service.Name, err)
	}

	timeout := spec.Configuration.GetDuration(config.KeyDeployTimeout, 5*time.Minute)
	if timeout > 0 {
		available, err := d.waitAvailable(ctx, name, timeout)
		if err != nil {
			return nil, err
		}
		if !available {
			logging.Warn("Kubernetes", "Session cluster %s not available after %s", id, timeout)
			return d.newClusterClient(id, name, ""), nil
		}
	}

	return d.newClusterClient(id, name, d.resolver(service)), nil
}

func (d *Descriptor) waitAvailable(ctx context.Context, name string, timeout time.Duration) (bool, error) {
	key := types.NamespacedName{Namespace: d.namespace, Name: name}
	err := wait.PollUntilContextTimeout(ctx, d.pollInterval, timeout, true, func(ctx context.Context) (bool, error) {
		var dep appsv1.Deployment
		if err := d.client.Get(ctx, key, &dep); err != nil {
			if apierrors.IsNotFound(err) {
				return false, nil
			}
			return false, api.NewControlPlaneError("get deployment "+name, err)
		}
		return dep.Status.AvailableReplicas > 0, nil
	})
	if err != nil {
		if wait.Interrupted(err) && ctx.Err() == nil {
			return false, nil
		}
		if api.IsControlPlaneFailure(err) {
			return false, err
		}
		return false, api.NewControlPlaneError("wait for deployment "+name, err)
	}
	return true, nil
}

// Retrieve returns a client bound to an existing cluster.
func (d *Descriptor) Retrieve(ctx context.Context, clusterID string) (controlplane.ClusterClient, error) {
	dep, err := d.getDeployment(ctx, clusterID)
	if err != nil {
		return nil, err
	}

	var svc corev1.Service
	key := types.NamespacedName{Namespace: d.namespace, Name: serviceName(dep.Name)}
	if err := d.client.Get(ctx, key, &svc); err != nil {
		if apierrors.IsNotFound(err) {
			logging.Debug("Kubernetes", "Session cluster %s has no REST service", clusterID)
			return d.newClusterClient(clusterID, dep.Name, ""), nil
		}
		return nil, api.NewControlPlaneError("get service "+key.Name, err)
	}
	return d.newClusterClient(clusterID, dep.Name, d.resolver(&svc)), nil
}

// ApplicationReport returns the current status of a cluster.
func (d *Descriptor) ApplicationReport(ctx context.Context, clusterID string) (controlplane.ApplicationReport, error) {
	dep, err := d.getDeployment(ctx, clusterID)
	if err != nil {
		return controlplane.ApplicationReport{}, err
	}
	return reportFor(dep), nil
}

// List returns the reports of all session clusters in the namespace, oldest first.
func (d *Descriptor) List(ctx context.Context) ([]controlplane.ApplicationReport, error) {
	var deployments appsv1.DeploymentList
	if err := d.client.List(ctx, &deployments,
		client.InNamespace(d.namespace),
		client.MatchingLabels{LabelManagedBy: ManagedByValue, LabelComponent: ComponentMaster},
	); err != nil {
		return nil, api.NewControlPlaneError("list deployments", err)
	}

	reports := make([]controlplane.ApplicationReport, 0, len(deployments.Items))
	for i := range deployments.Items {
		reports = append(reports, reportFor(&deployments.Items[i]))
	}
	sort.SliceStable(reports, func(i, j int) bool {
		if reports[i].CreatedAt.Equal(reports[j].CreatedAt) {
			return reports[i].ClusterID < reports[j].ClusterID
		}
		return reports[i].CreatedAt.Before(reports[j].CreatedAt)
	})
	return reports, nil
}

// Close releases the descriptor. The shared Kubernetes client stays open.
func (d *Descriptor) Close() error {
	return nil
}

func (d *Descriptor) getDeployment(ctx context.Context, clusterID string) (*appsv1.Deployment, error) {
	var dep appsv1.Deployment
	key := types.NamespacedName{Namespace: d.namespace, Name: ObjectName(clusterID)}
	if err := d.client.Get(ctx, key, &dep); err != nil {
		if apierrors.IsNotFound(err) {
			return nil, api.NewApplicationNotFoundError(clusterID)
		}
		return nil, api.NewControlPlaneError("get deployment "+key.Name, err)
	}
	if dep.Annotations[AnnotationApplicationID] != clusterID {
		return nil, api.NewApplicationNotFoundError(clusterID)
	}
	return &dep, nil
}

func (d *Descriptor) newClusterClient(clusterID, name, webURL string) *ClusterClient {
	c := &ClusterClient{
		id:     clusterID,
		webURL: webURL,
		kube:   d.client,
		key:    types.NamespacedName{Namespace: d.namespace, Name: name},
	}
	if webURL != "" {
		var opts []restapi.Option
		if d.httpClient != nil {
			opts = append(opts, restapi.WithHTTPClient(d.httpClient))
		}
		c.rest = restapi.New(webURL, d.tokens, opts...)
	}
	return c
}

// NewClusterID returns a fresh application identity.
func NewClusterID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("application_%d_%s", now.Unix(), suffix)
}

// ObjectName maps a cluster identity to the name of its Kubernetes objects.
func ObjectName(clusterID string) string {
	return strings.ToLower(strings.ReplaceAll(clusterID, "_", "-"))
}

func serviceName(objectName string) string {
	return objectName + "-rest"
}

func reportFor(dep *appsv1.Deployment) controlplane.ApplicationReport {
	final := controlplane.FinalStatus(dep.Annotations[AnnotationFinalStatus])
	if final == "" {
		final = controlplane.FinalStatusUndefined
	}

	state := StateAccepted
	switch {
	case final != controlplane.FinalStatusUndefined:
		state = StateFinished
	case dep.Status.AvailableReplicas > 0:
		state = StateRunning
	}

	return controlplane.ApplicationReport{
		ClusterID:   dep.Annotations[AnnotationApplicationID],
		Namespace:   dep.Namespace,
		State:       state,
		FinalStatus: final,
		CreatedAt:   dep.CreationTimestamp.Time,
	}
}
