package kubernetes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"

	"github.com/giantswarm/sessionctl/internal/api"
	"github.com/giantswarm/sessionctl/internal/config"
	"github.com/giantswarm/sessionctl/internal/controlplane"
)

func testConfig(overrides map[string]string) config.Configuration {
	return config.Assemble("/opt/flink", overrides)
}

func newDescriptor(t *testing.T, c client.Client, cfg config.Configuration, opts ...FactoryOption) *Descriptor {
	t.Helper()
	f := NewFactory(c, append([]FactoryOption{WithPollInterval(10 * time.Millisecond)}, opts...)...)
	d, err := f.NewDescriptor(context.Background(), cfg)
	require.NoError(t, err)
	return d.(*Descriptor)
}

func fixedResolver(url string) EndpointResolver {
	return func(*corev1.Service) string { return url }
}

func existingCluster(id string, finalStatus controlplane.FinalStatus, available int32) []client.Object {
	name := ObjectName(id)
	return []client.Object{
		&appsv1.Deployment{
			ObjectMeta: metav1.ObjectMeta{
				Name:      name,
				Namespace: "default",
				Labels:    labelsFor(name),
				Annotations: map[string]string{
					AnnotationApplicationID: id,
					AnnotationFinalStatus:   string(finalStatus),
				},
			},
			Status: appsv1.DeploymentStatus{AvailableReplicas: available},
		},
		buildService(id, name, "default", 8081),
	}
}

func TestFactory_ClusterID(t *testing.T) {
	f := NewFactory(fake.NewClientBuilder().WithScheme(NewScheme()).Build())

	_, err := f.ClusterID(testConfig(nil))
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))

	id, err := f.ClusterID(config.ForCluster(testConfig(nil), "application_001"))
	require.NoError(t, err)
	assert.Equal(t, "application_001", id)
}

func TestFactory_NewDescriptor_RequiresNamespace(t *testing.T) {
	f := NewFactory(fake.NewClientBuilder().WithScheme(NewScheme()).Build())
	_, err := f.NewDescriptor(context.Background(), testConfig(nil).Without(config.KeyNamespace))
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
}

func TestDeploy_CreatesObjects(t *testing.T) {
	c := fake.NewClientBuilder().WithScheme(NewScheme()).Build()
	cfg := testConfig(map[string]string{config.KeyDeployTimeout: "0"})
	d := newDescriptor(t, c, cfg, WithEndpointResolver(fixedResolver("http://host:8081")))

	cc, err := d.Deploy(context.Background(), controlplane.ClusterSpec{Configuration: cfg})
	require.NoError(t, err)
	defer cc.Close()

	assert.Regexp(t, `^application_\d+_[0-9a-f]{8}$`, cc.ClusterID())
	assert.Equal(t, "http://host:8081", cc.WebInterfaceURL())

	name := ObjectName(cc.ClusterID())
	var dep appsv1.Deployment
	require.NoError(t, c.Get(context.Background(), types.NamespacedName{Namespace: "default", Name: name}, &dep))
	assert.Equal(t, ManagedByValue, dep.Labels[LabelManagedBy])
	assert.Equal(t, cc.ClusterID(), dep.Annotations[AnnotationApplicationID])
	assert.Equal(t, "UNDEFINED", dep.Annotations[AnnotationFinalStatus])
	assert.Equal(t, "/opt/flink/lib;/opt/flink/plugins", dep.Annotations[AnnotationShipFiles])

	container := dep.Spec.Template.Spec.Containers[0]
	assert.Equal(t, "flink:1.18", container.Image)
	assert.Equal(t, int32(8081), container.Ports[0].ContainerPort)
	require.Len(t, container.Env, 2)
	assert.Contains(t, container.Env[0].Value, "execution.target: session\n")

	var svc corev1.Service
	require.NoError(t, c.Get(context.Background(), types.NamespacedName{Namespace: "default", Name: name + "-rest"}, &svc))
	assert.Equal(t, int32(8081), svc.Spec.Ports[0].Port)

	report, err := d.ApplicationReport(context.Background(), cc.ClusterID())
	require.NoError(t, err)
	assert.Equal(t, controlplane.FinalStatusUndefined, report.FinalStatus)
	assert.Equal(t, StateAccepted, report.State)
}

func TestDeploy_WaitsForAvailability(t *testing.T) {
	var gets int
	c := fake.NewClientBuilder().WithScheme(NewScheme()).WithInterceptorFuncs(interceptor.Funcs{
		Get: func(ctx context.Context, cl client.WithWatch, key client.ObjectKey, obj client.Object, opts ...client.GetOption) error {
			if err := cl.Get(ctx, key, obj, opts...); err != nil {
				return err
			}
			if dep, ok := obj.(*appsv1.Deployment); ok {
				gets++
				if gets >= 2 {
					dep.Status.AvailableReplicas = 1
				}
			}
			return nil
		},
	}).Build()
	cfg := testConfig(map[string]string{config.KeyDeployTimeout: "5"})
	d := newDescriptor(t, c, cfg, WithEndpointResolver(fixedResolver("http://host:8081")))

	cc, err := d.Deploy(context.Background(), controlplane.ClusterSpec{Configuration: cfg})
	require.NoError(t, err)
	assert.Equal(t, "http://host:8081", cc.WebInterfaceURL())
	assert.GreaterOrEqual(t, gets, 2)
}

func TestDeploy_NotAvailableInTime(t *testing.T) {
	c := fake.NewClientBuilder().WithScheme(NewScheme()).Build()
	cfg := testConfig(map[string]string{config.KeyDeployTimeout: "100ms"})
	d := newDescriptor(t, c, cfg, WithEndpointResolver(fixedResolver("http://host:8081")))

	cc, err := d.Deploy(context.Background(), controlplane.ClusterSpec{Configuration: cfg})
	require.NoError(t, err)
	assert.NotEmpty(t, cc.ClusterID())
	assert.Empty(t, cc.WebInterfaceURL())
}

func TestRetrieve(t *testing.T) {
	c := fake.NewClientBuilder().WithScheme(NewScheme()).
		WithObjects(existingCluster("application_001", controlplane.FinalStatusUndefined, 1)...).
		Build()
	d := newDescriptor(t, c, testConfig(nil))

	cc, err := d.Retrieve(context.Background(), "application_001")
	require.NoError(t, err)
	assert.Equal(t, "application_001", cc.ClusterID())
	assert.Equal(t, "http://application-001-rest.default.svc:8081", cc.WebInterfaceURL())

	report, err := d.ApplicationReport(context.Background(), "application_001")
	require.NoError(t, err)
	assert.Equal(t, StateRunning, report.State)

	_, err = d.Retrieve(context.Background(), "application_404")
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
}

func TestRetrieve_WithoutService(t *testing.T) {
	objs := existingCluster("application_001", controlplane.FinalStatusUndefined, 1)
	c := fake.NewClientBuilder().WithScheme(NewScheme()).WithObjects(objs[0]).Build()
	d := newDescriptor(t, c, testConfig(nil))

	cc, err := d.Retrieve(context.Background(), "application_001")
	require.NoError(t, err)
	assert.Empty(t, cc.WebInterfaceURL())

	_, err = cc.CancelJob(context.Background(), "abc123")
	require.Error(t, err)
	assert.True(t, api.IsControlPlaneFailure(err))
}

func TestApplicationReport_Finished(t *testing.T) {
	c := fake.NewClientBuilder().WithScheme(NewScheme()).
		WithObjects(existingCluster("application_002", controlplane.FinalStatusSucceeded, 0)...).
		Build()
	d := newDescriptor(t, c, testConfig(nil))

	report, err := d.ApplicationReport(context.Background(), "application_002")
	require.NoError(t, err)
	assert.Equal(t, controlplane.FinalStatusSucceeded, report.FinalStatus)
	assert.Equal(t, StateFinished, report.State)
}

func TestList(t *testing.T) {
	objs := append(existingCluster("application_001", controlplane.FinalStatusUndefined, 1),
		existingCluster("application_002", controlplane.FinalStatusSucceeded, 0)...)
	objs = append(objs, &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: "unrelated", Namespace: "default"},
	})
	c := fake.NewClientBuilder().WithScheme(NewScheme()).WithObjects(objs...).Build()
	d := newDescriptor(t, c, testConfig(nil))

	reports, err := d.List(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "application_001", reports[0].ClusterID)
	assert.Equal(t, "application_002", reports[1].ClusterID)
}

func TestShutDownCluster(t *testing.T) {
	var deletes int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete && r.URL.Path == "/cluster" {
			deletes++
			w.WriteHeader(http.StatusAccepted)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := fake.NewClientBuilder().WithScheme(NewScheme()).
		WithObjects(existingCluster("application_001", controlplane.FinalStatusUndefined, 1)...).
		Build()
	d := newDescriptor(t, c, testConfig(nil), WithEndpointResolver(fixedResolver(srv.URL)))

	cc, err := d.Retrieve(context.Background(), "application_001")
	require.NoError(t, err)
	require.NoError(t, cc.ShutDownCluster(context.Background()))
	assert.Equal(t, 1, deletes)

	var dep appsv1.Deployment
	require.NoError(t, c.Get(context.Background(), types.NamespacedName{Namespace: "default", Name: "application-001"}, &dep))
	assert.Equal(t, "SUCCEEDED", dep.Annotations[AnnotationFinalStatus])
	require.NotNil(t, dep.Spec.Replicas)
	assert.Equal(t, int32(0), *dep.Spec.Replicas)

	report, err := d.ApplicationReport(context.Background(), "application_001")
	require.NoError(t, err)
	assert.Equal(t, StateFinished, report.State)
}

func TestServiceDNSResolver(t *testing.T) {
	svc := buildService("application_001", "application-001", "flink", 8081)
	assert.Equal(t, "http://application-001-rest.flink.svc:8081", ServiceDNSResolver(svc))

	svc.Status.LoadBalancer.Ingress = []corev1.LoadBalancerIngress{{IP: "10.0.0.7"}}
	assert.Equal(t, "http://10.0.0.7:8081", ServiceDNSResolver(svc))

	svc.Spec.Ports = nil
	assert.Empty(t, ServiceDNSResolver(svc))
}

func TestRenderProperties_OmitsTokenFile(t *testing.T) {
	cfg := config.New(map[string]string{
		"b.key":                 "2",
		"a.key":                 "1",
		config.KeyAuthTokenFile: "/secret/token",
	})
	out := renderProperties(cfg)
	assert.Equal(t, "a.key: 1\nb.key: 2\n", out)
	assert.False(t, strings.Contains(out, "/secret/token"))
}

func TestObjectName(t *testing.T) {
	assert.Equal(t, "application-1718000000-1a2b3c4d", ObjectName("application_1718000000_1A2B3C4D"))
	assert.Regexp(t, `^application_1718000000_[0-9a-f]{8}$`, NewClusterID(time.Unix(1718000000, 0)))
}
