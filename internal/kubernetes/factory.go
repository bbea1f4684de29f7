package kubernetes

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/clientcmd"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/giantswarm/sessionctl/internal/api"
	"github.com/giantswarm/sessionctl/internal/config"
	"github.com/giantswarm/sessionctl/internal/controlplane"
	"github.com/giantswarm/sessionctl/internal/security"
)

const defaultPollInterval = 2 * time.Second

// NewScheme returns a scheme with the built-in Kubernetes types registered.
func NewScheme() *runtime.Scheme {
	scheme := runtime.NewScheme()
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	return scheme
}

// NewClient creates a controller-runtime client from a kubeconfig. An empty
// kubeconfig path follows the usual loading rules ($KUBECONFIG, ~/.kube/config,
// in-cluster).
func NewClient(kubeconfig, kubeContext string) (client.Client, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfig != "" {
		rules.ExplicitPath = kubeconfig
	}
	overrides := &clientcmd.ConfigOverrides{CurrentContext: kubeContext}

	restConfig, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	k8sClient, err := client.New(restConfig, client.Options{Scheme: NewScheme()})
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
	}
	return k8sClient, nil
}

// Factory implements controlplane.ClientFactory on top of a Kubernetes API.
type Factory struct {
	client       client.Client
	resolver     EndpointResolver
	httpClient   *http.Client
	pollInterval time.Duration
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithEndpointResolver replaces how a cluster's Service is turned into a web URL.
func WithEndpointResolver(r EndpointResolver) FactoryOption {
	return func(f *Factory) {
		f.resolver = r
	}
}

// WithRESTHTTPClient sets the HTTP client used for the cluster REST endpoints.
func WithRESTHTTPClient(hc *http.Client) FactoryOption {
	return func(f *Factory) {
		f.httpClient = hc
	}
}

// WithPollInterval sets how often a new cluster's availability is checked.
func WithPollInterval(d time.Duration) FactoryOption {
	return func(f *Factory) {
		f.pollInterval = d
	}
}

// NewFactory returns a factory backed by k8sClient.
func NewFactory(k8sClient client.Client, opts ...FactoryOption) *Factory {
	f := &Factory{
		client:       k8sClient,
		resolver:     ServiceDNSResolver,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ClusterID returns the configured cluster identity.
func (f *Factory) ClusterID(cfg config.Configuration) (string, error) {
	id := cfg.GetString(config.KeyClusterID, "")
	if id == "" {
		return "", &api.ValidationError{Field: config.KeyClusterID, Message: "configuration does not address a session cluster"}
	}
	return id, nil
}

// NewDescriptor returns a descriptor for the namespace configured in cfg.
func (f *Factory) NewDescriptor(ctx context.Context, cfg config.Configuration) (controlplane.Descriptor, error) {
	namespace := cfg.GetString(config.KeyNamespace, "")
	if namespace == "" {
		return nil, &api.ValidationError{Field: config.KeyNamespace, Message: "must not be empty"}
	}

	tokens, err := security.TokenSource(cfg)
	if err != nil {
		return nil, err
	}

	return &Descriptor{
		client:       f.client,
		namespace:    namespace,
		cfg:          cfg,
		resolver:     f.resolver,
		tokens:       tokens,
		httpClient:   f.httpClient,
		pollInterval: f.pollInterval,
	}, nil
}
