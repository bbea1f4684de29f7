package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/giantswarm/sessionctl/internal/config"
	"github.com/giantswarm/sessionctl/internal/controlplane"
	"github.com/giantswarm/sessionctl/internal/metrics"
	"github.com/giantswarm/sessionctl/pkg/logging"
)

// Handle owns the descriptor and the bound client of one operation. Either
// member may be unset. A Handle is never shared between operations.
type Handle struct {
	descriptor controlplane.Descriptor
	client     controlplane.ClusterClient
	metrics    *metrics.Recorder

	releaseOnce sync.Once
	releaseErr  error
}

// Acquire obtains a descriptor for cfg. The caller must Release the handle.
func Acquire(ctx context.Context, factory controlplane.ClientFactory, cfg config.Configuration, recorder *metrics.Recorder) (*Handle, error) {
	d, err := factory.NewDescriptor(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create cluster descriptor: %w", err)
	}
	return &Handle{descriptor: d, metrics: recorder}, nil
}

// AcquireCluster resolves the cluster identity cfg addresses and acquires a
// handle for it. It fails without acquiring anything when cfg names no
// cluster.
func AcquireCluster(ctx context.Context, factory controlplane.ClientFactory, cfg config.Configuration, recorder *metrics.Recorder) (*Handle, string, error) {
	clusterID, err := factory.ClusterID(cfg)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve cluster identity: %w", err)
	}
	h, err := Acquire(ctx, factory, cfg, recorder)
	if err != nil {
		return nil, "", err
	}
	return h, clusterID, nil
}

func (h *Handle) Descriptor() controlplane.Descriptor {
	return h.descriptor
}

func (h *Handle) Client() controlplane.ClusterClient {
	return h.client
}

// Retrieve binds the handle to the client of an existing cluster.
func (h *Handle) Retrieve(ctx context.Context, clusterID string) (controlplane.ClusterClient, error) {
	if h.descriptor == nil {
		return nil, errors.New("handle has no descriptor")
	}
	c, err := h.descriptor.Retrieve(ctx, clusterID)
	if err != nil {
		return nil, err
	}
	h.bind(c)
	return c, nil
}

// Deploy creates a new cluster and binds the handle to its client.
func (h *Handle) Deploy(ctx context.Context, spec controlplane.ClusterSpec) (controlplane.ClusterClient, error) {
	if h.descriptor == nil {
		return nil, errors.New("handle has no descriptor")
	}
	c, err := h.descriptor.Deploy(ctx, spec)
	if err != nil {
		return nil, err
	}
	h.bind(c)
	return c, nil
}

func (h *Handle) bind(c controlplane.ClusterClient) {
	if h.client != nil {
		err := h.client.Close()
		h.metrics.ObserveRelease("client", err)
		if err != nil {
			logging.Warn("Session", "Failed to close client of %s: %v", h.client.ClusterID(), err)
		}
	}
	h.client = c
}

// Release closes the client and then the descriptor. It runs once; later calls
// return the first result. A failure to close one member does not stop the
// other from being closed. Release is safe on a nil handle.
func (h *Handle) Release() error {
	if h == nil {
		return nil
	}
	h.releaseOnce.Do(func() {
		var errs []error
		if h.client != nil {
			err := h.client.Close()
			h.metrics.ObserveRelease("client", err)
			if err != nil {
				logging.Error("Session", err, "Failed to close cluster client")
				errs = append(errs, fmt.Errorf("close client: %w", err))
			}
		}
		if h.descriptor != nil {
			err := h.descriptor.Close()
			h.metrics.ObserveRelease("descriptor", err)
			if err != nil {
				logging.Error("Session", err, "Failed to close cluster descriptor")
				errs = append(errs, fmt.Errorf("close descriptor: %w", err))
			}
		}
		h.releaseErr = errors.Join(errs...)
	})
	return h.releaseErr
}
