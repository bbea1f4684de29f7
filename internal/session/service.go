package session

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/giantswarm/sessionctl/internal/api"
	"github.com/giantswarm/sessionctl/internal/config"
	"github.com/giantswarm/sessionctl/internal/controlplane"
	"github.com/giantswarm/sessionctl/internal/metrics"
	"github.com/giantswarm/sessionctl/internal/program"
	"github.com/giantswarm/sessionctl/internal/security"
	"github.com/giantswarm/sessionctl/pkg/logging"
)

// Operation names used for logging and metrics.
const (
	OpDeploy    = "deploy"
	OpSubmit    = "submit"
	OpCancel    = "cancel"
	OpSavepoint = "savepoint"
	OpShutDown  = "shutdown"
	OpList      = "list"
)

// Service runs the session lifecycle operations. It keeps no state between
// calls and is safe for concurrent use.
type Service struct {
	factory     controlplane.ClientFactory
	installPath string
	properties  map[string]string
	metrics     *metrics.Recorder
}

// Option configures a Service.
type Option func(*Service)

// WithProperties sets configuration overrides applied to every call before
// the per-call properties.
func WithProperties(props map[string]string) Option {
	return func(s *Service) {
		s.properties = maps.Clone(props)
	}
}

// WithMetrics records operation and release metrics on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Service) {
		s.metrics = r
	}
}

// NewService returns a service deploying the runtime installed at installPath
// through factory.
func NewService(factory controlplane.ClientFactory, installPath string, opts ...Option) *Service {
	s := &Service{
		factory:     factory,
		installPath: installPath,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// configuration assembles the effective configuration of one call.
// Settings-only keys are taken from the service properties alone.
func (s *Service) configuration(perCall map[string]string) config.Configuration {
	merged := make(map[string]string, len(s.properties)+len(perCall))
	maps.Copy(merged, s.properties)
	for k, v := range perCall {
		if v == "" {
			continue
		}
		if config.IsSettingsOnly(k) {
			logging.Warn("Config", "Ignoring per-call override of settings-only key %s", k)
			continue
		}
		merged[k] = v
	}
	return config.Assemble(s.installPath, merged)
}

func (s *Service) observe(operation string, start time.Time, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
	}
	s.metrics.ObserveOperation(operation, outcome, time.Since(start))
}

func release(h *Handle) {
	_ = h.Release()
}

// Deploy deploys a session cluster or reattaches to the running cluster named
// by req.ClusterID.
//
// The result is DeployIndeterminate, with a nil error, when a cluster was
// deployed but exposes no reachable web endpoint. Callers decide whether to
// retry or escalate.
func (s *Service) Deploy(ctx context.Context, req api.DeployRequest) (result api.DeployResult, err error) {
	start := time.Now()
	defer func() {
		outcome := metrics.OutcomeSuccess
		switch {
		case err != nil:
			outcome = metrics.OutcomeError
		case result.Outcome == api.DeployIndeterminate:
			outcome = metrics.OutcomeIndeterminate
		}
		s.metrics.ObserveOperation(OpDeploy, outcome, time.Since(start))
	}()

	if err := req.Validate(); err != nil {
		return api.DeployResult{}, err
	}

	cfg := s.configuration(req.Properties)
	mode := cfg.GetString(config.KeyExecutionTarget, config.TargetSession)
	if err := security.Verify(cfg); err != nil {
		logging.Error("Deploy", err, "Session cluster deployment failed in %s mode", mode)
		return api.DeployResult{}, err
	}

	handle, err := Acquire(ctx, s.factory, cfg, s.metrics)
	if err != nil {
		logging.Error("Deploy", err, "Session cluster deployment failed in %s mode", mode)
		return api.DeployResult{}, err
	}
	defer release(handle)

	result, err = s.deploy(ctx, handle, cfg, req.ClusterID)
	if err != nil {
		logging.Error("Deploy", err, "Session cluster deployment failed in %s mode", mode)
		return api.DeployResult{}, err
	}
	return result, nil
}

func (s *Service) deploy(ctx context.Context, h *Handle, cfg config.Configuration, clusterID string) (api.DeployResult, error) {
	if clusterID != "" {
		status, report, err := Discover(ctx, h.Descriptor(), clusterID)
		if err != nil {
			return api.DeployResult{}, fmt.Errorf("failed to discover session cluster %s: %w", clusterID, err)
		}

		switch status {
		case StatusRunning:
			c, err := h.Retrieve(ctx, clusterID)
			if err != nil && !api.IsNotFound(err) {
				return api.DeployResult{}, fmt.Errorf("failed to retrieve session cluster %s: %w", clusterID, err)
			}
			if err == nil && reachable(c.WebInterfaceURL()) {
				logging.Info("Deploy", "Reattached to session cluster %s at %s", clusterID, c.WebInterfaceURL())
				return deployResult(api.DeployReattached, c), nil
			}
			logging.Info("Deploy", "Session cluster %s is running but not reachable, deploying a new one", clusterID)
		case StatusNotFound:
			logging.Info("Deploy", "Session cluster %s not found, deploying a new one", clusterID)
		default:
			logging.Info("Deploy", "Session cluster %s finished with status %s, deploying a new one", clusterID, report.FinalStatus)
		}
	}

	c, err := h.Deploy(ctx, controlplane.ClusterSpec{Configuration: cfg})
	if err != nil {
		return api.DeployResult{}, fmt.Errorf("failed to deploy session cluster: %w", err)
	}
	if !reachable(c.WebInterfaceURL()) {
		logging.Warn("Deploy", "Session cluster %s was deployed but exposes no reachable endpoint", c.ClusterID())
		return deployResult(api.DeployIndeterminate, c), nil
	}

	logging.Info("Deploy", "Deployed session cluster %s at %s", c.ClusterID(), c.WebInterfaceURL())
	return deployResult(api.DeployCreated, c), nil
}

// Submit packages req.Job and runs it on the session cluster req.ClusterID.
func (s *Service) Submit(ctx context.Context, req api.SubmitRequest) (resp *api.SubmitResponse, err error) {
	start := time.Now()
	defer func() { s.observe(OpSubmit, start, err) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	cfg := config.ForCluster(s.configuration(req.Properties), req.ClusterID)
	if err := security.Verify(cfg); err != nil {
		return nil, err
	}

	packaged, err := program.Package(req.Job)
	if err != nil {
		logging.Error("Submit", err, "Submit fail")
		return nil, err
	}
	defer func() {
		if cerr := packaged.Close(); cerr != nil {
			logging.Warn("Submit", "Failed to release job artifact %s: %v", req.Job.JarPath, cerr)
		}
	}()

	handle, clusterID, err := AcquireCluster(ctx, s.factory, cfg, s.metrics)
	if err != nil {
		logging.Error("Submit", err, "Submit fail")
		return nil, err
	}
	defer release(handle)

	resp, err = s.submit(ctx, handle, cfg, clusterID, packaged)
	if err != nil {
		logging.Error("Submit", err, "Submit fail")
		return nil, err
	}
	return resp, nil
}

func (s *Service) submit(ctx context.Context, h *Handle, cfg config.Configuration, clusterID string, packaged *program.Packaged) (*api.SubmitResponse, error) {
	c, err := h.Retrieve(ctx, clusterID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve session cluster %s: %w", clusterID, err)
	}

	graph, err := program.BuildJobGraph(packaged, cfg)
	if err != nil {
		return nil, err
	}

	jobID, err := c.SubmitJob(ctx, graph)
	if err != nil {
		return nil, fmt.Errorf("failed to submit job %s: %w", graph.Name, err)
	}
	logging.Info("Submit", "Submitted job %s (%s) to session cluster %s", graph.Name, jobID, clusterID)
	return submitResponse(c, cfg, jobID), nil
}

// Cancel cancels job req.JobID on the session cluster req.ClusterID.
func (s *Service) Cancel(ctx context.Context, req api.CancelRequest) (resp *api.CancelResponse, err error) {
	start := time.Now()
	defer func() { s.observe(OpCancel, start, err) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return executeOnCluster(ctx, s, "Cancel", req.ClusterID, req.Properties,
		func(ctx context.Context, _ config.Configuration, c controlplane.ClusterClient) (*api.CancelResponse, error) {
			status, err := c.CancelJob(ctx, req.JobID)
			if err != nil {
				return nil, err
			}
			logging.Info("Cancel", "Cancelled job %s on session cluster %s", req.JobID, c.ClusterID())
			return cancelResponse(c.ClusterID(), req.JobID, status), nil
		})
}

// TriggerSavepoint triggers a savepoint of job req.JobID and waits for its
// location.
func (s *Service) TriggerSavepoint(ctx context.Context, req api.TriggerSavepointRequest) (resp *api.SavepointResponse, err error) {
	start := time.Now()
	defer func() { s.observe(OpSavepoint, start, err) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return executeOnCluster(ctx, s, "Savepoint", req.ClusterID, req.Properties,
		func(ctx context.Context, cfg config.Configuration, c controlplane.ClusterClient) (*api.SavepointResponse, error) {
			target := req.TargetDirectory
			if target == "" {
				target = cfg.GetString(config.KeySavepointDir, "")
			}
			location, err := c.TriggerSavepoint(ctx, req.JobID, controlplane.SavepointOptions{
				TargetDirectory: target,
				Timeout:         cfg.GetDuration(config.KeySavepointTimeout, 5*time.Minute),
			})
			if err != nil {
				return nil, err
			}
			logging.Info("Savepoint", "Savepoint of job %s stored at %s", req.JobID, location)
			return savepointResponse(c.ClusterID(), req.JobID, location), nil
		})
}

// clusterAction runs against the client of a retrieved session cluster.
type clusterAction[T any] func(ctx context.Context, cfg config.Configuration, c controlplane.ClusterClient) (T, error)

// executeOnCluster addresses the configuration at clusterID, acquires a
// handle, retrieves the cluster client and runs action with it. The handle
// is released on every path; failures are logged as "<kind> fail".
func executeOnCluster[T any](ctx context.Context, s *Service, kind, clusterID string, props map[string]string, action clusterAction[T]) (T, error) {
	var zero T

	cfg := config.ForCluster(s.configuration(props), clusterID)
	if err := security.Verify(cfg); err != nil {
		logging.Error(kind, err, "%s fail", kind)
		return zero, err
	}

	handle, resolved, err := AcquireCluster(ctx, s.factory, cfg, s.metrics)
	if err != nil {
		logging.Error(kind, err, "%s fail", kind)
		return zero, err
	}
	defer release(handle)

	c, err := handle.Retrieve(ctx, resolved)
	if err != nil {
		err = fmt.Errorf("failed to retrieve session cluster %s: %w", resolved, err)
		logging.Error(kind, err, "%s fail", kind)
		return zero, err
	}

	result, err := action(ctx, cfg, c)
	if err != nil {
		logging.Error(kind, err, "%s fail", kind)
		return zero, err
	}
	return result, nil
}

// ShutDown stops the session cluster req.ClusterID when it is running. A
// cluster that is unknown or already finished is left alone and still
// acknowledged.
func (s *Service) ShutDown(ctx context.Context, req api.ShutDownRequest) (resp *api.ShutDownResponse, err error) {
	start := time.Now()
	defer func() { s.observe(OpShutDown, start, err) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	cfg := config.ForCluster(s.configuration(req.Properties), req.ClusterID)
	if err := security.Verify(cfg); err != nil {
		logging.Error("ShutDown", err, "ShutDown fail")
		return nil, err
	}

	handle, clusterID, err := AcquireCluster(ctx, s.factory, cfg, s.metrics)
	if err != nil {
		logging.Error("ShutDown", err, "ShutDown fail")
		return nil, err
	}
	defer release(handle)

	if err := s.shutDown(ctx, handle, clusterID); err != nil {
		logging.Error("ShutDown", err, "ShutDown fail")
		return nil, err
	}
	return shutDownResponse(clusterID), nil
}

func (s *Service) shutDown(ctx context.Context, h *Handle, clusterID string) error {
	status, report, err := Discover(ctx, h.Descriptor(), clusterID)
	if err != nil {
		return fmt.Errorf("failed to discover session cluster %s: %w", clusterID, err)
	}

	if status != StatusRunning {
		logging.Info("ShutDown", "Session cluster %s is %s (final status %s), nothing to shut down",
			clusterID, status, finalStatusOf(status, report))
		return nil
	}

	c, err := h.Retrieve(ctx, clusterID)
	if err != nil {
		return fmt.Errorf("failed to retrieve session cluster %s: %w", clusterID, err)
	}
	if err := c.ShutDownCluster(ctx); err != nil {
		return fmt.Errorf("failed to shut down session cluster %s: %w", clusterID, err)
	}

	status, report, err = Discover(ctx, h.Descriptor(), clusterID)
	if err != nil {
		logging.Warn("ShutDown", "Shut down session cluster %s but could not read its final status: %v", clusterID, err)
		return nil
	}
	logging.Info("ShutDown", "Shut down session cluster %s, final status %s", clusterID, finalStatusOf(status, report))
	return nil
}

func finalStatusOf(status Status, report controlplane.ApplicationReport) string {
	if status == StatusNotFound {
		return "unknown"
	}
	return string(report.FinalStatus)
}

// List returns a summary of every session cluster the control plane knows in
// the namespace the configuration points at.
func (s *Service) List(ctx context.Context, props map[string]string) (summaries []api.ClusterSummary, err error) {
	start := time.Now()
	defer func() { s.observe(OpList, start, err) }()

	if err := api.ValidateProperties(props); err != nil {
		return nil, err
	}

	cfg := s.configuration(props)
	if err := security.Verify(cfg); err != nil {
		return nil, err
	}

	handle, err := Acquire(ctx, s.factory, cfg, s.metrics)
	if err != nil {
		return nil, err
	}
	defer release(handle)

	reports, err := handle.Descriptor().List(ctx)
	if err != nil {
		logging.Error("List", err, "List fail")
		return nil, err
	}

	summaries = make([]api.ClusterSummary, 0, len(reports))
	for _, r := range reports {
		summaries = append(summaries, clusterSummary(r))
	}
	return summaries, nil
}
