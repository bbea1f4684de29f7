package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/giantswarm/sessionctl/internal/api"
	"github.com/giantswarm/sessionctl/internal/controlplane"
	"github.com/giantswarm/sessionctl/pkg/logging"
)

const (
	defaultHTTPTimeout      = 30 * time.Second
	defaultPollInterval     = 500 * time.Millisecond
	defaultSavepointTimeout = 5 * time.Minute

	savepointCompleted = "COMPLETED"
)

// Client talks to the REST endpoint of one session cluster.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. A token source given to New wraps
// the replacement's transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithPollInterval sets how often savepoint status is polled.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		c.pollInterval = d
	}
}

// New returns a client for the cluster REST endpoint at baseURL. When ts is
// not nil every request carries its bearer token.
func New(baseURL string, ts oauth2.TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: defaultHTTPTimeout},
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}

	if ts != nil {
		base := c.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		authed := *c.httpClient
		authed.Transport = &oauth2.Transport{Source: ts, Base: base}
		c.httpClient = &authed
	}
	return c
}

// BaseURL returns the endpoint the client is bound to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type uploadResponse struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
}

type runRequest struct {
	EntryClass            string   `json:"entryClass,omitempty"`
	ProgramArgsList       []string `json:"programArgsList,omitempty"`
	Parallelism           int      `json:"parallelism,omitempty"`
	JobID                 string   `json:"jobId,omitempty"`
	SavepointPath         string   `json:"savepointPath,omitempty"`
	AllowNonRestoredState bool     `json:"allowNonRestoredState,omitempty"`
}

type runResponse struct {
	JobID string `json:"jobid"`
}

// SubmitJob uploads the job artifact and runs it.
func (c *Client) SubmitJob(ctx context.Context, graph controlplane.JobGraph) (string, error) {
	if graph.Artifact == nil {
		return "", errors.New("job graph has no artifact")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("jarfile", graph.ArtifactName)
	if err != nil {
		return "", fmt.Errorf("failed to create upload form: %w", err)
	}
	if _, err := io.Copy(part, graph.Artifact); err != nil {
		return "", fmt.Errorf("failed to read job artifact: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to finish upload form: %w", err)
	}

	var uploaded uploadResponse
	if err := c.do(ctx, http.MethodPost, "/jars/upload", &body, mw.FormDataContentType(), &uploaded); err != nil {
		return "", err
	}
	jarID := path.Base(uploaded.Filename)
	if uploaded.Filename == "" || jarID == "." || jarID == "/" {
		return "", &api.ControlPlaneError{Operation: "POST /jars/upload", Message: "response did not name the uploaded jar"}
	}
	logging.Debug("REST", "Uploaded %s as %s", graph.ArtifactName, jarID)

	payload, err := json.Marshal(runRequest{
		EntryClass:            graph.EntryClass,
		ProgramArgsList:       graph.Args,
		Parallelism:           graph.Parallelism,
		JobID:                 graph.JobID,
		SavepointPath:         graph.SavepointPath,
		AllowNonRestoredState: graph.AllowNonRestoredState,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode run request: %w", err)
	}

	var run runResponse
	if err := c.do(ctx, http.MethodPost, "/jars/"+url.PathEscape(jarID)+"/run", bytes.NewReader(payload), "application/json", &run); err != nil {
		return "", err
	}
	if run.JobID == "" {
		return "", &api.ControlPlaneError{Operation: "POST /jars/" + jarID + "/run", Message: "response did not contain a job id"}
	}
	return run.JobID, nil
}

// CancelJob requests cancellation of jobID.
func (c *Client) CancelJob(ctx context.Context, jobID string) (string, error) {
	p := "/jobs/" + url.PathEscape(jobID) + "?mode=cancel"
	if err := c.do(ctx, http.MethodPatch, p, nil, "", nil); err != nil {
		return "", jobNotFound(err, jobID)
	}
	return "accepted", nil
}

type savepointTriggerRequest struct {
	TargetDirectory string `json:"target-directory,omitempty"`
	CancelJob       bool   `json:"cancel-job"`
}

type savepointTriggerResponse struct {
	RequestID string `json:"request-id"`
}

type savepointStatusResponse struct {
	Status struct {
		ID string `json:"id"`
	} `json:"status"`
	Operation *struct {
		Location     string `json:"location"`
		FailureCause *struct {
			Class      string `json:"class"`
			StackTrace string `json:"stack-trace"`
		} `json:"failure-cause"`
	} `json:"operation"`
}

// TriggerSavepoint triggers a savepoint for jobID and polls until it
// completes, fails or opts.Timeout elapses.
func (c *Client) TriggerSavepoint(ctx context.Context, jobID string, opts controlplane.SavepointOptions) (string, error) {
	payload, err := json.Marshal(savepointTriggerRequest{TargetDirectory: opts.TargetDirectory})
	if err != nil {
		return "", fmt.Errorf("failed to encode savepoint request: %w", err)
	}

	jobPath := "/jobs/" + url.PathEscape(jobID) + "/savepoints"
	var trigger savepointTriggerResponse
	if err := c.do(ctx, http.MethodPost, jobPath, bytes.NewReader(payload), "application/json", &trigger); err != nil {
		return "", jobNotFound(err, jobID)
	}
	if trigger.RequestID == "" {
		return "", &api.ControlPlaneError{Operation: "POST " + jobPath, Message: "response did not contain a request id"}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultSavepointTimeout
	}

	var location string
	statusPath := jobPath + "/" + url.PathEscape(trigger.RequestID)
	err = wait.PollUntilContextTimeout(ctx, c.pollInterval, timeout, true, func(ctx context.Context) (bool, error) {
		var status savepointStatusResponse
		if err := c.do(ctx, http.MethodGet, statusPath, nil, "", &status); err != nil {
			return false, jobNotFound(err, jobID)
		}
		if status.Status.ID != savepointCompleted {
			return false, nil
		}
		if status.Operation == nil {
			return false, &api.ControlPlaneError{Operation: "GET " + statusPath, Message: "completed savepoint has no result"}
		}
		if fc := status.Operation.FailureCause; fc != nil {
			return false, &api.ControlPlaneError{Operation: "savepoint " + trigger.RequestID, Message: firstLine(fc.Class, fc.StackTrace)}
		}
		location = status.Operation.Location
		return true, nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("stopped waiting for savepoint %s: %w", trigger.RequestID, ctxErr)
		}
		if wait.Interrupted(err) {
			return "", &api.ControlPlaneError{Operation: "savepoint " + trigger.RequestID, Message: "did not complete in time", Err: err}
		}
		return "", err
	}
	return location, nil
}

// ShutDownCluster asks the cluster to stop.
func (c *Client) ShutDownCluster(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/cluster", nil, "", nil)
}

// Close drops idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

type errorResponse struct {
	Errors []string `json:"errors"`
}

func (c *Client) do(ctx context.Context, method, p string, body io.Reader, contentType string, out any) error {
	operation := method + " " + p

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+p, body)
	if err != nil {
		return fmt.Errorf("failed to build request %s: %w", operation, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return api.NewControlPlaneError(operation, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return api.NewControlPlaneError(operation, err)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		cpErr := &api.ControlPlaneError{Operation: operation, StatusCode: resp.StatusCode}
		var remote errorResponse
		if json.Unmarshal(data, &remote) == nil && len(remote.Errors) > 0 {
			cpErr.Message = strings.Join(remote.Errors, "; ")
		} else {
			cpErr.Message = http.StatusText(resp.StatusCode)
		}
		return cpErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &api.ControlPlaneError{Operation: operation, StatusCode: resp.StatusCode, Message: "malformed response", Err: err}
	}
	return nil
}

// jobNotFound maps a 404 from a job endpoint to an api.NotFoundError.
func jobNotFound(err error, jobID string) error {
	var cpErr *api.ControlPlaneError
	if errors.As(err, &cpErr) && cpErr.StatusCode == http.StatusNotFound {
		return api.NewJobNotFoundError(jobID)
	}
	return err
}

func firstLine(class, trace string) string {
	if i := strings.IndexByte(trace, '\n'); i >= 0 {
		trace = trace[:i]
	}
	if trace == "" {
		return class
	}
	return trace
}
