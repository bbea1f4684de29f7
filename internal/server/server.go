package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/giantswarm/sessionctl/internal/api"
	"github.com/giantswarm/sessionctl/internal/metrics"
	"github.com/giantswarm/sessionctl/pkg/logging"
)

const (
	// DefaultReadHeaderTimeout is the default timeout for reading request headers.
	DefaultReadHeaderTimeout = 10 * time.Second
	// DefaultWriteTimeout covers a deploy waiting for its cluster and a
	// savepoint waiting for completion.
	DefaultWriteTimeout = 15 * time.Minute
	// DefaultIdleTimeout is the default idle timeout for keepalive connections.
	DefaultIdleTimeout = 120 * time.Second

	shutdownGracePeriod = 30 * time.Second
	maxBodyBytes        = 1 << 20
)

// Lifecycle is the set of session operations the gateway exposes.
type Lifecycle interface {
	Deploy(ctx context.Context, req api.DeployRequest) (api.DeployResult, error)
	Submit(ctx context.Context, req api.SubmitRequest) (*api.SubmitResponse, error)
	Cancel(ctx context.Context, req api.CancelRequest) (*api.CancelResponse, error)
	TriggerSavepoint(ctx context.Context, req api.TriggerSavepointRequest) (*api.SavepointResponse, error)
	ShutDown(ctx context.Context, req api.ShutDownRequest) (*api.ShutDownResponse, error)
	List(ctx context.Context, props map[string]string) ([]api.ClusterSummary, error)
}

// Server is the HTTP gateway in front of a Lifecycle.
type Server struct {
	lifecycle Lifecycle
	metrics   *metrics.Recorder
	router    chi.Router
}

// New builds the gateway routes.
func New(lifecycle Lifecycle, recorder *metrics.Recorder) *Server {
	s := &Server{
		lifecycle: lifecycle,
		metrics:   recorder,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", recorder.Handler())
	r.Route("/v1/sessions", func(r chi.Router) {
		r.Get("/", s.listSessions)
		r.Post("/", s.deploySession)
		r.Route("/{clusterID}", func(r chi.Router) {
			r.Delete("/", s.shutDownSession)
			r.Post("/jobs", s.submitJob)
			r.Post("/jobs/{jobID}/cancel", s.cancelJob)
			r.Post("/jobs/{jobID}/savepoints", s.triggerSavepoint)
		})
	})

	s.router = r
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("Gateway", "Listening on %s", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("gateway stopped: %w", err)
	case <-ctx.Done():
	}

	logging.Info("Gateway", "Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down gateway: %w", err)
	}
	return nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.Debug("Gateway", "%s %s %d %s [%s]",
			r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Millisecond), middleware.GetReqID(r.Context()))
	})
}
