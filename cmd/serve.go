package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/giantswarm/sessionctl/internal/metrics"
	"github.com/giantswarm/sessionctl/internal/server"
	"github.com/giantswarm/sessionctl/pkg/logging"
)

// serveListen overrides the listen address from the settings file.
var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP gateway for the session lifecycle",
	Long: `Starts an HTTP gateway exposing the session lifecycle operations under
/v1/sessions, a health check on /healthz and Prometheus metrics on /metrics.

The gateway runs until it receives SIGINT or SIGTERM and then drains
in-flight requests before exiting.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	recorder := metrics.NewRecorder()
	svc, settings, err := newService(recorder)
	if err != nil {
		return err
	}

	addr := settings.Listen
	if serveListen != "" {
		addr = serveListen
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info("Serve", "Session gateway for namespace %s listening on %s", settings.Namespace, addr)
	return server.New(svc, recorder).ListenAndServe(ctx, addr)
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default from the settings file)")
}
