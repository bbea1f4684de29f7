package cmd

import (
	"github.com/spf13/cobra"

	"github.com/giantswarm/sessionctl/internal/api"
)

var shutdownCmd = &cobra.Command{
	Use:   "shutdown CLUSTER_ID",
	Short: "Shut a session cluster down",
	Long: `Stops the session cluster CLUSTER_ID if it is running. A cluster that is
unknown or already finished is left alone, so the command can safely be
repeated.`,
	Args: cobra.ExactArgs(1),
	RunE: runShutdown,
}

func runShutdown(cmd *cobra.Command, args []string) error {
	props, err := parseProperties(rootProperties)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	svc, _, err := newService(nil)
	if err != nil {
		return err
	}

	resp, err := svc.ShutDown(cmd.Context(), api.ShutDownRequest{
		ClusterID:  args[0],
		Properties: props,
	})
	if err != nil {
		return err
	}
	return formatter.FormatData(resp)
}

func init() {
	rootCmd.AddCommand(shutdownCmd)
}
