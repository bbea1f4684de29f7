package cmd

import (
	"github.com/spf13/cobra"

	"github.com/giantswarm/sessionctl/internal/api"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel CLUSTER_ID JOB_ID",
	Short: "Cancel a job running on a session cluster",
	Args:  cobra.ExactArgs(2),
	RunE:  runCancel,
}

func runCancel(cmd *cobra.Command, args []string) error {
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

	resp, err := svc.Cancel(cmd.Context(), api.CancelRequest{
		ClusterID:  args[0],
		JobID:      args[1],
		Properties: props,
	})
	if err != nil {
		return err
	}
	return formatter.FormatData(resp)
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}
