package cmd

import (
	"github.com/spf13/cobra"

	"github.com/giantswarm/sessionctl/internal/api"
)

var savepointTargetDirectory string

var savepointCmd = &cobra.Command{
	Use:   "savepoint CLUSTER_ID JOB_ID",
	Short: "Trigger a savepoint of a running job",
	Long: `Triggers a savepoint of JOB_ID and waits until it completes or
savepoint.timeout elapses. The savepoint is written to --target-directory,
or to state.savepoints.dir when the flag is not given.`,
	Args: cobra.ExactArgs(2),
	RunE: runSavepoint,
}

func runSavepoint(cmd *cobra.Command, args []string) error {
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

	var resp *api.SavepointResponse
	err = withProgress(cmd, "Waiting for savepoint...", func() error {
		resp, err = svc.TriggerSavepoint(cmd.Context(), api.TriggerSavepointRequest{
			ClusterID:       args[0],
			JobID:           args[1],
			TargetDirectory: savepointTargetDirectory,
			Properties:      props,
		})
		return err
	})
	if err != nil {
		return err
	}
	return formatter.FormatData(resp)
}

func init() {
	rootCmd.AddCommand(savepointCmd)
	savepointCmd.Flags().StringVarP(&savepointTargetDirectory, "target-directory", "d", "", "directory the savepoint is written to")
}
