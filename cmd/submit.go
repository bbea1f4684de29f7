package cmd

import (
	"github.com/spf13/cobra"

	"github.com/giantswarm/sessionctl/internal/api"
)

var (
	submitEntryClass            string
	submitParallelism           int
	submitFromSavepoint         string
	submitAllowNonRestoredState bool
)

var submitCmd = &cobra.Command{
	Use:   "submit CLUSTER_ID JAR [-- ARGS...]",
	Short: "Submit a job to a running session cluster",
	Long: `Uploads the job artifact JAR to the session cluster CLUSTER_ID and runs it.
Arguments after "--" are passed to the job's main method.

Examples:
  sessionctl submit application_1718000000_1a2b3c4d ./wordcount.jar -- --input s3://bucket/in
  sessionctl submit application_1718000000_1a2b3c4d ./etl.jar --class org.example.Etl -p 4`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSubmit,
}

func runSubmit(cmd *cobra.Command, args []string) error {
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

	var resp *api.SubmitResponse
	err = withProgress(cmd, "Submitting job...", func() error {
		resp, err = svc.Submit(cmd.Context(), api.SubmitRequest{
			ClusterID:  args[0],
			Properties: props,
			Job: api.JobSpec{
				JarPath:               args[1],
				EntryClass:            submitEntryClass,
				Args:                  args[2:],
				Parallelism:           submitParallelism,
				SavepointPath:         submitFromSavepoint,
				AllowNonRestoredState: submitAllowNonRestoredState,
			},
		})
		return err
	})
	if err != nil {
		return err
	}
	return formatter.FormatData(resp)
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().StringVarP(&submitEntryClass, "class", "c", "", "entry class, overriding the artifact manifest")
	submitCmd.Flags().IntVarP(&submitParallelism, "parallelism", "p", 0, "job parallelism (default parallelism.default)")
	submitCmd.Flags().StringVarP(&submitFromSavepoint, "from-savepoint", "s", "", "restore the job from this savepoint")
	submitCmd.Flags().BoolVar(&submitAllowNonRestoredState, "allow-non-restored-state", false, "skip savepoint state that cannot be restored")
}
