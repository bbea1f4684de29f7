package cmd

import (
	"github.com/spf13/cobra"

	"github.com/giantswarm/sessionctl/internal/api"
)

var deployClusterID string

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy a session cluster or reattach to a running one",
	Long: `Deploys a new session cluster for the runtime installed at --flink-home.

With --cluster-id the command first looks the cluster up. A running cluster
with a reachable endpoint is reused and nothing new is deployed; an unknown
or finished cluster is replaced by a new one.

When the new cluster does not expose a reachable endpoint in time
(cluster.deploy-timeout) the command prints the indeterminate result and
exits with code 3.`,
	Args: cobra.NoArgs,
	RunE: runDeploy,
}

func runDeploy(cmd *cobra.Command, _ []string) error {
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

	var result api.DeployResult
	err = withProgress(cmd, "Deploying session cluster...", func() error {
		result, err = svc.Deploy(cmd.Context(), api.DeployRequest{
			ClusterID:  deployClusterID,
			Properties: props,
		})
		return err
	})
	if err != nil {
		return err
	}

	if err := formatter.FormatData(result); err != nil {
		return err
	}
	if !result.Ready() {
		return &IndeterminateDeployError{}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(deployCmd)
	deployCmd.Flags().StringVar(&deployClusterID, "cluster-id", "", "identity of a previously deployed cluster to reattach to")
}
