package cmd

import (
	"sort"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/giantswarm/sessionctl/internal/api"
	"github.com/giantswarm/sessionctl/internal/config"
)

var listNamespaces []string

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List session clusters",
	Long: `Lists the session clusters in the configured namespace, or in every
namespace given with --namespaces.

Examples:
  sessionctl list
  sessionctl list --namespaces streaming,batch -o json
  sessionctl list -q`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, _ []string) error {
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

	if len(listNamespaces) == 0 {
		summaries, err := svc.List(cmd.Context(), props)
		if err != nil {
			return err
		}
		return formatter.FormatData(summaries)
	}

	var mu sync.Mutex
	all := make([]api.ClusterSummary, 0)
	g, ctx := errgroup.WithContext(cmd.Context())
	for _, ns := range listNamespaces {
		nsProps := make(map[string]string, len(props)+1)
		for k, v := range props {
			nsProps[k] = v
		}
		nsProps[config.KeyNamespace] = ns

		g.Go(func() error {
			summaries, err := svc.List(ctx, nsProps)
			if err != nil {
				return err
			}
			mu.Lock()
			all = append(all, summaries...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Namespace != all[j].Namespace {
			return all[i].Namespace < all[j].Namespace
		}
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ClusterID < all[j].ClusterID
	})
	return formatter.FormatData(all)
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringSliceVar(&listNamespaces, "namespaces", nil, "namespaces to list (comma separated, default the configured namespace)")
}
