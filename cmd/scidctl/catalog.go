package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/scid-pd-engine/internal/catalog"
	"github.com/scid-pd-engine/internal/domain"
	"github.com/scid-pd-engine/pkg/textutil"
)

func newCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and validate module catalogs",
	}

	var cluster, file string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the modules of a catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(file)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCLUSTER\tQUESTIONS\tCORE\tMIN CRITERIA")
			for _, m := range cat.Summaries() {
				if cluster != "" && string(m.Cluster) != cluster {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
					m.ID, m.Name, textutil.DisplayName(string(m.Cluster)),
					m.TotalQuestions, m.CoreQuestions, m.MinimumCriteriaCount)
			}
			return w.Flush()
		},
	}
	listCmd.Flags().StringVar(&cluster, "cluster", "", "only list one cluster (cluster_a, cluster_b, cluster_c)")
	listCmd.Flags().StringVarP(&file, "file", "f", "", "catalog file (default: embedded catalog)")

	validateCmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a catalog file loads and every module is well formed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(args[0])
			if err != nil {
				return err
			}

			questions := 0
			counts := map[domain.Cluster]int{}
			for _, m := range cat.Modules() {
				questions += len(m.Questions)
				counts[m.Cluster]++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog %s is valid: %d modules, %d questions\n", args[0], len(cat.Modules()), questions)
			for _, c := range domain.AllClusters() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d\n", textutil.DisplayName(string(c)), counts[c])
			}
			return nil
		},
	}

	cmd.AddCommand(listCmd, validateCmd)
	return cmd
}
