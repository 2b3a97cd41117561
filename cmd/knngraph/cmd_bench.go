package main

import (
	"github.com/hupe1980/knngraph/distance"
	"github.com/hupe1980/knngraph/internal/bench"
	"github.com/spf13/cobra"
)

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure build time, latency and recall on synthetic data",
		Long: `Build an index from seeded clustered vectors, run the queries
concurrently and compare every answer against an exact linear scan.

Examples:
  knngraph bench                              # Default run
  knngraph bench --n 50000 --dim 64 --ef 128  # Larger data set
  knngraph bench --workers 1 --qps 100        # Single worker, paced queries
  knngraph bench --config index.yaml --json   # Index parameters from file`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg := bench.DefaultConfig
			cfg.Points, _ = cmd.Flags().GetInt("n")
			cfg.Dim, _ = cmd.Flags().GetInt("dim")
			cfg.Queries, _ = cmd.Flags().GetInt("queries")
			cfg.K, _ = cmd.Flags().GetInt("k")
			cfg.EF, _ = cmd.Flags().GetInt("ef")
			cfg.Clusters, _ = cmd.Flags().GetInt("clusters")
			cfg.Seed, _ = cmd.Flags().GetInt64("seed")
			cfg.Workers, _ = cmd.Flags().GetInt("workers")
			cfg.QPS, _ = cmd.Flags().GetFloat64("qps")

			metricName, _ := cmd.Flags().GetString("metric")
			metric, err := distance.ParseMetric(metricName)
			if err != nil {
				return err
			}
			cfg.Metric = metric

			optFns, err := indexOptions(cmd)
			if err != nil {
				return err
			}

			report, err := bench.Run(cmd.Context(), cfg, optFns...)
			if err != nil {
				return err
			}

			if jsonOut {
				return report.WriteJSON(cmd.OutOrStdout())
			}
			return report.WriteText(cmd.OutOrStdout())
		},
	}

	d := bench.DefaultConfig
	cmd.Flags().String("metric", "euclidean", "Distance metric (euclidean, squared_l2, cosine, manhattan)")
	cmd.Flags().Int("n", d.Points, "Number of indexed points")
	cmd.Flags().Int("dim", d.Dim, "Vector dimension")
	cmd.Flags().Int("queries", d.Queries, "Number of queries")
	cmd.Flags().Int("k", d.K, "Neighbors per query")
	cmd.Flags().Int("ef", d.EF, "Query beam width")
	cmd.Flags().Int("clusters", d.Clusters, "Number of clusters in the generated data")
	cmd.Flags().Int64("seed", d.Seed, "Seed for data generation and level assignment")
	cmd.Flags().Int("workers", d.Workers, "Concurrent query workers")
	cmd.Flags().Float64("qps", d.QPS, "Query rate limit (0 = unlimited)")

	return cmd
}
