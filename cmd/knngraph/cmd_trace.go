package main

import (
	"encoding/json"
	"fmt"

	"github.com/hupe1980/knngraph"
	"github.com/hupe1980/knngraph/testutil"
	"github.com/spf13/cobra"
)

type traceLine struct {
	Level      int       `json:"level"`
	Stage      string    `json:"stage"`
	Candidates []uint32  `json:"candidates"`
	Distances  []float64 `json:"distances"`
}

func newTraceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Print the level-by-level descent of one query",
		Long: `Build an index from seeded uniform vectors and trace a single query
from the entry point down to level 0, printing the candidate set before
and after each level is searched.

Examples:
  knngraph trace                     # 1000 points in 2-D
  knngraph trace --n 5000 --k 5      # Larger graph, more neighbors
  knngraph trace --json              # One JSON object per step`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			n, _ := cmd.Flags().GetInt("n")
			dim, _ := cmd.Flags().GetInt("dim")
			k, _ := cmd.Flags().GetInt("k")
			ef, _ := cmd.Flags().GetInt("ef")
			seed, _ := cmd.Flags().GetInt64("seed")

			optFns, err := indexOptions(cmd)
			if err != nil {
				return err
			}
			optFns = append([]func(o *knngraph.Options){knngraph.WithSeed(seed)}, optFns...)

			idx, err := knngraph.NewEuclidean(optFns...)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			rng := testutil.NewRNG(seed)
			if _, err := idx.InsertBatch(ctx, rng.UniformVectors(n, dim)); err != nil {
				return err
			}
			query := rng.UniformVectors(1, dim)[0]

			steps, err := idx.SearchTrace(ctx, query, k, &knngraph.SearchOptions{EF: ef})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			if !jsonOut {
				fmt.Fprintf(out, "query %v (max level %d)\n", query, idx.MaxLevel())
			}

			for step := range steps {
				line := traceLine{Level: step.Level, Stage: step.Stage.String()}
				for _, c := range step.Candidates {
					line.Candidates = append(line.Candidates, c.ID)
					line.Distances = append(line.Distances, c.Distance)
				}

				if jsonOut {
					if err := enc.Encode(line); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintf(out, "level %d %-6s %v\n", line.Level, line.Stage, line.Candidates)
			}

			return nil
		},
	}

	cmd.Flags().Int("n", 1000, "Number of indexed points")
	cmd.Flags().Int("dim", 2, "Vector dimension")
	cmd.Flags().Int("k", 3, "Neighbors to find")
	cmd.Flags().Int("ef", 0, "Query beam width (0 = k)")
	cmd.Flags().Int64("seed", 1, "Seed for data generation and level assignment")

	return cmd
}
