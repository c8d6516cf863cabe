// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/reelpick/internal/recommend"
)

type recommendResult struct {
	Algorithm       string       `json:"algorithm" yaml:"algorithm"`
	Seeds           []string     `json:"seeds" yaml:"seeds"`
	SnapshotVersion int          `json:"snapshot_version" yaml:"snapshot_version"`
	Items           []rankedItem `json:"items" yaml:"items"`
}

// parseAlgorithmFlag turns a bad --algorithm into a typed request error so
// it is reported like every other failure.
func parseAlgorithmFlag(s string) (recommend.Algorithm, error) {
	alg, err := recommend.ParseAlgorithm(s)
	if err != nil {
		return 0, &recommend.InvalidRequestError{Field: "algorithm", Reason: err.Error()}
	}
	return alg, nil
}

func newRecommendCmd(opts *options) *cobra.Command {
	var (
		algorithm string
		topN      int
	)

	cmd := &cobra.Command{
		Use:   "recommend SEED SEED SEED",
		Short: "Recommend movies from three seed titles",
		Long: `Recommend movies similar to three seed titles. Seeds must match catalog
titles exactly (see "reelpick titles"). The seeds themselves are never
recommended.

Examples:
  reelpick recommend "Heat (1995)" "Casino (1995)" "Se7en (1995)"
  reelpick recommend "Toy Story (1995)" "Jumanji (1995)" "Babe (1995)" --algorithm collaborative --top 5`,
		Args: cobra.ExactArgs(recommend.SeedCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := parseAlgorithmFlag(algorithm)
			if err != nil {
				return reportFailure(cmd, opts, err)
			}

			c, err := openEngine(cmd, opts)
			if err != nil {
				return reportFailure(cmd, opts, err)
			}
			defer closeEngine(c)

			resp, err := c.Engine.Recommend(cmd.Context(), recommend.Request{
				Seeds:     args,
				TopN:      topN,
				Algorithm: alg,
			})
			if err != nil {
				return reportFailure(cmd, opts, err)
			}

			result := recommendResult{
				Algorithm:       resp.Algorithm,
				Seeds:           resp.Seeds,
				SnapshotVersion: resp.SnapshotVersion,
				Items:           toRanked(resp.Items),
			}
			if opts.output != FormatText {
				return writeStructured(cmd.OutOrStdout(), opts.output, result)
			}
			writeRanked(cmd.OutOrStdout(), fmt.Sprintf("Because you liked %d titles (%s):", len(args), result.Algorithm), result.Items)
			return nil
		},
	}

	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "content", "content or collaborative")
	cmd.Flags().IntVarP(&topN, "top", "t", 0, "number of recommendations (0 = server default of 10)")

	return cmd
}
