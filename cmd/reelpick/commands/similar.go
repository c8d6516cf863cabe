// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

type similarResult struct {
	Title     string       `json:"title" yaml:"title"`
	Algorithm string       `json:"algorithm" yaml:"algorithm"`
	Items     []rankedItem `json:"items" yaml:"items"`
}

func newSimilarCmd(opts *options) *cobra.Command {
	var (
		algorithm string
		k         int
	)

	cmd := &cobra.Command{
		Use:   "similar TITLE",
		Short: "Show the nearest neighbours of one movie",
		Long: `Show the movies most similar to one title under the chosen algorithm.

Examples:
  reelpick similar "Toy Story (1995)"
  reelpick similar "Heat (1995)" --algorithm collaborative --k 5 -o yaml`,
		Args: cobra.ExactArgs(1),
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

			items, err := c.Engine.SimilarTo(cmd.Context(), alg, args[0], k)
			if err != nil {
				return reportFailure(cmd, opts, err)
			}

			result := similarResult{Title: args[0], Algorithm: alg.String(), Items: toRanked(items)}
			if opts.output != FormatText {
				return writeStructured(cmd.OutOrStdout(), opts.output, result)
			}
			writeRanked(cmd.OutOrStdout(), fmt.Sprintf("Similar to %s (%s):", result.Title, result.Algorithm), result.Items)
			return nil
		},
	}

	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "content", "content or collaborative")
	cmd.Flags().IntVarP(&k, "k", "k", 0, "number of neighbours (0 = default of 10)")

	return cmd
}
