// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/reelpick/internal/catalog"
)

type titlesResult struct {
	Titles []string `json:"titles" yaml:"titles"`
	Count  int      `json:"count" yaml:"count"`
}

func newTitlesCmd(opts *options) *cobra.Command {
	var (
		search string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "titles",
		Short: "List catalog titles usable as seeds",
		Long: `List catalog titles in catalog order. Seeds must match a title exactly,
including the year suffix.

Examples:
  reelpick titles
  reelpick titles --search "star wars" --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative, got %d", limit)
			}

			cfg, err := loadConfig(opts)
			if err != nil {
				return reportFailure(cmd, opts, err)
			}
			initLogging(cmd, opts)

			// Listing needs only the catalog, not a full engine build.
			cat, err := catalog.Load(cfg.Data.MoviesPath, cfg.Data.TagsPath, cfg.CatalogOptions())
			if err != nil {
				return reportFailure(cmd, opts, err)
			}

			var titles []string
			if search == "" && limit == 0 {
				titles = cat.ListTitles()
			} else {
				titles = cat.Search(search, limit)
			}

			if opts.output != FormatText {
				return writeStructured(cmd.OutOrStdout(), opts.output, titlesResult{Titles: titles, Count: len(titles)})
			}
			w := cmd.OutOrStdout()
			for _, t := range titles {
				fmt.Fprintln(w, t)
			}
			fmt.Fprintln(w, detailStyle.Render(fmt.Sprintf("%d title(s)", len(titles))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive substring filter")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of titles (0 = all)")

	return cmd
}
