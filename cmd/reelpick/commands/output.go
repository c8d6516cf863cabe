// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tomtom215/reelpick/internal/recommend"
)

// Colors are dropped automatically when output is not a terminal.
var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	rankStyle   = lipgloss.NewStyle().Faint(true)
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6EC4F4"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F45E6E"))
	detailStyle = lipgloss.NewStyle().Faint(true)
)

// rankedItem is the printed form of one ranked movie.
type rankedItem struct {
	Rank  int     `json:"rank" yaml:"rank"`
	Title string  `json:"title" yaml:"title"`
	Score float64 `json:"score" yaml:"score"`
}

func toRanked(items []recommend.Recommendation) []rankedItem {
	out := make([]rankedItem, len(items))
	for i, it := range items {
		out[i] = rankedItem{Rank: i + 1, Title: it.Title, Score: it.Score}
	}
	return out
}

// writeStructured writes v as indented JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported structured format %q", format)
	}
}

// writeRanked prints a header and a numbered list with scores.
func writeRanked(w io.Writer, header string, items []rankedItem) {
	fmt.Fprintln(w, headerStyle.Render(header))
	if len(items) == 0 {
		fmt.Fprintln(w, detailStyle.Render("  (no results)"))
		return
	}
	width := len(strconv.Itoa(len(items)))
	for _, it := range items {
		fmt.Fprintf(w, "%s %s %s\n",
			rankStyle.Render(fmt.Sprintf("%*d.", width+1, it.Rank)),
			it.Title,
			scoreStyle.Render(fmt.Sprintf("(%.4f)", it.Score)))
	}
}

// reportFailure prints the generic failure message, plus the error kind
// and text with --verbose, and marks err as reported.
func reportFailure(cmd *cobra.Command, opts *options, err error) error {
	w := cmd.ErrOrStderr()
	fmt.Fprintln(w, errorStyle.Render(recommend.GenericFailureMessage))
	if opts.verbose {
		fmt.Fprintln(w, detailStyle.Render(fmt.Sprintf("%s: %v", recommend.Kind(err), err)))
	}
	return fmt.Errorf("%w: %w", errReported, err)
}
