// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// Output formats accepted by --output.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// errReported marks a failure whose message was already written to stderr.
var errReported = errors.New("reported")

// IsReported reports whether err was already shown to the user.
func IsReported(err error) bool {
	return errors.Is(err, errReported)
}

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	output     string
	verbose    bool
	noStore    bool
}

func (o *options) validate() error {
	switch o.output {
	case FormatText, FormatJSON, FormatYAML:
		return nil
	default:
		return fmt.Errorf("invalid --output %q (want text, json or yaml)", o.output)
	}
}

// NewRootCmd creates the reelpick root command.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "reelpick",
		Short: "Movie recommendations from three titles you like",
		Long: `Reelpick recommends movies from exactly three seed titles.

Two algorithms are available: "content" ranks by genres, tags and decade,
"collaborative" ranks by similarity of rating patterns (requires a
ratings file). Configuration is shared with the server: config.yaml,
CONFIG_PATH and environment variables such as MOVIES_PATH.

Examples:
  reelpick titles --search "toy"
  reelpick recommend "Heat (1995)" "Casino (1995)" "Se7en (1995)"
  reelpick recommend "Heat (1995)" "Casino (1995)" "Se7en (1995)" --algorithm collaborative -o json
  reelpick similar "Toy Story (1995)" --k 5`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.validate()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default: $CONFIG_PATH or ./config.yaml)")
	flags.StringVarP(&opts.output, "output", "o", FormatText, "output format: text, json or yaml")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "show error details and build logs")
	flags.BoolVar(&opts.noStore, "no-store", false, "train in memory without opening the model store")

	cmd.AddCommand(
		newTitlesCmd(opts),
		newRecommendCmd(opts),
		newSimilarCmd(opts),
		newTokenCmd(opts),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
