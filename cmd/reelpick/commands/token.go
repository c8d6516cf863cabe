// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/reelpick/internal/auth"
)

type tokenResult struct {
	Token     string    `json:"token" yaml:"token"`
	Subject   string    `json:"subject" yaml:"subject"`
	ExpiresAt time.Time `json:"expires_at" yaml:"expires_at"`
}

func newTokenCmd(opts *options) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin token for the rebuild endpoint",
		Long: `Mint an HS256 admin token signed with security.admin_jwt_secret
(ADMIN_JWT_SECRET). Send it as "Authorization: Bearer <token>" to
POST /api/v1/rebuild.

Examples:
  reelpick token --subject ops
  reelpick token --subject ci --ttl 15m -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			manager, err := auth.NewJWTManager(cfg.Security.AdminJWTSecret)
			if errors.Is(err, auth.ErrEmptySecret) {
				return fmt.Errorf("admin_jwt_secret is not configured; set ADMIN_JWT_SECRET")
			}
			if err != nil {
				return err
			}

			issued := time.Now()
			token, err := manager.GenerateToken(subject, ttl)
			if err != nil {
				return err
			}

			if opts.output != FormatText {
				return writeStructured(cmd.OutOrStdout(), opts.output, tokenResult{
					Token:     token,
					Subject:   subject,
					ExpiresAt: issued.Add(ttl).UTC().Truncate(time.Second),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "token subject, e.g. the operator name (required)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
