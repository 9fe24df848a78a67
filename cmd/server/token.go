package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/casting-agency/internal/auth"
	"github.com/iliyamo/casting-agency/internal/config"
)

// newTokenCmd mints an HS256 token signed with JWT_SECRET.  It is meant for
// local development against a server running with AUTH_ALGORITHM=HS256.
func newTokenCmd() *cobra.Command {
	var (
		subject string
		perms   []string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development bearer token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !strings.EqualFold(cfg.Auth.Algorithm, "HS256") {
				return errors.New("token: only HS256 tokens can be minted locally")
			}
			for _, p := range perms {
				if !slices.Contains(auth.AllPermissions, p) {
					return fmt.Errorf("token: unknown permission %q", p)
				}
			}
			tok, err := auth.Issue([]byte(cfg.Auth.Secret), subject, perms, ttl, auth.Options{
				Issuer:   cfg.Auth.Issuer,
				Audience: cfg.Auth.Audience,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "dev", "token subject")
	cmd.Flags().StringSliceVar(&perms, "permissions", auth.AllPermissions, "permissions to grant")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
