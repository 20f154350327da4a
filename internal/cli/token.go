package cli

import (
	"time"

	"github.com/spf13/cobra"

	"catalog-service/internal/core/auth"
)

func newTokenCmd(opts *RootOptions) *cobra.Command {
	var (
		uid  string
		role string
		ttl  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a JWT for the admin API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ttl <= 0 {
				ttl = time.Duration(opts.cfg.JWT.AccessTokenTTLMin) * time.Minute
			}
			j := auth.NewJWTer(opts.cfg.JWT.Secret, opts.cfg.JWT.Issuer, ttl)
			tok, err := j.Issue(uid, role)
			if err != nil {
				return err
			}
			if opts.Output == FormatJSON {
				return printResult(cmd, opts.Output, map[string]any{"token": tok, "expiresIn": int(ttl.Seconds())})
			}
			return printResult(cmd, opts.Output, tok)
		},
	}
	cmd.Flags().StringVar(&uid, "uid", "ops", "subject written into the token")
	cmd.Flags().StringVar(&role, "role", auth.RoleAdmin, "role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "lifetime (default jwt.accessTokenTTLMin)")
	return cmd
}
