package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/api/middleware"
	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/config"
)

func newTokenCmd() *cobra.Command {
	var (
		subject string
		role    string
		secret  string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API token",
		Long: `Sign a token the API accepts on its edit routes. The secret defaults to
server.jwt_secret from config.yaml or DJSET_SERVER_JWT_SECRET.

Example:
  sequencer token --sub alice --role editor --ttl 720h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = config.Load().Server.JWTSecret
			}
			if secret == "" {
				return fmt.Errorf("no secret: pass --secret or set server.jwt_secret")
			}

			token, err := middleware.IssueToken([]byte(secret), subject, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "sub", "", "token subject (required)")
	cmd.Flags().StringVar(&role, "role", middleware.RoleEditor, "role claim: editor or admin")
	cmd.Flags().StringVar(&secret, "secret", "", "HMAC secret")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "lifetime, 0 for no expiry")
	cmd.MarkFlagRequired("sub")
	return cmd
}
