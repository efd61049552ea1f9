package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bot80-alt/certa/internal/server"
)

var tokenTTL time.Duration

// tokenCmd issues bearer tokens for a server running with server.jwt_secret
var tokenCmd = &cobra.Command{
	Use:   "token <subject>",
	Short: "Issue a bearer token for the HTTP API",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Server.JWTSecret == "" {
			return fmt.Errorf("server.jwt_secret is not set (set JWT_SECRET or CERTA_SERVER_JWT_SECRET)")
		}

		tok, err := server.SignToken(args[0], []byte(cfg.Server.JWTSecret), tokenTTL)
		if err != nil {
			return fmt.Errorf("sign token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}
