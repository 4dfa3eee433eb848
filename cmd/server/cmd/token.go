package cmd

import (
	"context"
	"fmt"

	"github.com/internhub/server/internal/auth"
	"github.com/internhub/server/internal/config"
	"github.com/internhub/server/internal/domain/accounts"
	"github.com/spf13/cobra"
)

// newTokenCommand mints a bearer token for an existing account. The role is
// read from the store, never from the command line.
func newTokenCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "token <account-id>",
		Short: "Mint a bearer token for an existing account",
		Long: `Mint a bearer token for an existing account, signed with JWT_SECRET.

The token carries the account's stored role and expires after JWT_EXPIRY_HOURS.
Intended for operators running smoke tests against a deployment.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			if cfg.Storage.Driver == config.StorageDriverMemory {
				return fmt.Errorf("token needs a persistent store; STORAGE_DRIVER is %q", cfg.Storage.Driver)
			}

			logger := config.NewLogger(cfg.Logging)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			store, err := openStore(ctx, cfg, "", false, logger)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer)
			token, account, err := accounts.NewService(store.Accounts(), tokens, logger).IssueToken(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "account %s (%s), expires in %s\n", account.ID, account.Role, tokens.Expiry())
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
