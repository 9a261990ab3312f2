// Command devtoken mints a bearer token signed with the configured secret,
// for exercising the API locally.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/angelmondragon/catalog-backend/pkg/auth"
	"github.com/angelmondragon/catalog-backend/pkg/config"
)

var (
	userID string
	role   string
)

var rootCmd = &cobra.Command{
	Use:           "devtoken",
	Short:         "Mint a development access token",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		cfg, err := config.LoadJWT()
		if err != nil {
			return err
		}
		token, err := auth.MintAccessToken(cfg, time.Now(), auth.AccessTokenPayload{
			UserID: userID,
			Role:   auth.Role(role),
		})
		if err != nil {
			return fmt.Errorf("mint token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&userID, "user", "dev-user", "user id carried in the token")
	rootCmd.Flags().StringVar(&role, "role", string(auth.RoleUser), "role carried in the token (admin|user)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
