package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/profile-bff/internal/config"
	"github.com/jonathan/profile-bff/internal/server"
	"github.com/jonathan/profile-bff/internal/types"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a signed test token",
	Long:  "Signs a bearer token for a user id with JWT_SECRET, for calling the API during development.",
	RunE:  runToken,
}

var (
	tokenUserID string
	tokenEmail  string
)

func init() {
	tokenCmd.Flags().StringVarP(&tokenUserID, "user-id", "u", "", "User id to issue the token for (required)")
	tokenCmd.Flags().StringVarP(&tokenEmail, "email", "e", "", "Email claim (default <user-id>@example.com)")

	if err := tokenCmd.MarkFlagRequired("user-id"); err != nil {
		panic(fmt.Sprintf("failed to mark user-id flag as required: %v", err))
	}

	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	req := types.TokenRequest{UserID: tokenUserID, Email: tokenEmail}
	if err := req.Validate(); err != nil {
		return err
	}

	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to load JWT config: %w", err)
	}

	token, expiresAt, err := server.NewJWTService(jwtCfg).GenerateToken(req.UserID, req.Email)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, token)
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	return nil
}
