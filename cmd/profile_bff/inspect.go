package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/profile-bff/internal/config"
	"github.com/jonathan/profile-bff/internal/metrics"
	"github.com/jonathan/profile-bff/internal/observability"
	"github.com/jonathan/profile-bff/internal/profile"
	"github.com/jonathan/profile-bff/internal/profileapi"
	"github.com/jonathan/profile-bff/internal/types"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print a profile with its score and completion status",
	Long: "Fetches a profile from the external profile API and prints the dashboard view, " +
		"the REPS score and the completion status.",
	RunE: runInspect,
}

var (
	inspectUserID  string
	inspectToken   string
	inspectDerived bool
)

func init() {
	inspectCmd.Flags().StringVarP(&inspectUserID, "user-id", "u", "", "User id of the profile (required)")
	inspectCmd.Flags().StringVarP(&inspectToken, "token", "t", "", "Bearer token to forward (default $PROFILE_API_TOKEN)")
	inspectCmd.Flags().BoolVar(&inspectDerived, "derived", false, "Derive completion from profile content instead of stored steps")

	if err := inspectCmd.MarkFlagRequired("user-id"); err != nil {
		panic(fmt.Sprintf("failed to mark user-id flag as required: %v", err))
	}

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	token := inspectToken
	if token == "" {
		token = os.Getenv("PROFILE_API_TOKEN")
	}
	if token == "" {
		return fmt.Errorf("a token is required: pass --token or set PROFILE_API_TOKEN")
	}

	client := profileapi.NewClient(cfg.ProfileAPIBaseURL, zap.NewNop(), profileapi.WithTimeout(cfg.ProfileAPITimeout))
	svc := profile.NewService(client, nil)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// One fetch serves the view, the score and the completion status.
	view, err := svc.GetProfile(ctx, inspectUserID, token)
	if err != nil {
		return err
	}
	score, err := metrics.ComputeScore(view)
	if err != nil {
		return err
	}

	var status *types.CompletionStatus
	if inspectDerived {
		status, err = metrics.DeriveCompletion(view)
	} else {
		status, err = metrics.ComputeCompletion(view)
	}
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	printer.PrintProfile(view)
	printer.PrintScore(score)
	printer.PrintCompletion(status)
	return nil
}
