package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/profile-bff/internal/profile"
)

var flattenCmd = &cobra.Command{
	Use:   "flatten",
	Short: "Validate a profile update and print its dot-path form",
	Long: "Runs a nested partial update through the same validation as PUT /api/profiles and prints " +
		"the flattened body that would be sent to the profile API. Reads stdin when --in is omitted.",
	RunE: runFlatten,
}

var (
	flattenInput string
)

func init() {
	flattenCmd.Flags().StringVarP(&flattenInput, "in", "i", "", "Path to update JSON file")
	rootCmd.AddCommand(flattenCmd)
}

func runFlatten(cmd *cobra.Command, _ []string) error {
	var (
		patch []byte
		err   error
	)
	if flattenInput == "" {
		patch, err = io.ReadAll(cmd.InOrStdin())
	} else {
		patch, err = os.ReadFile(flattenInput)
	}
	if err != nil {
		return fmt.Errorf("failed to read update: %w", err)
	}

	flat, err := profile.PrepareUpdate(patch, time.Now())
	if err != nil {
		return fmt.Errorf("update rejected: %w", err)
	}

	out, err := json.MarshalIndent(flat, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode update: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
