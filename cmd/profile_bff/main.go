// Package main provides the entry point for the profile BFF server and its
// operator commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "profile_bff",
	Short: "Profile backend-for-frontend",
	Long: "profile_bff serves the agent dashboard's profile API. It forwards reads and partial updates " +
		"to the external profile service and derives REPS scores and completion status from the results.",
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
