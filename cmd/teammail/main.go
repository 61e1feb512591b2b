package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "teammail",
	Short: "Team mailing backend",
	Long:  "Receives provider webhooks, sends mail through team integrations and serves the mailbox API",
	// Errors are printed once by main.
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
