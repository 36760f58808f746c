/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jobboard",
	Short: "Job marketplace API server",
	Long: `jobboard serves the job marketplace REST API and its companion tools:

	jobboard server        run the HTTP API
	jobboard migrate up    apply database migrations
	jobboard worker        consume domain events
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
