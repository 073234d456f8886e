package cmd

import (
	"fmt"
	"os"

	"perch/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "perch",
	Short: "Perch is a small social-networking service.",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
