/*
Copyright © 2025 Katie Mulliken <katie@mulliken.net>
*/
package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

// backendCmd groups the backend URL subcommands.
var backendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Manage the backend that receives sent bookmarks",
}

var backendSetURLCmd = &cobra.Command{
	Use:   "set-url <url>",
	Short: "Store the backend URL",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp(cmd)
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		defer a.Close()

		if err := a.settings.SetBackendURL(context.Background(), args[0]); err != nil {
			log.Fatalf("Failed to set backend URL: %v", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Backend URL set to %s\n", args[0])
	},
}

var backendShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the backend URL",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp(cmd)
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		defer a.Close()

		u, err := a.settings.BackendURL(context.Background())
		if err != nil {
			log.Fatalf("Failed to read backend URL: %v", err)
		}
		if u == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No backend URL configured.")
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), u)
	},
}

func init() {
	rootCmd.AddCommand(backendCmd)
	backendCmd.AddCommand(backendSetURLCmd)
	backendCmd.AddCommand(backendShowCmd)
}
