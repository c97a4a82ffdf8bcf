/*
Copyright © 2025 Katie Mulliken <katie@mulliken.net>
*/
package cmd

import (
	"log"
	"os"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/tokens"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/web"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "markly",
	Short: "Export your saved posts from X and LinkedIn",
	Long: `markly captures the session tokens your browser already sends to
X (Twitter) and LinkedIn, replays them against the private bookmark APIs,
and turns your saved posts into a list you can sort, export as JSON, or
send to your own backend.

Run without a subcommand to serve the web UI. Use "markly capture" to
record tokens and "markly fetch" to pull bookmarks from the terminal.`,
	Run: func(cmd *cobra.Command, args []string) {
		a, err := openApp(cmd)
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		defer a.Close()

		deps := web.Deps{
			Store:        a.store,
			Tokens:       a.tokens,
			Listener:     tokens.NewListener(a.store),
			Pipeline:     a.pipeline(nil),
			Settings:     a.settings,
			Sender:       a.sender(),
			BackendToken: a.cfg.Backend.Token,
		}
		if a.db != nil {
			deps.Runs = a.db
		}

		if err := web.StartServer(a.cfg.Addr(), deps); err != nil {
			log.Fatalf("Web server stopped: %v", err)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (default ~/.markly/config.yaml)")
	rootCmd.PersistentFlags().StringP("db", "d", "markly.db", "Path to the SQLite database file")
	rootCmd.PersistentFlags().String("store", "sqlite", "Token store backend (sqlite or redis)")
	rootCmd.PersistentFlags().String("redis-addr", "localhost:6379", "Redis address when --store=redis")

	rootCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	rootCmd.Flags().String("host", "localhost", "Host to listen on")
}
