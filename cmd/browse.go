/*
Copyright © 2025 Katie Mulliken <katie@mulliken.net>
*/
package cmd

import (
	"fmt"
	"log"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/bookmark"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/tui"
	"github.com/spf13/cobra"
)

// browseCmd represents the browse command
var browseCmd = &cobra.Command{
	Use:   "browse [twitter|linkedin]",
	Short: "Fetch saved posts and browse them interactively",
	Long: `Fetch saved posts and browse them in the terminal.

Keys: s toggles newest/oldest, e writes the JSON export, q quits.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runBrowse(cmd, args); err != nil {
			log.Fatalf("Browse failed: %v", err)
		}
	},
}

func runBrowse(cmd *cobra.Command, args []string) error {
	p, err := platformArg(args)
	if err != nil {
		return err
	}
	sortFlag, err := cmd.Flags().GetString("sort")
	if err != nil {
		return fmt.Errorf("failed to read --sort: %w", err)
	}
	order, err := bookmark.ParseOrder(sortFlag)
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer a.Close()

	list, err := fetchWithProgress(a, p, order)
	if err != nil {
		return err
	}

	return tui.Run(list, tui.Options{
		Platform:  p,
		Order:     order,
		ExportDir: a.cfg.Export.Dir,
	})
}

func init() {
	rootCmd.AddCommand(browseCmd)

	browseCmd.Flags().String("sort", "newest", "Initial sort order (newest or oldest)")
	browseCmd.Flags().String("export-dir", ".", "Directory the e key writes exports to")
}
