/*
Copyright © 2025 Katie Mulliken <katie@mulliken.net>
*/

// The fetch command pulls every saved post for one platform using the
// captured tokens and prints, exports or sends the result.
//
// Example usage:
//
//	markly fetch twitter
//	markly fetch linkedin --sort=oldest --export --export-dir=./exports
//	markly fetch x --send --backend-url=https://example.com/api/bookmarks
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/bookmark"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/export"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/platform"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/tokens"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:       "fetch <twitter|linkedin>",
	Short:     "Fetch saved posts from a platform",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"twitter", "x", "linkedin"},
	Run: func(cmd *cobra.Command, args []string) {
		if err := runFetch(cmd, args); err != nil {
			log.Fatalf("Fetch failed: %v", err)
		}
	},
}

type fetchOptions struct {
	order  bookmark.Order
	export bool
	send   bool
	quiet  bool
}

func readFetchOptions(cmd *cobra.Command) (fetchOptions, error) {
	var opts fetchOptions
	sortFlag, err := cmd.Flags().GetString("sort")
	if err != nil {
		return opts, fmt.Errorf("failed to read --sort: %w", err)
	}
	if opts.order, err = bookmark.ParseOrder(sortFlag); err != nil {
		return opts, err
	}
	if opts.export, err = cmd.Flags().GetBool("export"); err != nil {
		return opts, fmt.Errorf("failed to read --export: %w", err)
	}
	if opts.send, err = cmd.Flags().GetBool("send"); err != nil {
		return opts, fmt.Errorf("failed to read --send: %w", err)
	}
	if opts.quiet, err = cmd.Flags().GetBool("quiet"); err != nil {
		return opts, fmt.Errorf("failed to read --quiet: %w", err)
	}
	return opts, nil
}

// runFetch is the main function for the fetch command.
func runFetch(cmd *cobra.Command, args []string) error {
	p, err := platformArg(args)
	if err != nil {
		return err
	}
	opts, err := readFetchOptions(cmd)
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer a.Close()

	list, err := fetchWithProgress(a, p, opts.order)
	if errors.Is(err, tokens.ErrNoTokens) {
		out := cmd.ErrOrStderr()
		fmt.Fprintf(out, "No %s tokens captured yet. To capture them:\n", p.DisplayName())
		for i, step := range tokens.Remediation(p) {
			fmt.Fprintf(out, "  %d. %s\n", i+1, step)
		}
		fmt.Fprintf(out, "Or run: markly capture %s\n", p)
		return err
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), export.FetchedStatus(len(list), p.DisplayName()))
	if !opts.quiet {
		if err := export.Render(cmd.OutOrStdout(), list); err != nil {
			return err
		}
	}

	if opts.export {
		path, err := export.WriteFile(a.cfg.Export.Dir, p, time.Now(), list)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bookmarks to %s\n", len(list), path)
	}

	if opts.send {
		return sendBookmarks(cmd, a, p, list)
	}
	return nil
}

// fetchWithProgress runs the pipeline with a spinner that counts records per page.
func fetchWithProgress(a *app, p platform.Platform, order bookmark.Order) ([]bookmark.Bookmark, error) {
	bar := progressbar.Default(-1, fmt.Sprintf("Fetching %s bookmarks", p.DisplayName()))
	pipe := a.pipeline(func(page, count int) {
		bar.Describe(fmt.Sprintf("Fetching %s bookmarks (page %d)", p.DisplayName(), page))
		_ = bar.Add(count)
	})
	list, err := pipe.Fetch(context.Background(), p, order)
	_ = bar.Finish()
	return list, err
}

func sendBookmarks(cmd *cobra.Command, a *app, p platform.Platform, list []bookmark.Bookmark) error {
	var endpoint string
	if cmd.Flags().Changed("backend-url") {
		endpoint = a.cfg.Backend.URL
		if err := core.ValidateBackendURL(endpoint); err != nil {
			return err
		}
	} else {
		stored, err := a.settings.BackendURL(context.Background())
		if err != nil {
			return err
		}
		endpoint = stored
	}
	if endpoint == "" {
		return export.ErrNoBackendURL
	}

	records := export.Reshape(p, list)
	err := a.sender().Send(context.Background(), endpoint, a.cfg.Backend.Token, records)
	fmt.Fprintln(cmd.OutOrStdout(), export.SentStatus(len(records), err))
	return err
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().String("sort", "newest", "Sort order (newest or oldest)")
	fetchCmd.Flags().Bool("export", false, "Write the result to <platform>_bookmarks_<date>.json")
	fetchCmd.Flags().String("export-dir", ".", "Directory for --export")
	fetchCmd.Flags().Bool("send", false, "POST the result to the backend URL")
	fetchCmd.Flags().String("backend-url", "", "Backend URL (overrides the stored one for this run)")
	fetchCmd.Flags().BoolP("quiet", "q", false, "Only print the summary line")
}
