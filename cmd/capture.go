/*
Copyright © 2025 Katie Mulliken <katie@mulliken.net>
*/

// The capture command opens Chrome/Chromium, watches the requests the page
// makes to the X or LinkedIn API and stores the authentication headers it
// sees.
//
// Sign in (if needed) and browse to your bookmarks or saved posts; the
// command exits as soon as a complete credential has been captured.
//
// Example usage:
//
//	markly capture twitter
//	markly capture linkedin --timeout=10m --user-data=~/.markly/chrome-profile
package cmd

import (
	"context"
	"fmt"
	"log"
	"runtime"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/browser"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/tokens"
	"github.com/spf13/cobra"
)

// captureCmd represents the capture command
var captureCmd = &cobra.Command{
	Use:       "capture [twitter|linkedin]",
	Short:     "Capture authentication tokens from a browser session",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"twitter", "x", "linkedin"},
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCapture(cmd, args); err != nil {
			log.Fatalf("Capture failed: %v", err)
		}
	},
}

// runCapture is the main function for the capture command.
func runCapture(cmd *cobra.Command, args []string) error {
	p, err := platformArg(args)
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer a.Close()

	startURL, err := cmd.Flags().GetString("url")
	if err != nil {
		return fmt.Errorf("failed to read --url: %w", err)
	}
	headless, err := cmd.Flags().GetBool("headless")
	if err != nil {
		return fmt.Errorf("failed to read --headless: %w", err)
	}

	chromePath := a.cfg.Capture.ChromePath
	if chromePath == "" && runtime.GOOS == "darwin" {
		// Best-effort default for macOS.
		chromePath = "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"
	}

	opts := browser.CaptureOptions{
		ChromePath:  chromePath,
		Headless:    headless,
		Timeout:     a.cfg.Capture.Timeout,
		UserDataDir: a.cfg.Capture.UserDataDir,
		StartURL:    startURL,
		Platform:    p,
	}

	if err := browser.Capture(context.Background(), tokens.NewListener(a.store), opts); err != nil {
		return err
	}

	cred, _ := a.store.Lookup(p)
	fmt.Fprintf(cmd.OutOrStdout(), "Captured %s tokens (csrf %s)\n", p.DisplayName(), tokens.Redact(cred.CSRFToken, 10))
	return nil
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().Duration("timeout", browser.DefaultTimeout, "How long to wait for tokens")
	captureCmd.Flags().String("chrome-path", "", "Path to Chrome/Chromium executable")
	captureCmd.Flags().String("user-data", "", "Chrome profile directory (default ~/.markly/chrome-profile)")
	captureCmd.Flags().String("url", "", "Page to open instead of the platform's bookmarks page")
	captureCmd.Flags().Bool("headless", false, "Run Chrome without a window (only works with an already signed-in profile)")
}
