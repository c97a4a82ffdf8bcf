/*
Copyright © 2025 Katie Mulliken <katie@mulliken.net>
*/
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/tokens"
	"github.com/spf13/cobra"
)

// tokensCmd represents the tokens command
var tokensCmd = &cobra.Command{
	Use:   "tokens [twitter|linkedin]",
	Short: "Show or clear the captured authentication tokens",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runTokens(cmd, args); err != nil {
			log.Fatalf("Tokens failed: %v", err)
		}
	},
}

func runTokens(cmd *cobra.Command, args []string) error {
	reveal, err := cmd.Flags().GetBool("reveal")
	if err != nil {
		return fmt.Errorf("failed to read --reveal: %w", err)
	}
	clearAll, err := cmd.Flags().GetBool("clear")
	if err != nil {
		return fmt.Errorf("failed to read --clear: %w", err)
	}
	if clearAll && len(args) > 0 {
		return fmt.Errorf("--clear removes tokens for every platform and takes no arguments")
	}

	a, err := openApp(cmd)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer a.Close()

	if clearAll {
		a.store.Wait()
		removed, err := clearStoredTokens(context.Background(), a.kv)
		if err != nil {
			return err
		}
		if len(removed) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No stored tokens to clear")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", strings.Join(removed, ", "))
		return nil
	}

	msg := tokens.Message{Action: tokens.ActionGetAuthTokens}
	if len(args) > 0 {
		msg.Platform = args[0]
	}
	resp := a.tokens.Handle(context.Background(), msg)
	if resp.Tokens != nil && !reveal {
		redacted := redactCredential(*resp.Tokens)
		resp.Tokens = &redacted
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// clearStoredTokens deletes every credential key present in kv, including
// the legacy single-platform key, and returns the keys it removed.
func clearStoredTokens(ctx context.Context, kv kvStore) ([]string, error) {
	keys, err := kv.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored keys: %w", err)
	}
	var removed []string
	for _, k := range keys {
		if k != tokens.KeyAuthTokens && k != tokens.KeyLegacyTwitter {
			continue
		}
		if err := kv.Delete(ctx, k); err != nil {
			return removed, fmt.Errorf("failed to clear %s: %w", k, err)
		}
		removed = append(removed, k)
	}
	return removed, nil
}

func redactCredential(c tokens.Credential) tokens.Credential {
	c.CSRFToken = tokens.Redact(c.CSRFToken, 10)
	c.AuthToken = tokens.Redact(c.AuthToken, 10)
	c.Cookie = tokens.Redact(c.Cookie, 10)
	return c
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().Bool("reveal", false, "Print token values in full")
	tokensCmd.Flags().Bool("clear", false, "Delete stored tokens for every platform")
}
