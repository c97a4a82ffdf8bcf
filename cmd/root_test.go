/*
Copyright © 2025 Katie Mulliken <katie@mulliken.net>
*/
package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/bookmark"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/export"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/platform"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/tokens"
	"github.com/spf13/cobra"
)

func TestRootCmd_Flags(t *testing.T) {
	tests := []struct {
		name         string
		flagName     string
		defaultValue interface{}
		flagType     string
		persistent   bool
	}{
		{
			name:         "db flag has correct default",
			flagName:     "db",
			defaultValue: "markly.db",
			flagType:     "string",
			persistent:   true,
		},
		{
			name:         "store flag has correct default",
			flagName:     "store",
			defaultValue: "sqlite",
			flagType:     "string",
			persistent:   true,
		},
		{
			name:         "config flag has correct default",
			flagName:     "config",
			defaultValue: "",
			flagType:     "string",
			persistent:   true,
		},
		{
			name:         "port flag has correct default",
			flagName:     "port",
			defaultValue: 8080,
			flagType:     "int",
		},
		{
			name:         "host flag has correct default",
			flagName:     "host",
			defaultValue: "localhost",
			flagType:     "string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := rootCmd.Flags()
			if tt.persistent {
				flags = rootCmd.PersistentFlags()
			}

			var flag interface{}
			var err error
			switch tt.flagType {
			case "string":
				flag, err = flags.GetString(tt.flagName)
			case "int":
				flag, err = flags.GetInt(tt.flagName)
			}

			if err != nil {
				t.Fatalf("Failed to get flag %s: %v", tt.flagName, err)
			}
			if flag != tt.defaultValue {
				t.Errorf("Flag %s: got %v, want %v", tt.flagName, flag, tt.defaultValue)
			}
		})
	}
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	want := map[string]bool{"capture": false, "tokens": false, "fetch": false, "browse": false, "backend": false}
	for _, cmd := range rootCmd.Commands() {
		name := strings.Fields(cmd.Use)[0]
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("Expected %s subcommand to be registered", name)
		}
	}
}

func TestRootCmd_UsageOutput(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)

	err := rootCmd.Usage()
	if err != nil {
		t.Errorf("Usage() returned error: %v", err)
	}

	output := buf.String()
	if output == "" {
		t.Error("Expected usage output, got empty string")
	}
}

func TestRootCmd_CommandMetadata(t *testing.T) {
	if rootCmd.Use != "markly" {
		t.Errorf("Expected Use to be 'markly', got %s", rootCmd.Use)
	}

	if rootCmd.Short == "" {
		t.Error("Expected Short description to be set")
	}

	if rootCmd.Long == "" {
		t.Error("Expected Long description to be set")
	}
}

func TestSubcommands_InheritDBFlag(t *testing.T) {
	for _, cmd := range []*cobra.Command{captureCmd, tokensCmd, fetchCmd, browseCmd, backendShowCmd} {
		if cmd.InheritedFlags().Lookup("db") == nil {
			t.Errorf("Expected %s to inherit --db flag from root", cmd.Name())
		}
	}
}

func TestCaptureCmd_Flags(t *testing.T) {
	flags := captureCmd.Flags()
	for _, name := range []string{"timeout", "chrome-path", "user-data", "url", "headless"} {
		if flags.Lookup(name) == nil {
			t.Errorf("Expected flag %s to be defined", name)
		}
	}
	headless, err := flags.GetBool("headless")
	if err != nil {
		t.Fatalf("Failed to get headless flag: %v", err)
	}
	if headless {
		t.Error("Expected headless to default to false")
	}
	timeout, _ := flags.GetDuration("timeout")
	if timeout != 5*time.Minute {
		t.Errorf("timeout default = %v, want 5m", timeout)
	}
}

func TestFetchCmd_Flags(t *testing.T) {
	flags := fetchCmd.Flags()
	for _, name := range []string{"sort", "export", "export-dir", "send", "backend-url", "quiet"} {
		if flags.Lookup(name) == nil {
			t.Errorf("Expected flag %s to be defined", name)
		}
	}
	if err := fetchCmd.Args(fetchCmd, nil); err == nil {
		t.Error("Expected fetch to require a platform argument")
	}
}

func TestPlatformArg(t *testing.T) {
	tests := []struct {
		args    []string
		want    platform.Platform
		wantErr bool
	}{
		{nil, platform.Twitter, false},
		{[]string{"x"}, platform.Twitter, false},
		{[]string{"linkedin"}, platform.LinkedIn, false},
		{[]string{"myspace"}, "", true},
	}
	for _, tt := range tests {
		got, err := platformArg(tt.args)
		if (err != nil) != tt.wantErr {
			t.Errorf("platformArg(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("platformArg(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

// newTestCmd builds a command carrying the flags openApp reads, pointed at
// a fresh sqlite file.
func newTestCmd(t *testing.T, dbPath string) *cobra.Command {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	c := &cobra.Command{Use: "test"}
	c.Flags().String("config", "", "")
	c.Flags().String("db", "", "")
	c.Flags().String("backend-url", "", "")
	if err := c.Flags().Set("db", dbPath); err != nil {
		t.Fatalf("failed to set --db: %v", err)
	}
	c.SetContext(context.Background())
	return c
}

func TestOpenApp(t *testing.T) {
	t.Run("persists tokens and settings across runs", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "markly.db")

		a, err := openApp(newTestCmd(t, dbPath))
		if err != nil {
			t.Fatalf("openApp: %v", err)
		}
		if a.db == nil {
			t.Fatal("expected sqlite backend by default")
		}
		a.store.Update(platform.LinkedIn, tokens.Credential{CSRFToken: "ajax:1", Cookie: "li_at=z"})
		if err := a.settings.SetBackendURL(context.Background(), "https://example.com/in"); err != nil {
			t.Fatalf("SetBackendURL: %v", err)
		}
		a.Close()

		b, err := openApp(newTestCmd(t, dbPath))
		if err != nil {
			t.Fatalf("openApp: %v", err)
		}
		defer b.Close()

		cred, ok := b.store.Lookup(platform.LinkedIn)
		if !ok || cred.CSRFToken != "ajax:1" {
			t.Errorf("expected stored linkedin tokens, got %+v (ok=%v)", cred, ok)
		}
		u, err := b.settings.BackendURL(context.Background())
		if err != nil || u != "https://example.com/in" {
			t.Errorf("BackendURL = %q, %v", u, err)
		}
	})

	t.Run("pipeline wires both platforms and run history", func(t *testing.T) {
		a, err := openApp(newTestCmd(t, filepath.Join(t.TempDir(), "markly.db")))
		if err != nil {
			t.Fatalf("openApp: %v", err)
		}
		defer a.Close()

		p := a.pipeline(nil)
		for _, plat := range platform.All {
			if p.Fetchers[plat] == nil {
				t.Errorf("expected a fetcher for %s", plat)
			}
		}
		if p.Runs == nil {
			t.Error("expected run history with the sqlite backend")
		}
		_, err = p.Fetch(context.Background(), platform.Twitter, bookmark.NewestFirst)
		if !errors.Is(err, tokens.ErrNoTokens) {
			t.Errorf("expected ErrNoTokens, got %v", err)
		}
	})
}

func TestClearStoredTokens(t *testing.T) {
	t.Run("removes current and legacy token keys only", func(t *testing.T) {
		ctx := context.Background()
		dbPath := filepath.Join(t.TempDir(), "markly.db")
		a, err := openApp(newTestCmd(t, dbPath))
		if err != nil {
			t.Fatalf("openApp: %v", err)
		}
		a.store.Update(platform.Twitter, tokens.Credential{CSRFToken: "c", AuthToken: "Bearer a", Cookie: "ct0=c"})
		a.store.Wait()
		if err := a.kv.Set(ctx, tokens.KeyLegacyTwitter, `{"csrfToken":"old"}`); err != nil {
			t.Fatalf("Set: %v", err)
		}
		if err := a.settings.SetBackendURL(ctx, "https://example.com/in"); err != nil {
			t.Fatalf("SetBackendURL: %v", err)
		}

		removed, err := clearStoredTokens(ctx, a.kv)
		if err != nil {
			t.Fatalf("clearStoredTokens: %v", err)
		}
		if strings.Join(removed, ",") != tokens.KeyAuthTokens+","+tokens.KeyLegacyTwitter {
			t.Errorf("removed = %v", removed)
		}
		keys, _ := a.kv.Keys(ctx)
		if len(keys) != 1 || keys[0] != tokens.KeyBackendURL {
			t.Errorf("expected only the backend URL to remain, got %v", keys)
		}
		a.Close()

		b, err := openApp(newTestCmd(t, dbPath))
		if err != nil {
			t.Fatalf("openApp: %v", err)
		}
		defer b.Close()
		if _, ok := b.store.Lookup(platform.Twitter); ok {
			t.Error("expected no tokens after clearing")
		}
	})

	t.Run("nothing to clear", func(t *testing.T) {
		a, err := openApp(newTestCmd(t, filepath.Join(t.TempDir(), "markly.db")))
		if err != nil {
			t.Fatalf("openApp: %v", err)
		}
		defer a.Close()

		removed, err := clearStoredTokens(context.Background(), a.kv)
		if err != nil || len(removed) != 0 {
			t.Errorf("clearStoredTokens = %v, %v", removed, err)
		}
	})
}

func TestSendBookmarks(t *testing.T) {
	list := []bookmark.Bookmark{{ID: "1", Platform: platform.Twitter, Text: "hi", Author: bookmark.Author{Name: "Ada"}}}

	t.Run("flag URL overrides the stored one", func(t *testing.T) {
		var got []export.Record
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &got)
		}))
		defer backend.Close()

		c := newTestCmd(t, filepath.Join(t.TempDir(), "markly.db"))
		if err := c.Flags().Set("backend-url", backend.URL); err != nil {
			t.Fatalf("failed to set --backend-url: %v", err)
		}
		var out bytes.Buffer
		c.SetOut(&out)

		a, err := openApp(c)
		if err != nil {
			t.Fatalf("openApp: %v", err)
		}
		defer a.Close()
		if err := a.settings.SetBackendURL(context.Background(), "https://stored.invalid/"); err != nil {
			t.Fatalf("SetBackendURL: %v", err)
		}

		if err := sendBookmarks(c, a, platform.Twitter, list); err != nil {
			t.Fatalf("sendBookmarks: %v", err)
		}
		if len(got) != 1 || got[0].ExternalID != "1" || got[0].Platform != "x" {
			t.Errorf("unexpected records %+v", got)
		}
		if !strings.Contains(out.String(), "Sent 1 bookmarks to backend.") {
			t.Errorf("unexpected output %q", out.String())
		}
	})

	t.Run("no URL configured", func(t *testing.T) {
		c := newTestCmd(t, filepath.Join(t.TempDir(), "markly.db"))
		a, err := openApp(c)
		if err != nil {
			t.Fatalf("openApp: %v", err)
		}
		defer a.Close()

		if err := sendBookmarks(c, a, platform.Twitter, list); !errors.Is(err, export.ErrNoBackendURL) {
			t.Errorf("expected ErrNoBackendURL, got %v", err)
		}
	})
}

func TestRedactCredential(t *testing.T) {
	c := redactCredential(tokens.Credential{CSRFToken: "abcdefghijklmnop", AuthToken: "Bearer 0123456789abcdef"})
	if strings.Contains(c.CSRFToken, "klmnop") || strings.Contains(c.AuthToken, "abcdef") {
		t.Errorf("expected redacted values, got %+v", c)
	}
}
