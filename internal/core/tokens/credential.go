package tokens

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/platform"
)

// Storage keys in the durable key-value store.
const (
	// KeyAuthTokens holds the multi-platform credential object.
	KeyAuthTokens = "auth_tokens"
	// KeyLegacyTwitter is the single-platform key written by older versions.
	KeyLegacyTwitter = "twitter_auth_tokens"
	// KeyBackendURL holds the user-configured ingestion endpoint.
	KeyBackendURL = "backend_url"
)

// ErrNoTokens means no complete credential has been captured for a platform yet.
var ErrNoTokens = errors.New("no authentication tokens captured yet")

// KV is the durable key-value store the credentials are mirrored into.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Credential is the set of session values replayed against a platform API.
//
// Twitter needs CSRFToken and AuthToken; LinkedIn needs CSRFToken and Cookie.
// Cookie is also kept for Twitter when the captured request carried one.
type Credential struct {
	CSRFToken   string    `json:"csrfToken"`
	AuthToken   string    `json:"authToken,omitempty"`
	Cookie      string    `json:"cookie,omitempty"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Complete reports whether c carries every field p requires.
func (c Credential) Complete(p platform.Platform) bool {
	switch p {
	case platform.Twitter:
		return c.CSRFToken != "" && c.AuthToken != ""
	case platform.LinkedIn:
		return c.CSRFToken != "" && c.Cookie != ""
	default:
		return false
	}
}

var jsessionPattern = regexp.MustCompile(`JSESSIONID="?([^;"]+)"?`)

// JSessionID extracts the JSESSIONID attribute from a raw cookie string,
// including its "ajax:" prefix.
func JSessionID(cookie string) (string, bool) {
	m := jsessionPattern.FindStringSubmatch(cookie)
	if len(m) < 2 || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// Redact keeps the first n characters of a secret for log lines.
func Redact(s string, n int) string {
	if s == "" {
		return "(empty)"
	}
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
