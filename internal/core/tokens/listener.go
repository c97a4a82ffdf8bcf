package tokens

import (
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/platform"
)

// Header is one name/value pair from an observed outbound request.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Listener is a passive tap over outbound platform API requests.
// It never modifies the request it observes.
type Listener struct {
	store *Store
	now   func() time.Time
}

// NewListener returns a Listener that writes complete captures into store.
func NewListener(store *Store) *Listener {
	return &Listener{store: store, now: time.Now}
}

// MatchPlatform reports which platform API rawURL belongs to, if any.
func MatchPlatform(rawURL string) (platform.Platform, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case (hostIs(host, "twitter.com") || hostIs(host, "x.com")) && strings.HasPrefix(u.Path, "/i/api"):
		return platform.Twitter, true
	case hostIs(host, "linkedin.com") && strings.HasPrefix(u.Path, "/voyager/api"):
		return platform.LinkedIn, true
	default:
		return "", false
	}
}

func hostIs(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// Observe inspects one outbound request. When the headers carry a complete
// credential for the matching platform, the cached credential is overwritten
// and Observe returns the platform and true. Partial captures are dropped.
func (l *Listener) Observe(rawURL string, headers []Header) (platform.Platform, bool) {
	p, ok := MatchPlatform(rawURL)
	if !ok {
		return "", false
	}

	var cred Credential
	switch p {
	case platform.Twitter:
		cred = scanTwitter(headers)
	case platform.LinkedIn:
		cred = scanLinkedIn(headers)
	}
	if !cred.Complete(p) {
		return p, false
	}

	// Header-only events lack the cookie; keep the one from an earlier capture.
	if p == platform.Twitter && cred.Cookie == "" {
		if prev, ok := l.store.Lookup(p); ok {
			cred.Cookie = prev.Cookie
		}
	}

	cred.LastUpdated = l.now().UTC()
	l.store.Update(p, cred)
	log.Printf("Captured %s authentication tokens (csrf %s)", p.DisplayName(), Redact(cred.CSRFToken, 10))
	return p, true
}

func scanTwitter(headers []Header) Credential {
	var c Credential
	for _, h := range headers {
		switch strings.ToLower(h.Name) {
		case "x-csrf-token":
			c.CSRFToken = h.Value
		case "authorization":
			c.AuthToken = h.Value
		case "cookie":
			c.Cookie = h.Value
		}
	}
	return c
}

func scanLinkedIn(headers []Header) Credential {
	var c Credential
	for _, h := range headers {
		switch strings.ToLower(h.Name) {
		case "csrf-token":
			c.CSRFToken = h.Value
		case "cookie":
			c.Cookie = h.Value
		}
	}
	if c.CSRFToken == "" && c.Cookie != "" {
		if id, ok := JSessionID(c.Cookie); ok {
			c.CSRFToken = id
		}
	}
	return c
}
