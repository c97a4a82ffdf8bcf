package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/bookmark"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/tokens"
)

// ErrRequestFailed is wrapped by every non-2xx API response.
var ErrRequestFailed = errors.New("API request failed")

// APIError carries the upstream status and body of a failed page request.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed: %s - %s", e.Status, e.Body)
}

func (e *APIError) Unwrap() error { return ErrRequestFailed }

// Fetcher pages through the bookmarks timeline of the authenticated user.
type Fetcher struct {
	Client *http.Client
	// BaseURL is the GraphQL root; the operation id and name are appended.
	BaseURL string
	// PageSize is the "count" variable, clamped to 50..100.
	PageSize int
	// MaxPages bounds the number of requests per Fetch.
	MaxPages int
	// PageDelay is slept before every request after the first.
	PageDelay time.Duration
	// OnPage, if set, is called after each page with the page number and tweet count.
	OnPage func(page, count int)
}

// NewFetcher returns a Fetcher with the default endpoint and limits.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{
		Client:    client,
		BaseURL:   DefaultBaseURL,
		PageSize:  DefaultPageSize,
		MaxPages:  MaxPages,
		PageDelay: DefaultPageDelay,
	}
}

var ct0Pattern = regexp.MustCompile(`ct0=([^;]+)`)

// ResolveCSRF prefers the ct0 cookie value over the captured header value.
func ResolveCSRF(csrfToken, cookie string) string {
	if m := ct0Pattern.FindStringSubmatch(cookie); len(m) == 2 && m[1] != "" {
		return m[1]
	}
	return csrfToken
}

// Fetch returns every bookmarked tweet reachable within MaxPages, in page order.
// Any failed page aborts the whole fetch.
func (f *Fetcher) Fetch(ctx context.Context, cred tokens.Credential) ([]bookmark.Bookmark, error) {
	csrf := ResolveCSRF(cred.CSRFToken, cred.Cookie)
	maxPages := f.MaxPages
	if maxPages <= 0 {
		maxPages = MaxPages
	}

	first, err := f.fetchPage(ctx, csrf, cred, "")
	if err != nil {
		return nil, err
	}
	all := make([]bookmark.Bookmark, 0, len(first.tweets))
	all = appendTweets(all, first.tweets)
	f.reportPage(1, len(first.tweets))

	cursor := first.nextCursor
	pageCount := 1
	for cursor != "" && pageCount < maxPages {
		if err := sleep(ctx, f.PageDelay); err != nil {
			return nil, err
		}
		log.Printf("Fetching Twitter bookmarks page %d", pageCount+1)
		p, err := f.fetchPage(ctx, csrf, cred, cursor)
		if err != nil {
			return nil, err
		}
		if len(p.tweets) == 0 {
			break
		}
		all = appendTweets(all, p.tweets)
		cursor = p.nextCursor
		pageCount++
		f.reportPage(pageCount, len(p.tweets))
	}

	log.Printf("Fetched %d Twitter bookmarks from %d page(s)", len(all), pageCount)
	return all, nil
}

func appendTweets(all []bookmark.Bookmark, recs []tweetRecord) []bookmark.Bookmark {
	for _, r := range recs {
		all = append(all, r.toBookmark())
	}
	return all
}

func (f *Fetcher) reportPage(n, count int) {
	if f.OnPage != nil {
		f.OnPage(n, count)
	}
}

func (f *Fetcher) pageSize() int {
	switch {
	case f.PageSize <= 0:
		return DefaultPageSize
	case f.PageSize < MinPageSize:
		return MinPageSize
	case f.PageSize > MaxPageSize:
		return MaxPageSize
	default:
		return f.PageSize
	}
}

// requestURL builds the GraphQL GET URL for one page.
func (f *Fetcher) requestURL(cursor string) (string, error) {
	variables := map[string]any{
		"count":                  f.pageSize(),
		"includePromotedContent": true,
	}
	if cursor != "" {
		variables["cursor"] = cursor
	}
	varsJSON, err := json.Marshal(variables)
	if err != nil {
		return "", err
	}
	featuresJSON, err := json.Marshal(features)
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("variables", string(varsJSON))
	q.Set("features", string(featuresJSON))
	return fmt.Sprintf("%s/%s/%s?%s", strings.TrimRight(f.BaseURL, "/"), OperationID, OperationName, q.Encode()), nil
}

func (f *Fetcher) fetchPage(ctx context.Context, csrf string, cred tokens.Credential, cursor string) (page, error) {
	u, err := f.requestURL(cursor)
	if err != nil {
		return page{}, fmt.Errorf("failed to build request URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return page{}, err
	}
	req.Header.Set("x-csrf-token", csrf)
	req.Header.Set("authorization", cred.AuthToken)
	req.Header.Set("content-type", "application/json")
	req.Header.Set("x-twitter-auth-type", "OAuth2Session")
	req.Header.Set("x-twitter-client-language", "en")
	req.Header.Set("x-twitter-active-user", "yes")
	req.Header.Set("Referer", "https://x.com/i/bookmarks")
	req.Header.Set("Origin", "https://x.com")
	req.Header.Set("User-Agent", userAgent)
	if cred.Cookie != "" {
		req.Header.Set("Cookie", cred.Cookie)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return page{}, fmt.Errorf("request to Twitter failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return page{}, fmt.Errorf("failed to read Twitter response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("Twitter API request failed: %s", resp.Status)
		return page{}, &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(body)}
	}
	return parsePage(body)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
