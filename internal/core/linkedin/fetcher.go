package linkedin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/bookmark"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/platform"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/tokens"
	"github.com/tidwall/gjson"
)

var (
	// ErrRequestFailed is wrapped by non-2xx responses other than 401/403.
	ErrRequestFailed = errors.New("API request failed")
	// ErrAuthentication means the captured cookie or CSRF token is stale.
	ErrAuthentication = errors.New("LinkedIn authentication failed; capture fresh tokens")
	// ErrUnrecognizedResponse means a response had neither records nor a known container.
	ErrUnrecognizedResponse = errors.New("unrecognized LinkedIn response shape")
)

// APIError carries the upstream status and body of a failed page request.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed: %s - %s", e.Status, e.Body)
}

func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return ErrAuthentication
	}
	return ErrRequestFailed
}

// PaginationState is the transient cursor state of one Fetch call.
type PaginationState struct {
	Start      int
	Token      string
	PageCount  int
	RetryCount int
}

// Fetcher pages through the saved-posts search of the authenticated member.
type Fetcher struct {
	Client     *http.Client
	BaseURL    string
	QueryID    string
	PageSize   int
	MaxPages   int
	MaxRetries int
	PageDelay  time.Duration
	RetryDelay time.Duration
	// OnPage, if set, is called after each page with the page number and record count.
	OnPage func(page, count int)
	Now    func() time.Time
}

// NewFetcher returns a Fetcher with the default endpoint, limits and delays.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{
		Client:     client,
		BaseURL:    DefaultBaseURL,
		QueryID:    QueryID,
		PageSize:   DefaultPageSize,
		MaxPages:   MaxPages,
		MaxRetries: MaxRetries,
		PageDelay:  DefaultPageDelay,
		RetryDelay: DefaultRetryDelay,
		Now:        time.Now,
	}
}

// ResolveCSRF replaces token with the cookie's JSESSIONID unless token already looks like one.
func ResolveCSRF(token, cookie string) string {
	id, ok := tokens.JSessionID(cookie)
	if !ok || strings.HasPrefix(token, "ajax:") {
		return token
	}
	return id
}

// EncodeVariables renders the Rest.li tuple used as the "variables" parameter.
func EncodeVariables(start, count int, paginationToken string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "(start:%d,count:%d,", start, count)
	if paginationToken != "" {
		fmt.Fprintf(&b, "paginationToken:%s,", url.QueryEscape(paginationToken))
	}
	fmt.Fprintf(&b, "query:(flagshipSearchIntent:%s))", SearchIntent)
	return b.String()
}

// Fetch returns every saved post reachable within MaxPages. Authentication
// failures abort immediately; other failures are retried per page and, once
// retries are exhausted, abort the fetch without returning partial results.
func (f *Fetcher) Fetch(ctx context.Context, cred tokens.Credential) ([]bookmark.Bookmark, error) {
	csrf := ResolveCSRF(cred.CSRFToken, cred.Cookie)
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	fetchedAt := now()

	var all []bookmark.Bookmark
	state := PaginationState{}
	for state.PageCount < f.maxPages() {
		if state.PageCount > 0 {
			if err := sleep(ctx, f.PageDelay); err != nil {
				return nil, err
			}
		}

		recs, next, err := f.fetchWithRetry(ctx, csrf, cred, &state)
		if err != nil {
			return nil, err
		}
		state.PageCount++
		if len(recs) == 0 {
			break
		}
		for _, r := range recs {
			all = append(all, r.toBookmark(len(all), fetchedAt))
		}
		if f.OnPage != nil {
			f.OnPage(state.PageCount, len(recs))
		}
		if next == "" {
			break
		}
		state.Token = next
		state.Start += f.pageSize()
	}

	log.Printf("Fetched %d LinkedIn saved posts from %d page(s)", len(all), state.PageCount)
	return all, nil
}

func (f *Fetcher) maxPages() int {
	if f.MaxPages <= 0 {
		return MaxPages
	}
	return f.MaxPages
}

func (f *Fetcher) pageSize() int {
	if f.PageSize <= 0 {
		return DefaultPageSize
	}
	return f.PageSize
}

func (f *Fetcher) fetchWithRetry(ctx context.Context, csrf string, cred tokens.Credential, state *PaginationState) ([]postRecord, string, error) {
	state.RetryCount = 0
	for {
		recs, next, err := f.fetchPage(ctx, csrf, cred, state)
		if err == nil {
			return recs, next, nil
		}
		if errors.Is(err, ErrAuthentication) || ctx.Err() != nil {
			return nil, "", err
		}
		if state.RetryCount >= f.MaxRetries {
			return nil, "", fmt.Errorf("giving up on page %d after %d retries: %w", state.PageCount+1, state.RetryCount, err)
		}
		state.RetryCount++
		log.Printf("LinkedIn page %d failed (%v), retry %d/%d", state.PageCount+1, err, state.RetryCount, f.MaxRetries)
		if err := sleep(ctx, f.RetryDelay); err != nil {
			return nil, "", err
		}
	}
}

func (f *Fetcher) requestURL(state *PaginationState) string {
	queryID := f.QueryID
	if queryID == "" {
		queryID = QueryID
	}
	return fmt.Sprintf("%s?includeWebMetadata=true&variables=%s&queryId=%s",
		strings.TrimRight(f.BaseURL, "/"),
		EncodeVariables(state.Start, f.pageSize(), state.Token),
		url.QueryEscape(queryID))
}

func (f *Fetcher) fetchPage(ctx context.Context, csrf string, cred tokens.Credential, state *PaginationState) ([]postRecord, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.requestURL(state), nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("csrf-token", csrf)
	req.Header.Set("x-restli-protocol-version", restliProtocol)
	req.Header.Set("accept", acceptHeader)
	req.Header.Set("x-li-lang", "en_US")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Cookie", cred.Cookie)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("request to LinkedIn failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read LinkedIn response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(body)}
	}
	if !gjson.ValidBytes(body) {
		return nil, "", ErrUnrecognizedResponse
	}

	doc := gjson.ParseBytes(body)
	recs, method := extract(doc)
	if len(recs) == 0 && !hasContainer(doc) {
		return nil, "", ErrUnrecognizedResponse
	}
	if method != "" {
		log.Printf("LinkedIn page %d: %d record(s) via %s extractor", state.PageCount+1, len(recs), method)
	}
	return recs, paginationToken(doc), nil
}

func (r postRecord) toBookmark(index int, fetchedAt time.Time) bookmark.Bookmark {
	b := bookmark.Bookmark{
		ID:       r.URN,
		Platform: platform.LinkedIn,
		Text:     r.Text,
		Title:    r.Title,
		Author: bookmark.Author{
			Name:       r.AuthorName,
			ProfileURL: r.AuthorProfileURL,
			Photo:      r.AuthorPhoto,
			Headline:   r.AuthorHeadline,
		},
		CreatedAt: ParseRelativeTime(r.RelativeTime, fetchedAt),
		URL:       r.URL,
		Media:     []bookmark.MediaItem{},
	}
	if b.ID == "" {
		b.ID = fmt.Sprintf("linkedin-%d-%d", fetchedAt.UnixMilli(), index)
	}
	if b.URL == "" && r.URN != "" {
		b.URL = "https://www.linkedin.com/feed/update/" + r.URN + "/"
	}
	if r.Image != "" {
		b.Media = append(b.Media, bookmark.MediaItem{Type: bookmark.MediaImage, URL: r.Image})
	}
	return b
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
