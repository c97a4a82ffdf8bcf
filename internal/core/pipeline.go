package core

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/bookmark"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/db"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/platform"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/tokens"
)

// Fetcher pulls every saved post for one platform with the given credential.
type Fetcher interface {
	Fetch(ctx context.Context, cred tokens.Credential) ([]bookmark.Bookmark, error)
}

// RunRecorder stores the outcome of each fetch.
type RunRecorder interface {
	SaveFetchRun(ctx context.Context, run db.FetchRun) (int64, error)
}

// Pipeline resolves tokens, runs the platform fetcher and sorts the result.
type Pipeline struct {
	Tokens   *tokens.Service
	Fetchers map[platform.Platform]Fetcher
	// Runs, if set, records every fetch attempt.
	Runs RunRecorder
	Now  func() time.Time
}

// Fetch returns the platform's saved posts sorted by order. The credential
// is read once up front; captures that land mid-fetch are not picked up.
func (p *Pipeline) Fetch(ctx context.Context, plat platform.Platform, order bookmark.Order) ([]bookmark.Bookmark, error) {
	f, ok := p.Fetchers[plat]
	if !ok {
		return nil, fmt.Errorf("%w: %q", platform.ErrUnknownPlatform, plat)
	}

	cred, err := p.Tokens.Tokens(ctx, plat)
	if err != nil {
		return nil, err
	}

	started := p.now()
	list, err := f.Fetch(ctx, cred)
	p.record(ctx, plat, started, len(list), err)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s bookmarks: %w", plat.DisplayName(), err)
	}
	return bookmark.Sort(list, order), nil
}

func (p *Pipeline) record(ctx context.Context, plat platform.Platform, started time.Time, count int, fetchErr error) {
	if p.Runs == nil {
		return
	}
	run := db.FetchRun{
		Platform:   string(plat),
		StartedAt:  started,
		FinishedAt: p.now(),
		Status:     db.RunStatusOK,
		Count:      count,
	}
	if fetchErr != nil {
		run.Status = db.RunStatusError
		run.Error = fetchErr.Error()
		run.Count = 0
	}
	if _, err := p.Runs.SaveFetchRun(context.WithoutCancel(ctx), run); err != nil {
		log.Printf("Failed to record %s fetch run: %v", plat, err)
	}
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// NewHTTPClient returns the client shared by the platform fetchers and the
// backend sender.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 5 * time.Second,
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
