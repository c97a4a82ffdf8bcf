package web

import (
	"context"
	"time"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/bookmark"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/db"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/platform"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/tokens"
)

// RunLister reads the fetch history.
type RunLister interface {
	LastFetchRun(ctx context.Context, platform string) (db.FetchRun, error)
	ListFetchRuns(ctx context.Context, limit int) ([]db.FetchRun, error)
}

type platformView struct {
	Platform    platform.Platform
	Name        string
	Captured    bool
	CSRF        string // redacted
	LastUpdated time.Time
	LastRun     *db.FetchRun
}

type bookmarksView struct {
	Platform    platform.Platform
	Name        string
	Order       bookmark.Order
	NextOrder   bookmark.Order
	Bookmarks   []bookmark.Bookmark
	Status      string
	Remediation []string
	Error       string
}

type statusView struct {
	OK      bool
	Message string
}

type captureRequest struct {
	URL     string          `json:"url"`
	Headers []tokens.Header `json:"headers"`
}

type captureResponse struct {
	Captured bool   `json:"captured"`
	Platform string `json:"platform,omitempty"`
}
