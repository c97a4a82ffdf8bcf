package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/bookmark"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/db"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/export"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/platform"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/tokens"
)

// newTestDB creates a new in-memory SQLite database for testing.
func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := database.Migrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if err := database.Close(); err != nil {
			t.Errorf("failed to close db: %v", err)
		}
	})
	return database
}

// countingFetcher returns a fixed list and counts calls.
type countingFetcher struct {
	mu    sync.Mutex
	list  []bookmark.Bookmark
	err   error
	calls int
}

func (f *countingFetcher) Fetch(_ context.Context, _ tokens.Credential) ([]bookmark.Bookmark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.list, f.err
}

func (f *countingFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type testEnv struct {
	server   *Server
	db       *db.DB
	store    *tokens.Store
	twitter  *countingFetcher
	linkedin *countingFetcher
}

func day(d int) *time.Time {
	t := time.Date(2025, 3, d, 12, 0, 0, 0, time.UTC)
	return &t
}

// newTestServer creates a Server backed by an in-memory database and stub
// fetchers. Backend POSTs go to backend, which may be nil.
func newTestServer(t *testing.T, backend *httptest.Server) *testEnv {
	t.Helper()
	database := newTestDB(t)
	store := tokens.NewStore(database)
	svc := tokens.NewService(store)

	tw := &countingFetcher{list: []bookmark.Bookmark{
		{ID: "1", Platform: platform.Twitter, Text: "older tweet", Author: bookmark.Author{Name: "Ada", Username: "ada"}, CreatedAt: day(1), URL: "https://x.com/ada/status/1"},
		{ID: "2", Platform: platform.Twitter, Text: "newer tweet", Author: bookmark.Author{Name: "Bob", Username: "bob"}, CreatedAt: day(5), URL: "https://x.com/bob/status/2"},
	}}
	li := &countingFetcher{}

	hc := http.DefaultClient
	if backend != nil {
		hc = backend.Client()
	}

	server, err := newServer(Deps{
		Store:    store,
		Tokens:   svc,
		Listener: tokens.NewListener(store),
		Pipeline: &core.Pipeline{
			Tokens: svc,
			Fetchers: map[platform.Platform]core.Fetcher{
				platform.Twitter:  tw,
				platform.LinkedIn: li,
			},
			Runs: database,
		},
		Settings:     core.Settings{KV: database},
		Sender:       export.NewClient(hc),
		BackendToken: "secret",
		Runs:         database,
	})
	if err != nil {
		t.Fatalf("failed to create test server: %v", err)
	}
	server.now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }

	return &testEnv{server: server, db: database, store: store, twitter: tw, linkedin: li}
}

// captureTwitter stores a complete Twitter credential and waits for it to persist.
func (e *testEnv) captureTwitter() {
	e.store.Update(platform.Twitter, tokens.Credential{CSRFToken: "csrf-1234567890", AuthToken: "Bearer abc", LastUpdated: time.Now()})
	e.store.Wait()
}

func TestNewServer(t *testing.T) {
	t.Run("creates server successfully", func(t *testing.T) {
		env := newTestServer(t, nil)

		if env.server.templates == nil {
			t.Fatal("expected templates to be loaded")
		}
		for _, name := range []string{"index.html", "bookmarks.html", "status.html"} {
			if env.server.templates.Lookup(name) == nil {
				t.Errorf("expected template %s to be loaded", name)
			}
		}
		if env.server.staticFS == nil {
			t.Error("expected staticFS to be set")
		}
	})

	t.Run("serves embedded stylesheet", func(t *testing.T) {
		env := newTestServer(t, nil)
		mux := http.NewServeMux()
		env.server.registerRoutes(mux)

		req := httptest.NewRequest(http.MethodGet, "/static/style.css", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}
		if !strings.Contains(w.Body.String(), ".bookmark") {
			t.Error("expected stylesheet content")
		}
	})

	t.Run("routes unknown paths to 404", func(t *testing.T) {
		env := newTestServer(t, nil)
		mux := http.NewServeMux()
		env.server.registerRoutes(mux)

		req := httptest.NewRequest(http.MethodGet, "/nope", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
		}
	})
}
