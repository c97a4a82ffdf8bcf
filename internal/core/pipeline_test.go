package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/bookmark"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/db"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/platform"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/tokens"
)

type memKV struct {
	mu sync.Mutex
	m  map[string]string
}

func newMemKV() *memKV { return &memKV{m: make(map[string]string)} }

func (k *memKV) Get(_ context.Context, key string) (string, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.m[key]
	return v, ok, nil
}

func (k *memKV) Set(_ context.Context, key, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.m[key] = value
	return nil
}

type stubFetcher struct {
	list []bookmark.Bookmark
	err  error
	got  tokens.Credential
}

func (s *stubFetcher) Fetch(_ context.Context, cred tokens.Credential) ([]bookmark.Bookmark, error) {
	s.got = cred
	return s.list, s.err
}

type runLog struct{ runs []db.FetchRun }

func (r *runLog) SaveFetchRun(_ context.Context, run db.FetchRun) (int64, error) {
	r.runs = append(r.runs, run)
	return int64(len(r.runs)), nil
}

func at(day int) *time.Time {
	t := time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func newPipeline(f Fetcher, runs RunRecorder) (*Pipeline, *tokens.Store) {
	store := tokens.NewStore(newMemKV())
	return &Pipeline{
		Tokens:   tokens.NewService(store),
		Fetchers: map[platform.Platform]Fetcher{platform.Twitter: f},
		Runs:     runs,
	}, store
}

func TestPipelineFetch(t *testing.T) {
	t.Run("sorts and records success", func(t *testing.T) {
		f := &stubFetcher{list: []bookmark.Bookmark{
			{ID: "old", CreatedAt: at(1)},
			{ID: "new", CreatedAt: at(9)},
			{ID: "mid", CreatedAt: at(5)},
		}}
		runs := &runLog{}
		p, store := newPipeline(f, runs)
		cred := tokens.Credential{CSRFToken: "c", AuthToken: "Bearer a"}
		store.Update(platform.Twitter, cred)
		store.Wait()

		got, err := p.Fetch(context.Background(), platform.Twitter, bookmark.NewestFirst)
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if got[0].ID != "new" || got[2].ID != "old" {
			t.Errorf("order = %s, %s, %s", got[0].ID, got[1].ID, got[2].ID)
		}
		if f.got.CSRFToken != "c" {
			t.Errorf("fetcher got credential %+v", f.got)
		}
		if len(runs.runs) != 1 || runs.runs[0].Status != db.RunStatusOK || runs.runs[0].Count != 3 {
			t.Errorf("runs = %+v", runs.runs)
		}
	})

	t.Run("no tokens", func(t *testing.T) {
		runs := &runLog{}
		p, _ := newPipeline(&stubFetcher{}, runs)
		_, err := p.Fetch(context.Background(), platform.Twitter, bookmark.NewestFirst)
		if !errors.Is(err, tokens.ErrNoTokens) {
			t.Fatalf("err = %v, want ErrNoTokens", err)
		}
		if len(runs.runs) != 0 {
			t.Errorf("missing tokens should not record a run, got %d", len(runs.runs))
		}
	})

	t.Run("fetch error recorded", func(t *testing.T) {
		boom := errors.New("API request failed: 500")
		runs := &runLog{}
		p, store := newPipeline(&stubFetcher{err: boom}, runs)
		store.Update(platform.Twitter, tokens.Credential{CSRFToken: "c", AuthToken: "a"})
		store.Wait()

		_, err := p.Fetch(context.Background(), platform.Twitter, bookmark.NewestFirst)
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v, want wrapped fetch error", err)
		}
		if len(runs.runs) != 1 || runs.runs[0].Status != db.RunStatusError || runs.runs[0].Error == "" {
			t.Errorf("runs = %+v", runs.runs)
		}
	})

	t.Run("unconfigured platform", func(t *testing.T) {
		p, _ := newPipeline(&stubFetcher{}, nil)
		_, err := p.Fetch(context.Background(), platform.LinkedIn, bookmark.NewestFirst)
		if !errors.Is(err, platform.ErrUnknownPlatform) {
			t.Fatalf("err = %v, want ErrUnknownPlatform", err)
		}
	})
}

func TestValidateBackendURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://example.com/api/bookmarks", false},
		{"http://localhost:3000/ingest", false},
		{"", true},
		{"ftp://example.com", true},
		{"https://", true},
		{"not a url", true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := ValidateBackendURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateBackendURL(%q) = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidURL) {
				t.Errorf("error should wrap ErrInvalidURL: %v", err)
			}
		})
	}
}

func TestSettingsBackendURL(t *testing.T) {
	ctx := context.Background()
	s := Settings{KV: newMemKV(), DefaultBackendURL: "https://default.example.com"}

	got, err := s.BackendURL(ctx)
	if err != nil || got != "https://default.example.com" {
		t.Fatalf("BackendURL with empty store = %q, %v", got, err)
	}

	if err := s.SetBackendURL(ctx, "ftp://nope"); !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("SetBackendURL(ftp) = %v, want ErrInvalidURL", err)
	}
	if err := s.SetBackendURL(ctx, "  https://mine.example.com/ingest "); err != nil {
		t.Fatalf("SetBackendURL: %v", err)
	}
	got, _ = s.BackendURL(ctx)
	if got != "https://mine.example.com/ingest" {
		t.Errorf("BackendURL = %q", got)
	}
}

func TestNewHTTPClientDefaultTimeout(t *testing.T) {
	if c := NewHTTPClient(0); c.Timeout != DefaultHTTPTimeout {
		t.Errorf("timeout = %v, want %v", c.Timeout, DefaultHTTPTimeout)
	}
	if c := NewHTTPClient(time.Second); c.Timeout != time.Second {
		t.Errorf("timeout = %v, want 1s", c.Timeout)
	}
}
