/*
Copyright © 2025 Katie Mulliken <katie@mulliken.net>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/config"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/db"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/export"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/linkedin"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/platform"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/redis"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/tokens"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/twitter"
	"github.com/spf13/cobra"
)

// kvStore is the durable store behind tokens and settings.
type kvStore interface {
	tokens.KV
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	io.Closer
}

// app holds everything a command needs once config and storage are open.
type app struct {
	cfg      *config.Config
	kv       kvStore
	db       *db.DB // nil when the redis backend is selected
	store    *tokens.Store
	tokens   *tokens.Service
	settings core.Settings
	client   *http.Client
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to read --config: %w", err)
	}
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// openApp loads config, opens the configured store and restores any
// persisted credentials.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a := &app{cfg: cfg, client: core.NewHTTPClient(cfg.HTTP.Timeout)}
	switch cfg.Store.Backend {
	case config.BackendRedis:
		rs, err := redis.NewStore(ctx, redis.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		log.Printf("Using Redis store at %s", cfg.Store.Redis.Addr)
		a.kv = rs
	default:
		database, err := initDB(cfg.DB)
		if err != nil {
			return nil, err
		}
		a.db = database
		a.kv = database
	}

	a.store = tokens.NewStore(a.kv)
	if found, err := a.store.Load(ctx); err != nil {
		log.Printf("Failed to load stored tokens: %v", err)
	} else if found {
		log.Println("Loaded stored tokens")
	}
	a.tokens = tokens.NewService(a.store)
	a.settings = core.Settings{KV: a.kv, DefaultBackendURL: cfg.Backend.URL}
	return a, nil
}

// Close flushes pending token writes and closes the store.
func (a *app) Close() {
	a.store.Wait()
	if err := a.kv.Close(); err != nil {
		log.Printf("Failed to close store: %v", err)
	}
}

func initDB(path string) (*db.DB, error) {
	database, err := db.NewSQLiteDB(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}
	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Println("Database migrated successfully")

	database.RegisterEventListener(db.OnValueWrittenEvent, func(event db.Event) error {
		ev := event.(db.ValueWrittenEvent)
		log.Printf("Stored %s (%d bytes)", ev.Key, ev.Size)
		return nil
	})
	database.RegisterEventListener(db.OnValueDeletedEvent, func(event db.Event) error {
		log.Printf("Deleted %s", event.(db.ValueDeletedEvent).Key)
		return nil
	})
	database.RegisterEventListener(db.OnFetchRunSavedEvent, func(event db.Event) error {
		ev := event.(db.FetchRunSavedEvent)
		log.Printf("Recorded %s fetch run %d: %s", ev.Run.Platform, ev.Run.ID, ev.Run.Status)
		return nil
	})
	return database, nil
}

// pipeline wires both platform fetchers. onPage, if set, receives every
// page's record count.
func (a *app) pipeline(onPage func(page, count int)) *core.Pipeline {
	tw := twitter.NewFetcher(a.client)
	tw.PageSize = a.cfg.Twitter.PageSize
	tw.MaxPages = a.cfg.Twitter.MaxPages
	tw.PageDelay = a.cfg.Twitter.PageDelay
	tw.OnPage = onPage

	li := linkedin.NewFetcher(a.client)
	li.PageSize = a.cfg.LinkedIn.PageSize
	li.MaxPages = a.cfg.LinkedIn.MaxPages
	li.MaxRetries = a.cfg.LinkedIn.MaxRetries
	li.PageDelay = a.cfg.LinkedIn.PageDelay
	li.RetryDelay = a.cfg.LinkedIn.RetryDelay
	li.OnPage = onPage

	p := &core.Pipeline{
		Tokens: a.tokens,
		Fetchers: map[platform.Platform]core.Fetcher{
			platform.Twitter:  tw,
			platform.LinkedIn: li,
		},
	}
	if a.db != nil {
		p.Runs = a.db
	}
	return p
}

func (a *app) sender() *export.Client {
	return export.NewClient(a.client)
}

// platformArg parses args[0], defaulting to twitter.
func platformArg(args []string) (platform.Platform, error) {
	if len(args) == 0 {
		return platform.Twitter, nil
	}
	return platform.Parse(args[0])
}
