package web

import (
	"embed"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/bookmark"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/export"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/platform"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/tokens"
)

//go:embed templates/*.html static/*.css
var templatesFS embed.FS

// Deps are the collaborators the web adapter drives.
type Deps struct {
	Store    *tokens.Store
	Tokens   *tokens.Service
	Listener *tokens.Listener
	Pipeline *core.Pipeline
	Settings core.Settings
	Sender   *export.Client
	// BackendToken is the bearer credential sent with backend POSTs.
	BackendToken string
	// Runs, if set, supplies the last fetch outcome shown on the index page.
	Runs RunLister
}

type Server struct {
	deps        Deps
	templates   *template.Template
	staticFS    http.FileSystem
	now         func() time.Time
	crossOrigin *http.CrossOriginProtection

	mu    sync.Mutex
	cache map[platform.Platform][]bookmark.Bookmark
}

// StartServer serves the web adapter on addr until the listener fails.
func StartServer(addr string, deps Deps) error {
	ws, err := newServer(deps)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	ws.registerRoutes(mux)

	log.Printf("Starting web server at %s", addr)
	return http.ListenAndServe(addr, mux)
}

func newServer(deps Deps) (*Server, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	staticSub, err := fs.Sub(templatesFS, "static")
	if err != nil {
		return nil, err
	}

	return &Server{
		deps:        deps,
		templates:   tmpl,
		staticFS:    http.FS(staticSub),
		now:         time.Now,
		crossOrigin: http.NewCrossOriginProtection(),
		cache:       make(map[platform.Platform][]bookmark.Bookmark),
	}, nil
}

var templateFuncs = template.FuncMap{
	"date": export.FormatDate,
	"meta": export.Meta,
	"since": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.Local().Format("Jan 2, 2006 15:04")
	},
}

func (ws *Server) registerRoutes(mux *http.ServeMux) {
	ws.registerStaticRoutes(mux)

	mux.HandleFunc("/", ws.handleIndex)
	mux.HandleFunc("/bookmarks", ws.handleBookmarks)
	mux.HandleFunc("/bookmarks/export", ws.handleExport)
	mux.HandleFunc("/bookmarks/send", ws.handleSend)
	mux.HandleFunc("/settings/backend", ws.handleBackendSettings)
	mux.HandleFunc("/api/messages", ws.handleMessage)
	mux.HandleFunc("/api/capture", ws.handleCapture)
}

func (ws *Server) registerStaticRoutes(mux *http.ServeMux) {
	// Serve embedded static assets (CSS, etc)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(ws.staticFS)))
}

func (ws *Server) cached(p platform.Platform) ([]bookmark.Bookmark, bool) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	list, ok := ws.cache[p]
	return list, ok
}

func (ws *Server) remember(p platform.Platform, list []bookmark.Bookmark) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.cache[p] = list
}
