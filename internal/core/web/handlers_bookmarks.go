package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/bookmark"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/db"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/export"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/platform"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/tokens"
)

// historyLimit caps the fetch history table on the index page.
const historyLimit = 10

func (ws *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	views := make([]platformView, 0, len(platform.All))
	for _, p := range platform.All {
		v := platformView{Platform: p, Name: p.DisplayName()}
		if cred, ok := ws.deps.Store.Lookup(p); ok {
			v.Captured = true
			v.CSRF = tokens.Redact(cred.CSRFToken, 10)
			v.LastUpdated = cred.LastUpdated
		}
		if ws.deps.Runs != nil {
			if run, err := ws.deps.Runs.LastFetchRun(r.Context(), string(p)); err == nil {
				v.LastRun = &run
			}
		}
		views = append(views, v)
	}

	var history []db.FetchRun
	if ws.deps.Runs != nil {
		runs, err := ws.deps.Runs.ListFetchRuns(r.Context(), historyLimit)
		if err != nil {
			log.Printf("Failed to list fetch runs: %v", err)
		}
		history = runs
	}

	backendURL, err := ws.deps.Settings.BackendURL(r.Context())
	if err != nil {
		log.Printf("Failed to read backend URL: %v", err)
	}

	ws.renderTemplate(w, "index.html", map[string]any{
		"Platforms":  views,
		"History":    history,
		"BackendURL": backendURL,
	})
}

// loadBookmarks serves the last successful fetch for p unless refresh is set.
func (ws *Server) loadBookmarks(ctx context.Context, p platform.Platform, refresh bool) ([]bookmark.Bookmark, error) {
	if !refresh {
		if list, ok := ws.cached(p); ok {
			return list, nil
		}
	}
	list, err := ws.deps.Pipeline.Fetch(ctx, p, bookmark.NewestFirst)
	if err != nil {
		return nil, err
	}
	ws.remember(p, list)
	return list, nil
}

func (ws *Server) handleBookmarks(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	p, ok := platformParam(w, r)
	if !ok {
		return
	}
	order, err := bookmark.ParseOrder(r.URL.Query().Get("sort"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	view := bookmarksView{
		Platform:  p,
		Name:      p.DisplayName(),
		Order:     order,
		NextOrder: order.Toggle(),
	}

	list, err := ws.loadBookmarks(r.Context(), p, r.URL.Query().Get("refresh") == "1")
	switch {
	case errors.Is(err, tokens.ErrNoTokens):
		view.Status = fmt.Sprintf("No %s tokens captured yet.", p.DisplayName())
		view.Remediation = tokens.Remediation(p)
	case err != nil:
		log.Printf("Failed to fetch %s bookmarks: %v", p, err)
		view.Error = err.Error()
	default:
		view.Bookmarks = bookmark.Sort(list, order)
		view.Status = export.FetchedStatus(len(list), p.DisplayName())
	}

	ws.renderTemplate(w, "bookmarks.html", view)
}

func (ws *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	p, ok := platformParam(w, r)
	if !ok {
		return
	}
	order, err := bookmark.ParseOrder(r.URL.Query().Get("sort"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	list, err := ws.loadBookmarks(r.Context(), p, false)
	if errors.Is(err, tokens.ErrNoTokens) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	data, err := export.Encode(bookmark.Sort(list, order))
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		log.Printf("Failed to encode export: %v", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName(p, ws.now())))
	if _, err := w.Write(data); err != nil {
		log.Printf("Failed to write export: %v", err)
	}
}

func (ws *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if !ws.requireSameOrigin(w, r) {
		return
	}
	p, ok := platformParam(w, r)
	if !ok {
		return
	}

	endpoint, err := ws.deps.Settings.BackendURL(r.Context())
	if err != nil {
		ws.renderTemplate(w, "status.html", statusView{Message: err.Error()})
		return
	}
	if endpoint == "" {
		ws.renderTemplate(w, "status.html", statusView{Message: export.SentStatus(0, export.ErrNoBackendURL)})
		return
	}

	list, err := ws.loadBookmarks(r.Context(), p, false)
	if err != nil {
		ws.renderTemplate(w, "status.html", statusView{Message: err.Error()})
		return
	}

	records := export.Reshape(p, list)
	err = ws.deps.Sender.Send(r.Context(), endpoint, ws.deps.BackendToken, records)
	if err != nil {
		log.Printf("Failed to send %s bookmarks: %v", p, err)
	}
	ws.renderTemplate(w, "status.html", statusView{OK: err == nil, Message: export.SentStatus(len(records), err)})
}

func (ws *Server) handleBackendSettings(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if !ws.requireSameOrigin(w, r) {
		return
	}

	err := ws.deps.Settings.SetBackendURL(r.Context(), r.FormValue("url"))
	if r.Header.Get("HX-Request") != "true" {
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err != nil {
		ws.renderTemplate(w, "status.html", statusView{Message: err.Error()})
		return
	}
	ws.renderTemplate(w, "status.html", statusView{OK: true, Message: "Backend URL saved."})
}
