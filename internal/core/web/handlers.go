package web

import (
	"encoding/json"
	"log"
	"mime"
	"net/http"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/platform"
)

// renderTemplate renders a template with the standard HTML content-type header.
// If template execution fails, it logs the error and returns a 500 response.
func (ws *Server) renderTemplate(w http.ResponseWriter, templateName string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := ws.templates.ExecuteTemplate(w, templateName, data); err != nil {
		log.Printf("Failed to execute %s template: %v", templateName, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// requireMethod checks if the request method matches the expected method.
// Returns true if the method matches, false otherwise (and sends 405 response).
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// requireSameOrigin rejects state-changing requests sent by another site.
// Requests without browser origin headers (curl, local tools) pass.
func (ws *Server) requireSameOrigin(w http.ResponseWriter, r *http.Request) bool {
	if err := ws.crossOrigin.Check(r); err != nil {
		log.Printf("Rejected cross-origin %s %s: %v", r.Method, r.URL.Path, err)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return false
	}
	return true
}

// requireJSON insists on an application/json body, which a cross-site form
// cannot send without a CORS preflight.
func requireJSON(w http.ResponseWriter, r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mt != "application/json" {
		http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode JSON response: %v", err)
	}
}

// platformParam reads ?platform=, defaulting to twitter. It writes a 400 and
// returns false for unknown values.
func platformParam(w http.ResponseWriter, r *http.Request) (platform.Platform, bool) {
	raw := r.URL.Query().Get("platform")
	if raw == "" {
		return platform.Twitter, true
	}
	p, err := platform.Parse(raw)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return p, true
}
