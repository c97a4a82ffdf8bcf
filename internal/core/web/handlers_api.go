package web

import (
	"encoding/json"
	"net/http"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/tokens"
)

const maxRequestBody = 1 << 20

// handleMessage answers the {action, platform} message contract.
func (ws *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if !ws.requireSameOrigin(w, r) || !requireJSON(w, r) {
		return
	}

	var msg tokens.Message
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&msg); err != nil {
		writeJSON(w, http.StatusBadRequest, tokens.Response{Error: "invalid message: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ws.deps.Tokens.Handle(r.Context(), msg))
}

// handleCapture feeds one intercepted request to the token listener.
func (ws *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if !ws.requireSameOrigin(w, r) || !requireJSON(w, r) {
		return
	}

	var req captureRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		http.Error(w, "invalid capture payload", http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		http.Error(w, "missing url", http.StatusBadRequest)
		return
	}

	p, captured := ws.deps.Listener.Observe(req.URL, req.Headers)
	writeJSON(w, http.StatusOK, captureResponse{Captured: captured, Platform: string(p)})
}
