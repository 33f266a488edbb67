// Package admin provides the REST endpoints for the "who is logged in"
// operational view over the session-tracking registry.
package admin

import (
	"encoding/json"
	"net/http"

	"github.com/txn2/sessiontrack/pkg/tracker"
)

// Handler serves the admin session-monitoring API.
type Handler struct {
	mux        *http.ServeMux
	registry   *tracker.Registry
	authMiddle func(http.Handler) http.Handler
}

// NewHandler creates the admin API handler. authMiddle may be nil, in
// which case the endpoints are open (development deployments only).
func NewHandler(registry *tracker.Registry, authMiddle func(http.Handler) http.Handler) *Handler {
	h := &Handler{
		mux:        http.NewServeMux(),
		registry:   registry,
		authMiddle: authMiddle,
	}
	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.authMiddle != nil {
		h.authMiddle(h.mux).ServeHTTP(w, r)
		return
	}
	h.mux.ServeHTTP(w, r)
}

// registerRoutes registers all admin API routes.
func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /api/v1/admin/sessions", h.listSessions)
	h.mux.HandleFunc("GET /api/v1/admin/sessions/stats", h.sessionStats)
	h.mux.HandleFunc("DELETE /api/v1/admin/sessions/{id}", h.deleteSession)
}

// listResponse is the response body for the session listing.
type listResponse struct {
	Sessions []tracker.Info `json:"sessions"`
	Count    int            `json:"count"`
}

// listSessions returns a point-in-time snapshot of the registry, ordered
// most-recently-active first.
func (h *Handler) listSessions(w http.ResponseWriter, _ *http.Request) {
	infos := h.registry.Snapshot()
	writeJSON(w, http.StatusOK, listResponse{Sessions: infos, Count: len(infos)})
}

// statsResponse is the response body for the stats endpoint.
type statsResponse struct {
	Total  int                  `json:"total"`
	ByKind map[tracker.Kind]int `json:"by_kind"`
}

// sessionStats summarizes the live registry by session kind.
func (h *Handler) sessionStats(w http.ResponseWriter, _ *http.Request) {
	stats := statsResponse{ByKind: make(map[tracker.Kind]int)}
	for _, info := range h.registry.Snapshot() {
		stats.Total++
		stats.ByKind[info.Kind]++
	}
	writeJSON(w, http.StatusOK, stats)
}

// deleteSession force-removes one session. Removal is idempotent, so an
// unknown id still answers 204.
func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "session id required")
		return
	}
	h.registry.RemoveSession(id)
	w.WriteHeader(http.StatusNoContent)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
