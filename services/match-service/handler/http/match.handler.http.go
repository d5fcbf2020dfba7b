// Package httpHandler serves the matcher to the web dashboard.
package httpHandler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/solushipx/logisynapse/services/match-service/matcher"
	"github.com/solushipx/logisynapse/shared/identity"
)

const maxBodyBytes = 64 << 10

// Handler exposes manual search and the recent-search list.
type Handler struct {
	matcher *matcher.Matcher
	logger  *zap.Logger
}

func New(m *matcher.Matcher, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{matcher: m, logger: logger}
}

// Routes registers the endpoints behind the API key middleware.
func (h *Handler) Routes(v identity.Verifier) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/shipments/manual-search", h.manualSearch)
	mux.HandleFunc("GET /api/v1/shipments/recent-searches", h.recentSearches)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return identity.Middleware(v, h.logger, mux)
}

func (h *Handler) manualSearch(w http.ResponseWriter, r *http.Request) {
	var req matcher.SearchRequest
	// an unreadable body is treated as a request without a searchTerm
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		req = matcher.SearchRequest{}
	}
	resp, err := h.matcher.ManualSearch(r.Context(), identity.FromContext(r.Context()), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) recentSearches(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	terms, err := h.matcher.RecentSearches(r.Context(), identity.FromContext(r.Context()), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"terms": terms})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, identity.ErrUnauthenticated) {
		identity.WriteUnauthorized(w, err)
		return
	}
	h.logger.Error("request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
