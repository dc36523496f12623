package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/thomasjvidal/teste-backend-pleno/internal/repository"
)

// Dependency is a backing service reported by the health check.
type Dependency struct {
	Name string
	DB   repository.DB
}

// Handler serves the endpoints that are not tied to a single resource.
type Handler struct {
	deps        []Dependency
	frontendURL string
}

func New(frontendURL string, deps ...Dependency) *Handler {
	return &Handler{deps: deps, frontendURL: frontendURL}
}

// CORS allows the configured frontend origin. Tokens travel in the
// Authorization header, so cookies are never allowed.
func (h *Handler) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hdr := w.Header()
		hdr.Add("Vary", "Origin")
		if origin := r.Header.Get("Origin"); origin != "" && origin == h.frontendURL {
			hdr.Set("Access-Control-Allow-Origin", origin)
			hdr.Set("Access-Control-Expose-Headers", RequestIDHeader+", Retry-After")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			hdr.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			hdr.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+RequestIDHeader)
			hdr.Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
