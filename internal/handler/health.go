package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const healthTimeout = 2 * time.Second

type healthResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Checks  map[string]string `json:"checks"`
}

// Health pings every dependency; any failure turns the whole response 503.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := healthResponse{Status: "ok", Message: "Contacts API", Checks: make(map[string]string, len(h.deps))}
	status := http.StatusOK
	for _, d := range h.deps {
		if err := d.DB.Ping(ctx); err != nil {
			slog.Warn("health check failed", "dependency", d.Name, "error", err)
			resp.Checks[d.Name] = err.Error()
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[d.Name] = "ok"
	}
	writeJSON(w, status, resp)
}
