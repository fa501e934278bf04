package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type SystemHandler struct {
	DB Pinger
}

func (h *SystemHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.PingContext(ctx); err != nil {
			logger.Error("health: database unreachable", slog.Any("err", err))
			writeJSON(w, http.StatusServiceUnavailable, envelope{"status": "unavailable", "service": "interntrack"})
			return
		}
	}
	writeJSON(w, http.StatusOK, envelope{"status": "ok", "service": "interntrack"})
}

func (h *SystemHandler) VersionHandler(version, buildTime string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, envelope{"version": version, "buildTime": buildTime})
	}
}
