package api

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/garnizeh/interntrack/pkg/listings"
)

// JobSource fetches the live postings feed.
type JobSource interface {
	Fetch(ctx context.Context) ([]listings.Job, error)
}

type RecommendationsHandler struct {
	source   JobSource
	fallback fs.FS
	now      func() time.Time
}

// NewRecommendationsHandler serves postings from source, or from the sample
// catalogue in fallback when source is nil or fails.
func NewRecommendationsHandler(source JobSource, fallback fs.FS) *RecommendationsHandler {
	return &RecommendationsHandler{source: source, fallback: fallback, now: time.Now}
}

func (h *RecommendationsHandler) jobs(ctx context.Context) ([]listings.Job, bool, error) {
	if h.source != nil {
		jobs, err := h.source.Fetch(ctx)
		if err == nil {
			return jobs, false, nil
		}
		if errors.Is(err, listings.ErrNoAPIKey) {
			logger.Debug("listings: no api key, serving sample catalogue")
		} else {
			logger.Warn("listings: fetch failed, serving sample catalogue", slog.Any("err", err))
		}
	}

	jobs, err := listings.LoadFallback(h.fallback, listings.FallbackPath, h.now())
	return jobs, true, err
}

func splitSkills(raw []string) []string {
	var out []string
	for _, v := range raw {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// Recommend filters postings by the comma separated "skills" and the
// "location" query parameters.
func (h *RecommendationsHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	skills := splitSkills(q["skills"])
	location := strings.TrimSpace(q.Get("location"))

	jobs, fallback, err := h.jobs(r.Context())
	if err != nil {
		writeServiceError(w, r, "Failed to load job recommendations", err)
		return
	}

	rec := listings.Recommend(jobs, skills, location)
	if rec == nil {
		rec = []listings.Job{}
	}

	writeSuccess(w, http.StatusOK, "", envelope{
		"jobs":     rec,
		"count":    len(rec),
		"fallback": fallback,
		"options":  listings.BuildOptions(jobs),
	})
}
