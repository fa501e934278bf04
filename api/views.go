package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/garnizeh/interntrack/internal/tracker"
	"github.com/garnizeh/interntrack/pkg/models"
	"github.com/garnizeh/interntrack/pkg/repository"
)

// ViewsHandler serves the read models derived from a user's records.
// Nothing here is persisted; every response is recomputed.
type ViewsHandler struct {
	repo repository.InternshipRepo
	now  func() time.Time
}

func NewViewsHandler(repo repository.InternshipRepo) *ViewsHandler {
	return &ViewsHandler{repo: repo, now: time.Now}
}

func (h *ViewsHandler) records(w http.ResponseWriter, r *http.Request) ([]models.Internship, bool) {
	userID, ok := caller(w, r)
	if !ok {
		return nil, false
	}
	list, err := h.repo.ListInternshipsByUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, "Failed to list internships", err)
		return nil, false
	}
	return list, true
}

// tableControls reads the table query parameters. The search term is used
// verbatim. Unparseable numbers fall back to the first page and the default
// page size.
func tableControls(q url.Values) (tracker.Controls, error) {
	get := func(k string) string {
		if v, ok := q[k]; ok && len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	c := tracker.Controls{
		Tab:         tracker.TabCurrent,
		Search:      q.Get("search"),
		Status:      get("status"),
		Page:        1,
		RowsPerPage: tracker.DefaultRowsPerPage,
	}

	ve := models.NewValidationError()
	switch tab := tracker.Tab(strings.ToLower(get("tab"))); tab {
	case "", tracker.TabCurrent:
	case tracker.TabArchived:
		c.Tab = tab
	default:
		ve.Add("tab", "must be current or archived")
	}
	switch s := tracker.DateSort(strings.ToLower(get("sort"))); s {
	case tracker.SortNone, tracker.SortNewest, tracker.SortOldest:
		c.DateSort = s
	default:
		ve.Add("sort", "must be newest or oldest")
	}
	if n, err := strconv.Atoi(get("page")); err == nil {
		c.Page = n
	}
	if n, err := strconv.Atoi(get("rowsPerPage")); err == nil {
		c.RowsPerPage = n
	}
	return c, ve.OrNil()
}

func (h *ViewsHandler) Table(w http.ResponseWriter, r *http.Request) {
	c, err := tableControls(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, "Invalid table controls", err)
		return
	}
	list, ok := h.records(w, r)
	if !ok {
		return
	}

	t := tracker.BuildTable(list, c)
	writeSuccess(w, http.StatusOK, "", envelope{
		"table":              t,
		"tab":                c.Tab,
		"rowsPerPageOptions": tracker.RowsPerPageOptions,
	})
}

// FollowUps lists surfaced reminders. The optional "dismissed" query
// parameter carries ids hidden for the current session only.
func (h *ViewsHandler) FollowUps(w http.ResponseWriter, r *http.Request) {
	list, ok := h.records(w, r)
	if !ok {
		return
	}

	dismissed := map[string]bool{}
	for _, v := range r.URL.Query()["dismissed"] {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				dismissed[id] = true
			}
		}
	}

	f := tracker.ClassifyFollowUps(list, h.now(), dismissed)
	all := f.All()
	writeSuccess(w, http.StatusOK, "", envelope{
		"overdue":   f.Overdue,
		"upcoming":  f.Upcoming,
		"reminders": all,
		"count":     len(all),
	})
}

// Acknowledge handles the "Update" action on an overdue reminder: the record
// is saved back with its follow-up date and status unchanged and returned
// for editing.
func (h *ViewsHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	in, ok := (&InternshipHandler{repo: h.repo, now: h.now}).load(w, r)
	if !ok {
		return
	}

	if err := h.repo.UpdateInternship(r.Context(), in); err != nil {
		writeServiceError(w, r, "Failed to update follow-up", err)
		return
	}
	writeSuccess(w, http.StatusOK, "Follow-up acknowledged", envelope{"internship": in})
}

// Insights aggregates the current records. Calendar boundaries follow the
// IANA zone in the "tz" query parameter, UTC by default.
func (h *ViewsHandler) Insights(w http.ResponseWriter, r *http.Request) {
	loc := time.UTC
	if tz := strings.TrimSpace(r.URL.Query().Get("tz")); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid time zone", map[string]string{"tz": "unknown IANA time zone " + strconv.Quote(tz)})
			return
		}
		loc = l
	}

	list, ok := h.records(w, r)
	if !ok {
		return
	}

	writeSuccess(w, http.StatusOK, "", envelope{
		"insights": tracker.ComputeInsights(list, h.now(), loc),
		"timezone": loc.String(),
	})
}
