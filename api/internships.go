package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/garnizeh/interntrack/internal/resume"
	"github.com/garnizeh/interntrack/pkg/models"
	"github.com/garnizeh/interntrack/pkg/repository"
)

// maxUpload bounds a multipart request: the resume plus form fields.
const maxUpload = resume.MaxSize + 1<<20

type InternshipHandler struct {
	repo repository.InternshipRepo
	now  func() time.Time
}

func NewInternshipHandler(repo repository.InternshipRepo) *InternshipHandler {
	return &InternshipHandler{repo: repo, now: time.Now}
}

// internshipInput is the editable surface shared by create and patch.
// FollowUpDate stays raw so that null and "" can clear the date.
type internshipInput struct {
	Company           *string         `json:"company"`
	Position          *string         `json:"position"`
	ApplicationDate   *string         `json:"applicationDate"`
	Status            *string         `json:"status"`
	FollowUpDate      json.RawMessage `json:"followUpDate"`
	FollowUpDismissed *bool           `json:"followUpDismissed"`
	Archived          *bool           `json:"archived"`
	Comments          *string         `json:"comments"`
	Links             *[]models.Link  `json:"links"`
	Link              *string         `json:"link"`
}

func (in internshipInput) patch() (models.InternshipPatch, error) {
	var p models.InternshipPatch
	ve := models.NewValidationError()

	if in.Company != nil {
		v := strings.TrimSpace(*in.Company)
		p.Company = &v
	}
	if in.Position != nil {
		v := strings.TrimSpace(*in.Position)
		p.Position = &v
	}
	if in.ApplicationDate != nil {
		d, err := models.ParseDate(*in.ApplicationDate)
		if err != nil {
			ve.Add("applicationDate", err.Error())
		} else {
			p.ApplicationDate = &d
		}
	}
	if in.Status != nil {
		s, ok := models.ParseStatus(*in.Status)
		if !ok {
			ve.Add("status", "must be one of Accepted, Withdrawn, Rejected, Pending, Follow Up")
		}
		p.Status = &s
	}
	if len(in.FollowUpDate) > 0 {
		var raw *string
		if err := json.Unmarshal(in.FollowUpDate, &raw); err != nil {
			ve.Add("followUpDate", "must be a date string or null")
		} else if raw == nil || strings.TrimSpace(*raw) == "" {
			p.ClearFollowUpDate = true
		} else if d, err := models.ParseDate(*raw); err != nil {
			ve.Add("followUpDate", err.Error())
		} else {
			p.FollowUpDate = &d
		}
	}
	p.FollowUpDismissed = in.FollowUpDismissed
	p.Archived = in.Archived
	p.Comments = in.Comments
	if in.Links != nil {
		links := append([]models.Link{}, (*in.Links)...)
		for i := range links {
			links[i].Label = strings.TrimSpace(links[i].Label)
			links[i].URL = strings.TrimSpace(links[i].URL)
		}
		p.Links = &links
	} else if in.Link != nil && strings.TrimSpace(*in.Link) != "" {
		links := []models.Link{{Label: "Job Link", URL: strings.TrimSpace(*in.Link)}}
		p.Links = &links
	}

	return p, ve.OrNil()
}

// inputFromForm reads the multipart form fields used by the upload form.
func inputFromForm(form url.Values) (internshipInput, error) {
	var in internshipInput
	str := func(key string) *string {
		if _, ok := form[key]; !ok {
			return nil
		}
		v := form.Get(key)
		return &v
	}
	boolean := func(key string, dst **bool) error {
		s := str(key)
		if s == nil || *s == "" {
			return nil
		}
		b, err := strconv.ParseBool(*s)
		if err != nil {
			return fmt.Errorf("%s: must be true or false", key)
		}
		*dst = &b
		return nil
	}

	in.Company = str("company")
	in.Position = str("position")
	in.ApplicationDate = str("applicationDate")
	if s := str("status"); s != nil && *s != "" {
		in.Status = s
	}
	in.Comments = str("comments")
	in.Link = str("link")
	if s := str("followUpDate"); s != nil {
		raw, _ := json.Marshal(*s)
		in.FollowUpDate = raw
	}

	ve := models.NewValidationError()
	if err := boolean("archived", &in.Archived); err != nil {
		ve.Add("archived", err.Error())
	}
	if err := boolean("followUpDismissed", &in.FollowUpDismissed); err != nil {
		ve.Add("followUpDismissed", err.Error())
	}
	if s := str("links"); s != nil && *s != "" {
		var links []models.Link
		if err := json.Unmarshal([]byte(*s), &links); err != nil {
			ve.Add("links", "must be a JSON array of {label, url}")
		} else {
			in.Links = &links
		}
	}
	return in, ve.OrNil()
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// parseUpload parses a multipart body and returns its fields and the
// optional resume part.
func parseUpload(w http.ResponseWriter, r *http.Request) (url.Values, *models.Resume, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, resume.ErrTooLarge
		}
		return nil, nil, fmt.Errorf("parse form: %w", err)
	}

	file, header, err := r.FormFile("resume")
	if errors.Is(err, http.ErrMissingFile) {
		return r.MultipartForm.Value, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read resume: %w", err)
	}
	defer file.Close()

	res, err := resume.FromMultipart(file, header)
	if err != nil {
		return nil, nil, err
	}
	return r.MultipartForm.Value, res, nil
}

func writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, resume.ErrTooLarge) || errors.Is(err, resume.ErrContentType) ||
		errors.Is(err, resume.ErrEmpty) || errors.Is(err, resume.ErrUnreadable) {
		writeServiceError(w, r, "Failed to upload file", err)
		return
	}
	writeError(w, http.StatusBadRequest, "Failed to upload file", map[string]string{"resume": err.Error()})
}

// caller returns the authenticated user id or writes 401.
func caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", nil)
	}
	return id, ok
}

// load fetches the {id} internship owned by the caller.
func (h *InternshipHandler) load(w http.ResponseWriter, r *http.Request) (*models.Internship, bool) {
	userID, ok := caller(w, r)
	if !ok {
		return nil, false
	}
	in, err := h.repo.GetInternship(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Internship not found", nil)
			return nil, false
		}
		writeServiceError(w, r, "Failed to load internship", err)
		return nil, false
	}
	return in, true
}

func (h *InternshipHandler) save(w http.ResponseWriter, r *http.Request, in *models.Internship, message string) {
	if err := models.ValidateInternship(in); err != nil {
		writeServiceError(w, r, "Failed to update internship due to validation errors", err)
		return
	}
	if err := h.repo.UpdateInternship(r.Context(), in); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Internship not found", nil)
			return
		}
		writeServiceError(w, r, "Failed to update internship", err)
		return
	}
	writeSuccess(w, http.StatusOK, message, envelope{"internship": in})
}

func (h *InternshipHandler) ListInternships(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}

	list, err := h.repo.ListInternshipsByUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, "Failed to list internships", err)
		return
	}
	if list == nil {
		list = []models.Internship{}
	}

	writeSuccess(w, http.StatusOK, "", envelope{"internships": list, "count": len(list)})
}

// CreateInternship accepts JSON or a multipart form with an optional
// "resume" file part.
func (h *InternshipHandler) CreateInternship(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}

	var (
		input internshipInput
		res   *models.Resume
	)
	if isMultipart(r) {
		form, upload, err := parseUpload(w, r)
		if err != nil {
			writeUploadError(w, r, err)
			return
		}
		if input, err = inputFromForm(form); err != nil {
			writeServiceError(w, r, "Failed to create internship due to validation errors", err)
			return
		}
		res = upload
	} else if !decodeValidated(w, r, schemaInternshipCreate, &input) {
		return
	}

	p, err := input.patch()
	if err != nil {
		writeServiceError(w, r, "Failed to create internship due to validation errors", err)
		return
	}

	in := &models.Internship{
		UserID:          userID,
		ApplicationDate: h.now().UTC(),
		Status:          models.StatusPending,
		Links:           []models.Link{},
	}
	p.Apply(in)
	in.Resume = res

	if err := models.ValidateInternship(in); err != nil {
		writeServiceError(w, r, "Failed to create internship due to validation errors", err)
		return
	}

	if _, err := h.repo.CreateInternship(r.Context(), in); err != nil {
		writeServiceError(w, r, "Failed to create internship", err)
		return
	}

	writeSuccess(w, http.StatusCreated, "Internship created successfully", envelope{"internship": in})
}

func (h *InternshipHandler) GetInternship(w http.ResponseWriter, r *http.Request) {
	in, ok := h.load(w, r)
	if !ok {
		return
	}
	writeSuccess(w, http.StatusOK, "", envelope{"internship": in})
}

// UpdateInternship applies a partial update. Moving the follow-up date
// re-arms a dismissed reminder unless the body sets followUpDismissed.
func (h *InternshipHandler) UpdateInternship(w http.ResponseWriter, r *http.Request) {
	var input internshipInput
	if !decodeValidated(w, r, schemaInternshipPatch, &input) {
		return
	}
	p, err := input.patch()
	if err != nil {
		writeServiceError(w, r, "Failed to update internship due to validation errors", err)
		return
	}
	if p.Empty() {
		writeError(w, http.StatusBadRequest, "No valid fields provided for update", nil)
		return
	}

	in, ok := h.load(w, r)
	if !ok {
		return
	}
	applyFollowUpAware(in, p)
	h.save(w, r, in, "Internship updated successfully")
}

func applyFollowUpAware(in *models.Internship, p models.InternshipPatch) {
	before := in.FollowUpDate
	p.Apply(in)
	if p.FollowUpDismissed == nil && !sameDate(before, in.FollowUpDate) {
		in.FollowUpDismissed = false
	}
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *InternshipHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeValidated(w, r, schemaInternshipStatus, &req) {
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		writeError(w, http.StatusBadRequest, "Status is required", nil)
		return
	}
	status, valid := models.ParseStatus(req.Status)
	if !valid {
		writeError(w, http.StatusBadRequest, "Failed to update status",
			map[string]string{"status": "must be one of Accepted, Withdrawn, Rejected, Pending, Follow Up"})
		return
	}

	in, ok := h.load(w, r)
	if !ok {
		return
	}
	in.Status = status
	h.save(w, r, in, "Status updated successfully")
}

type archiveRequest struct {
	Archived *bool `json:"archived"`
}

// ArchiveInternship sets archived from the body, or toggles it when the
// body is empty or omits the field.
func (h *InternshipHandler) ArchiveInternship(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", nil)
		return
	}
	var req archiveRequest
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request", nil)
			return
		}
	}

	in, ok := h.load(w, r)
	if !ok {
		return
	}
	if req.Archived != nil {
		in.Archived = *req.Archived
	} else {
		in.Archived = !in.Archived
	}

	msg := "Internship restored"
	if in.Archived {
		msg = "Internship archived"
	}
	h.save(w, r, in, msg)
}

func (h *InternshipHandler) DeleteInternship(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}

	if err := h.repo.DeleteInternship(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Internship not found", nil)
			return
		}
		writeServiceError(w, r, "Failed to delete internship", err)
		return
	}

	writeSuccess(w, http.StatusOK, "Internship deleted successfully", nil)
}

// DismissFollowUp hides the reminder without touching status or dates.
func (h *InternshipHandler) DismissFollowUp(w http.ResponseWriter, r *http.Request) {
	in, ok := h.load(w, r)
	if !ok {
		return
	}
	in.FollowUpDismissed = true
	h.save(w, r, in, "Follow-up dismissed successfully")
}

type followUpRequest struct {
	FollowUpDate *string `json:"followUpDate"`
	Status       string  `json:"status"`
}

// UpdateFollowUp sets the follow-up date and/or status; empty values are ignored.
func (h *InternshipHandler) UpdateFollowUp(w http.ResponseWriter, r *http.Request) {
	var req followUpRequest
	if !decodeValidated(w, r, schemaInternshipFollowUp, &req) {
		return
	}

	var p models.InternshipPatch
	ve := models.NewValidationError()
	if req.FollowUpDate != nil && strings.TrimSpace(*req.FollowUpDate) != "" {
		d, err := models.ParseDate(*req.FollowUpDate)
		if err != nil {
			ve.Add("followUpDate", err.Error())
		}
		p.FollowUpDate = &d
	}
	if strings.TrimSpace(req.Status) != "" {
		s, valid := models.ParseStatus(req.Status)
		if !valid {
			ve.Add("status", "must be one of Accepted, Withdrawn, Rejected, Pending, Follow Up")
		}
		p.Status = &s
	}
	if err := ve.OrNil(); err != nil {
		writeServiceError(w, r, "Failed to update follow-up", err)
		return
	}

	in, ok := h.load(w, r)
	if !ok {
		return
	}
	applyFollowUpAware(in, p)
	h.save(w, r, in, "Follow-up updated successfully")
}

// PutResume replaces the resume attachment from a multipart "resume" part.
func (h *InternshipHandler) PutResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	if !isMultipart(r) {
		writeError(w, http.StatusBadRequest, "Failed to upload file", map[string]string{"resume": "multipart/form-data body required"})
		return
	}

	_, res, err := parseUpload(w, r)
	if err != nil {
		writeUploadError(w, r, err)
		return
	}
	if res == nil {
		writeError(w, http.StatusBadRequest, "Failed to upload file", map[string]string{"resume": "file part is required"})
		return
	}

	ctx := r.Context()
	id := mux.Vars(r)["id"]
	if err := h.repo.SetResume(ctx, userID, id, res); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Internship not found", nil)
			return
		}
		writeServiceError(w, r, "Failed to upload file", err)
		return
	}

	in, err := h.repo.GetInternship(ctx, userID, id)
	if err != nil {
		writeServiceError(w, r, "Failed to load internship", err)
		return
	}
	writeSuccess(w, http.StatusOK, "Resume uploaded successfully", envelope{"internship": in})
}

// GetResume streams the stored PDF inline.
func (h *InternshipHandler) GetResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}

	res, err := h.repo.GetResume(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Resume not found", nil)
			return
		}
		writeServiceError(w, r, "Error retrieving resume", err)
		return
	}

	contentType := res.ContentType
	if contentType == "" {
		contentType = resume.ContentType
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": res.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Data); err != nil {
		logger.Error("write resume", slog.Any("err", err))
	}
}
