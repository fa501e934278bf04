package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/garnizeh/interntrack/api"
	"github.com/garnizeh/interntrack/internal/resume/resumetest"
	"github.com/garnizeh/interntrack/pkg/models"
	"github.com/garnizeh/interntrack/pkg/repository/mock"
)

func seedInternship(t *testing.T, m *mock.Mocks, owner, company string, mutate func(in *models.Internship)) *models.Internship {
	t.Helper()
	in := &models.Internship{
		UserID:          owner,
		Company:         company,
		Position:        "Backend Intern",
		ApplicationDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Status:          models.StatusPending,
		Links:           []models.Link{},
	}
	if mutate != nil {
		mutate(in)
	}
	if _, err := m.InternshipRepo.CreateInternship(context.Background(), in); err != nil {
		t.Fatalf("seed internship: %v", err)
	}
	return in
}

type internshipBody struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details"`
	Internship models.Internship `json:"internship"`
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestInternshipHandlers(t *testing.T) {
	tests := []struct {
		name       string
		handler    string
		body       any
		userID     string
		id         string
		prepare    func(t *testing.T, m *mock.Mocks)
		wantStatus int
		check      func(t *testing.T, m *mock.Mocks, res internshipBody, raw []byte)
	}{
		{
			name:    "Create_OK",
			handler: "create",
			userID:  "user-1",
			body: map[string]any{
				"company":         "Acme",
				"position":        "Platform Intern",
				"applicationDate": "2024-05-01",
				"link":            "https://acme.example/jobs/1",
				"user":            "someone-else",
			},
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, m *mock.Mocks, res internshipBody, raw []byte) {
				in := res.Internship
				if in.ID == "" || in.UserID != "user-1" || in.Status != models.StatusPending {
					t.Fatalf("unexpected record: %+v", in)
				}
				if len(in.Links) != 1 || in.Links[0].Label != "Job Link" || in.Links[0].URL != "https://acme.example/jobs/1" {
					t.Fatalf("legacy link not mapped: %+v", in.Links)
				}
				if !in.ApplicationDate.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) {
					t.Fatalf("unexpected application date %v", in.ApplicationDate)
				}
			},
		},
		{
			name:       "Create_StatusCaseFolded",
			handler:    "create",
			userID:     "user-1",
			body:       map[string]any{"company": "Acme", "position": "Intern", "status": "follow up", "followUpDate": "2024-06-01"},
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, m *mock.Mocks, res internshipBody, raw []byte) {
				if res.Internship.Status != models.StatusFollowUp || res.Internship.FollowUpDate == nil {
					t.Fatalf("unexpected record: %+v", res.Internship)
				}
			},
		},
		{
			name:       "Create_EmptyFollowUpDateIsUnset",
			handler:    "create",
			userID:     "user-1",
			body:       map[string]any{"company": "Acme", "position": "Intern", "followUpDate": ""},
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, m *mock.Mocks, res internshipBody, raw []byte) {
				if res.Internship.FollowUpDate != nil {
					t.Fatalf("expected no follow-up date, got %v", res.Internship.FollowUpDate)
				}
			},
		},
		{
			name:       "Create_MissingCompany",
			handler:    "create",
			userID:     "user-1",
			body:       map[string]any{"position": "Intern"},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, m *mock.Mocks, res internshipBody, raw []byte) {
				if _, ok := res.Details["company"]; !ok {
					t.Fatalf("expected company detail, got %v", res.Details)
				}
			},
		},
		{
			name:       "Create_BadStatus",
			handler:    "create",
			userID:     "user-1",
			body:       map[string]any{"company": "Acme", "position": "Intern", "status": "Ghosted"},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, m *mock.Mocks, res internshipBody, raw []byte) {
				if _, ok := res.Details["status"]; !ok {
					t.Fatalf("expected status detail, got %v", res.Details)
				}
			},
		},
		{
			name:       "Create_BadURL",
			handler:    "create",
			userID:     "user-1",
			body:       map[string]any{"company": "Acme", "position": "Intern", "links": []map[string]string{{"label": "Posting", "url": "ftp://acme"}}},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, m *mock.Mocks, res internshipBody, raw []byte) {
				if _, ok := res.Details["links"]; !ok {
					t.Fatalf("expected links detail, got %v", res.Details)
				}
			},
		},
		{
			name:       "Create_BadDate",
			handler:    "create",
			userID:     "user-1",
			body:       map[string]any{"company": "Acme", "position": "Intern", "applicationDate": "yesterday"},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, m *mock.Mocks, res internshipBody, raw []byte) {
				if _, ok := res.Details["applicationDate"]; !ok {
					t.Fatalf("expected applicationDate detail, got %v", res.Details)
				}
			},
		},
		{
			name:       "Create_UnknownField",
			handler:    "create",
			userID:     "user-1",
			body:       map[string]any{"company": "Acme", "position": "Intern", "salary": 10},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Create_WrongType",
			handler:    "create",
			userID:     "user-1",
			body:       map[string]any{"company": 42, "position": "Intern"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Create_Unauthenticated",
			handler:    "create",
			body:       map[string]any{"company": "Acme", "position": "Intern"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:    "List_OnlyOwn",
			handler: "list",
			userID:  "user-1",
			prepare: func(t *testing.T, m *mock.Mocks) {
				seedInternship(t, m, "user-1", "Acme", nil)
				seedInternship(t, m, "user-2", "Globex", nil)
				seedInternship(t, m, "user-1", "Initech", nil)
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, m *mock.Mocks, res internshipBody, raw []byte) {
				var body struct {
					Internships []models.Internship `json:"internships"`
					Count       int                 `json:"count"`
				}
				decode(t, raw, &body)
				if body.Count != 2 || body.Internships[0].Company != "Acme" || body.Internships[1].Company != "Initech" {
					t.Fatalf("unexpected list: %s", string(raw))
				}
			},
		},
		{
			name:       "List_EmptyIsArray",
			handler:    "list",
			userID:     "user-9",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, m *mock.Mocks, res internshipBody, raw []byte) {
				if !bytes.Contains(raw, []byte(`"internships":[]`)) {
					t.Fatalf("expected empty array: %s", string(raw))
				}
			},
		},
		{
			name:    "Get_Own",
			handler: "get",
			userID:  "user-1",
			id:      "int-1",
			prepare: func(t *testing.T, m *mock.Mocks) {
				seedInternship(t, m, "user-1", "Acme", nil)
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, m *mock.Mocks, res internshipBody, raw []byte) {
				if res.Internship.Company != "Acme" {
					t.Fatalf("unexpected record: %+v", res.Internship)
				}
			},
		},
		{
			name:    "Get_ForeignIsNotFound",
			handler: "get",
			userID:  "user-2",
			id:      "int-1",
			prepare: func(t *testing.T, m *mock.Mocks) {
				seedInternship(t, m, "user-1", "Acme", nil)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:    "Patch_Fields",
			handler: "patch",
			userID:  "user-1",
			id:      "int-1",
			body:    map[string]any{"company": " Globex ", "comments": "called recruiter"},
			prepare: func(t *testing.T, m *mock.Mocks) {
				seedInternship(t, m, "user-1", "Acme", nil)
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, m *mock.Mocks, res internshipBody, raw []byte) {
				stored := m.InternshipRepo.Records["int-1"]
				if stored.Company != "Globex" || stored.Comments != "called recruiter" || stored.Position != "Backend Intern" {
					t.Fatalf("unexpected stored record: %+v", stored)
				}
			},
		},
		{
			name:    "Patch_NewFollowUpDateRearmsReminder",
			handler: "patch",
			userID:  "user-1",
			id:      "int-1",
			body:    map[string]any{"followUpDate": "2024-07-01"},
			prepare: func(t *testing.T, m *mock.Mocks) {
				seedInternship(t, m, "user-1", "Acme", func(in *models.Internship) {
					in.Status = models.StatusFollowUp
					in.FollowUpDate = datePtr(2024, 6, 1)
					in.FollowUpDismissed = true
				})
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, m *mock.Mocks, res internshipBody, raw []byte) {
				stored := m.InternshipRepo.Records["int-1"]
				if stored.FollowUpDismissed || !stored.FollowUpDate.Equal(*datePtr(2024, 7, 1)) {
					t.Fatalf("unexpected stored record: %+v", stored)
				}
			},
		},
		{
			name:    "Patch_SameFollowUpDateKeepsDismissal",
			handler: "patch",
			userID:  "user-1",
			id:      "int-1",
			body:    map[string]any{"followUpDate": "2024-06-01", "comments": "x"},
			prepare: func(t *testing.T, m *mock.Mocks) {
				seedInternship(t, m, "user-1", "Acme", func(in *models.Internship) {
					in.Status = models.StatusFollowUp
					in.FollowUpDate = datePtr(2024, 6, 1)
					in.FollowUpDismissed = true
				})
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, m *mock.Mocks, res internshipBody, raw []byte) {
				if !m.InternshipRepo.Records["int-1"].FollowUpDismissed {
					t.Fatalf("dismissal should survive an unchanged date")
				}
			},
		},
		{
			name:    "Patch_NullClearsFollowUpDate",
			handler: "patch",
			userID:  "user-1",
			id:      "int-1",
			body:    `{"followUpDate": null}`,
			prepare: func(t *testing.T, m *mock.Mocks) {
				seedInternship(t, m, "user-1", "Acme", func(in *models.Internship) {
					in.FollowUpDate = datePtr(2024, 6, 1)
				})
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, m *mock.Mocks, res internshipBody, raw []byte) {
				if m.InternshipRepo.Records["int-1"].FollowUpDate != nil {
					t.Fatalf("expected follow-up date cleared")
				}
			},
		},
		{
			name:       "Patch_EmptyBody",
			handler:    "patch",
			userID:     "user-1",
			id:         "int-1",
			body:       map[string]any{},
			prepare:    func(t *testing.T, m *mock.Mocks) { seedInternship(t, m, "user-1", "Acme", nil) },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Patch_BlankCompanyRejected",
			handler:    "patch",
			userID:     "user-1",
			id:         "int-1",
			body:       map[string]any{"company": "  "},
			prepare:    func(t *testing.T, m *mock.Mocks) { seedInternship(t, m, "user-1", "Acme", nil) },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Patch_Foreign",
			handler:    "patch",
			userID:     "user-2",
			id:         "int-1",
			body:       map[string]any{"company": "Globex"},
			prepare:    func(t *testing.T, m *mock.Mocks) { seedInternship(t, m, "user-1", "Acme", nil) },
			wantStatus: http.StatusNotFound,
		},
		{
			name:    "Status_AnyToAny",
			handler: "status",
			userID:  "user-1",
			id:      "int-1",
			body:    map[string]any{"status": "Pending"},
			prepare: func(t *testing.T, m *mock.Mocks) {
				seedInternship(t, m, "user-1", "Acme", func(in *models.Internship) { in.Status = models.StatusRejected })
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, m *mock.Mocks, res internshipBody, raw []byte) {
				if res.Message != "Status updated successfully" || m.InternshipRepo.Records["int-1"].Status != models.StatusPending {
					t.Fatalf("unexpected result: %s", string(raw))
				}
			},
		},
		{
			name:       "Status_Missing",
			handler:    "status",
			userID:     "user-1",
			id:         "int-1",
			body:       map[string]any{},
			prepare:    func(t *testing.T, m *mock.Mocks) { seedInternship(t, m, "user-1", "Acme", nil) },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Status_Invalid",
			handler:    "status",
			userID:     "user-1",
			id:         "int-1",
			body:       map[string]any{"status": "Ghosted"},
			prepare:    func(t *testing.T, m *mock.Mocks) { seedInternship(t, m, "user-1", "Acme", nil) },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Archive_Toggle",
			handler:    "archive",
			userID:     "user-1",
			id:         "int-1",
			prepare:    func(t *testing.T, m *mock.Mocks) { seedInternship(t, m, "user-1", "Acme", nil) },
			wantStatus: http.StatusOK,
			check: func(t *testing.T, m *mock.Mocks, res internshipBody, raw []byte) {
				if !res.Internship.Archived || res.Message != "Internship archived" {
					t.Fatalf("unexpected result: %s", string(raw))
				}
			},
		},
		{
			name:    "Archive_ExplicitRestore",
			handler: "archive",
			userID:  "user-1",
			id:      "int-1",
			body:    map[string]any{"archived": false},
			prepare: func(t *testing.T, m *mock.Mocks) {
				seedInternship(t, m, "user-1", "Acme", func(in *models.Internship) { in.Archived = true })
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, m *mock.Mocks, res internshipBody, raw []byte) {
				if m.InternshipRepo.Records["int-1"].Archived {
					t.Fatalf("expected restored record")
				}
			},
		},
		{
			name:    "Delete_OK",
			handler: "delete",
			userID:  "user-1",
			id:      "int-1",
			prepare: func(t *testing.T, m *mock.Mocks) {
				seedInternship(t, m, "user-1", "Acme", nil)
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, m *mock.Mocks, res internshipBody, raw []byte) {
				if _, ok := m.InternshipRepo.Records["int-1"]; ok {
					t.Fatalf("record still present")
				}
			},
		},
		{
			name:       "Delete_Unknown",
			handler:    "delete",
			userID:     "user-1",
			id:         "int-404",
			wantStatus: http.StatusNotFound,
		},
		{
			name:    "Dismiss_KeepsStatus",
			handler: "dismiss",
			userID:  "user-1",
			id:      "int-1",
			prepare: func(t *testing.T, m *mock.Mocks) {
				seedInternship(t, m, "user-1", "Acme", func(in *models.Internship) {
					in.Status = models.StatusFollowUp
					in.FollowUpDate = datePtr(2024, 6, 1)
				})
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, m *mock.Mocks, res internshipBody, raw []byte) {
				stored := m.InternshipRepo.Records["int-1"]
				if !stored.FollowUpDismissed || stored.Status != models.StatusFollowUp || stored.FollowUpDate == nil {
					t.Fatalf("unexpected stored record: %+v", stored)
				}
			},
		},
		{
			name:    "FollowUp_Reschedule",
			handler: "followup",
			userID:  "user-1",
			id:      "int-1",
			body:    map[string]any{"followUpDate": "2024-08-15", "status": "Follow Up"},
			prepare: func(t *testing.T, m *mock.Mocks) {
				seedInternship(t, m, "user-1", "Acme", func(in *models.Internship) {
					in.FollowUpDate = datePtr(2024, 6, 1)
					in.FollowUpDismissed = true
				})
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, m *mock.Mocks, res internshipBody, raw []byte) {
				stored := m.InternshipRepo.Records["int-1"]
				if stored.Status != models.StatusFollowUp || !stored.FollowUpDate.Equal(*datePtr(2024, 8, 15)) || stored.FollowUpDismissed {
					t.Fatalf("unexpected stored record: %+v", stored)
				}
			},
		},
		{
			name:       "FollowUp_BadDate",
			handler:    "followup",
			userID:     "user-1",
			id:         "int-1",
			body:       map[string]any{"followUpDate": "soon"},
			prepare:    func(t *testing.T, m *mock.Mocks) { seedInternship(t, m, "user-1", "Acme", nil) },
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mocks := mock.NewMocks()
			if tt.prepare != nil {
				tt.prepare(t, mocks)
			}
			handler := api.NewInternshipHandler(mocks.InternshipRepo)

			var vars map[string]string
			if tt.id != "" {
				vars = map[string]string{"id": tt.id}
			}
			req := as(newRequest(t, http.MethodPost, "/", tt.body), tt.userID, vars)
			w := httptest.NewRecorder()

			switch tt.handler {
			case "create":
				handler.CreateInternship(w, req)
			case "list":
				handler.ListInternships(w, req)
			case "get":
				handler.GetInternship(w, req)
			case "patch":
				handler.UpdateInternship(w, req)
			case "status":
				handler.UpdateStatus(w, req)
			case "archive":
				handler.ArchiveInternship(w, req)
			case "delete":
				handler.DeleteInternship(w, req)
			case "dismiss":
				handler.DismissFollowUp(w, req)
			case "followup":
				handler.UpdateFollowUp(w, req)
			default:
				t.Fatalf("unknown handler %s", tt.handler)
			}

			res := w.Result()
			defer res.Body.Close()
			data, _ := io.ReadAll(res.Body)
			if res.StatusCode != tt.wantStatus {
				t.Fatalf("%s: expected status %d got %d body=%s", tt.name, tt.wantStatus, res.StatusCode, string(data))
			}
			if tt.check != nil {
				var body internshipBody
				decode(t, data, &body)
				tt.check(t, mocks, body, data)
			}
		})
	}
}

func TestCreateInternship_Multipart(t *testing.T) {
	pdf := resumetest.PDF(1)

	tests := []struct {
		name       string
		fields     map[string]string
		file       *filePart
		wantStatus int
		wantResume bool
	}{
		{
			name:       "WithResume",
			fields:     map[string]string{"company": "Acme", "position": "Intern", "link": "https://acme.example/j", "followUpDate": ""},
			file:       &filePart{name: "cv.pdf", contentType: "application/pdf", data: pdf},
			wantStatus: http.StatusCreated,
			wantResume: true,
		},
		{
			name:       "WithoutResume",
			fields:     map[string]string{"company": "Acme", "position": "Intern", "archived": "true"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "NotPDF",
			fields:     map[string]string{"company": "Acme", "position": "Intern"},
			file:       &filePart{name: "cv.png", contentType: "image/png", data: []byte("\x89PNG....")},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "PDFTypeButGarbage",
			fields:     map[string]string{"company": "Acme", "position": "Intern"},
			file:       &filePart{name: "cv.pdf", contentType: "application/pdf", data: []byte("plain text")},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "BadBoolean",
			fields:     map[string]string{"company": "Acme", "position": "Intern", "archived": "maybe"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "MissingPosition",
			fields:     map[string]string{"company": "Acme"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mocks := mock.NewMocks()
			handler := api.NewInternshipHandler(mocks.InternshipRepo)

			body, ct := multipartBody(t, tt.fields, tt.file)
			req := httptest.NewRequest(http.MethodPost, "/v1/internships", body)
			req.Header.Set("Content-Type", ct)
			req = as(req, "user-1", nil)
			w := httptest.NewRecorder()

			handler.CreateInternship(w, req)

			res := w.Result()
			defer res.Body.Close()
			data, _ := io.ReadAll(res.Body)
			if res.StatusCode != tt.wantStatus {
				t.Fatalf("expected status %d got %d body=%s", tt.wantStatus, res.StatusCode, string(data))
			}
			if tt.wantStatus != http.StatusCreated {
				return
			}

			var out internshipBody
			decode(t, data, &out)
			stored, ok := mocks.InternshipRepo.Resumes[out.Internship.ID]
			if ok != tt.wantResume {
				t.Fatalf("resume stored=%v want %v", ok, tt.wantResume)
			}
			if tt.wantResume {
				if !bytes.Equal(stored.Data, pdf) || out.Internship.Resume == nil || out.Internship.Resume.FileName != "cv.pdf" {
					t.Fatalf("unexpected resume: %+v", out.Internship.Resume)
				}
				if bytes.Contains(data, pdf[:8]) {
					t.Fatalf("resume bytes leaked into JSON")
				}
			}
		})
	}
}

func TestResumeHandlers(t *testing.T) {
	mocks := mock.NewMocks()
	seedInternship(t, mocks, "user-1", "Acme", nil)
	handler := api.NewInternshipHandler(mocks.InternshipRepo)
	vars := map[string]string{"id": "int-1"}

	// nothing stored yet
	w := httptest.NewRecorder()
	handler.GetResume(w, as(httptest.NewRequest(http.MethodGet, "/", nil), "user-1", vars))
	if w.Result().StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 before upload, got %d", w.Result().StatusCode)
	}

	// JSON body is not an upload
	w = httptest.NewRecorder()
	handler.PutResume(w, as(newRequest(t, http.MethodPut, "/", map[string]string{"resume": "x"}), "user-1", vars))
	if w.Result().StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for JSON body, got %d", w.Result().StatusCode)
	}

	// multipart without the file part
	body, ct := multipartBody(t, map[string]string{"note": "x"}, nil)
	req := httptest.NewRequest(http.MethodPut, "/", body)
	req.Header.Set("Content-Type", ct)
	w = httptest.NewRecorder()
	handler.PutResume(w, as(req, "user-1", vars))
	if w.Result().StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without file, got %d", w.Result().StatusCode)
	}

	pdf := resumetest.PDF(2)
	body, ct = multipartBody(t, nil, &filePart{name: "jane cv.pdf", contentType: "application/pdf", data: pdf})
	req = httptest.NewRequest(http.MethodPut, "/", body)
	req.Header.Set("Content-Type", ct)
	w = httptest.NewRecorder()
	handler.PutResume(w, as(req, "user-1", vars))
	if w.Result().StatusCode != http.StatusOK {
		data, _ := io.ReadAll(w.Result().Body)
		t.Fatalf("upload: expected 200 got %d body=%s", w.Result().StatusCode, string(data))
	}

	// foreign owner cannot upload
	body, ct = multipartBody(t, nil, &filePart{name: "x.pdf", contentType: "application/pdf", data: pdf})
	req = httptest.NewRequest(http.MethodPut, "/", body)
	req.Header.Set("Content-Type", ct)
	w = httptest.NewRecorder()
	handler.PutResume(w, as(req, "user-2", vars))
	if w.Result().StatusCode != http.StatusNotFound {
		t.Fatalf("foreign upload: expected 404 got %d", w.Result().StatusCode)
	}

	w = httptest.NewRecorder()
	handler.GetResume(w, as(httptest.NewRequest(http.MethodGet, "/", nil), "user-1", vars))
	res := w.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("download: expected 200 got %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := res.Header.Get("Content-Disposition"); !strings.HasPrefix(cd, "inline") || !strings.Contains(cd, "jane cv.pdf") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	data, _ := io.ReadAll(res.Body)
	if !bytes.Equal(data, pdf) {
		t.Fatalf("downloaded bytes differ")
	}

	// a record listing carries metadata only
	w = httptest.NewRecorder()
	handler.GetInternship(w, as(httptest.NewRequest(http.MethodGet, "/", nil), "user-1", vars))
	var out struct {
		Internship json.RawMessage `json:"internship"`
	}
	decode(t, w.Body.Bytes(), &out)
	if !bytes.Contains(out.Internship, []byte(`"fileName":"jane cv.pdf"`)) {
		t.Fatalf("expected resume metadata, got %s", string(out.Internship))
	}
}
