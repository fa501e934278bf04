package sqlite_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	dbfs "github.com/garnizeh/interntrack/db"
	dbpkg "github.com/garnizeh/interntrack/internal/db"
	sqlite "github.com/garnizeh/interntrack/internal/repository/sqlite"
	"github.com/garnizeh/interntrack/pkg/models"
)

func setupRepo(t *testing.T) (*sqlite.SQLiteRepo, func()) {
	t.Helper()
	ctx := context.Background()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	d, err := dbpkg.New(ctx, dsn, nil)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations); err != nil {
		d.Close()
		t.Fatalf("failed to migrate: %v", err)
	}

	repo := sqlite.New(d, nil)
	return repo, func() { d.Close() }
}

func mustUser(t *testing.T, repo *sqlite.SQLiteRepo, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", PasswordHash: "hash"}
	if _, err := repo.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%s): %v", name, err)
	}
	return u
}

func TestUserCRUD(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := repo.CreateUser(ctx, nil); err == nil {
		t.Fatalf("expected error when creating nil user")
	}

	if _, err := repo.GetUserByID(ctx, "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}

	u := &models.User{Username: "alice", Email: "  Alice@Example.COM ", PasswordHash: "hash"}
	id, err := repo.CreateUser(ctx, u)
	if err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
	if id == "" || u.ID != id {
		t.Fatalf("expected id to be assigned, got %q / %q", id, u.ID)
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", u.Email)
	}

	got, err := repo.GetUserByEmail(ctx, "ALICE@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail error: %v", err)
	}
	if got.ID != id || got.Username != "alice" || got.PasswordHash != "hash" {
		t.Fatalf("unexpected user: %#v", got)
	}

	got, err = repo.GetUserByUsername(ctx, "alice")
	if err != nil || got.ID != id {
		t.Fatalf("GetUserByUsername: %#v, %v", got, err)
	}

	// duplicate username and duplicate email both conflict
	if _, err := repo.CreateUser(ctx, &models.User{Username: "alice", Email: "other@example.com", PasswordHash: "h"}); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate username, got %v", err)
	}
	if _, err := repo.CreateUser(ctx, &models.User{Username: "alice2", Email: "alice@example.com", PasswordHash: "h"}); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate email, got %v", err)
	}

	got.Username = "alice_b"
	got.PasswordHash = "newhash"
	if err := repo.UpdateUser(ctx, got); err != nil {
		t.Fatalf("UpdateUser error: %v", err)
	}
	again, err := repo.GetUserByID(ctx, id)
	if err != nil {
		t.Fatalf("GetUserByID error: %v", err)
	}
	if again.Username != "alice_b" || again.PasswordHash != "newhash" {
		t.Fatalf("update not persisted: %#v", again)
	}

	if err := repo.UpdateUser(ctx, &models.User{ID: "missing", Username: "x", Email: "x@example.com"}); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update of missing user, got %v", err)
	}
}

func TestDeleteUser_RemovesInternships(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	alice := mustUser(t, repo, "alice")
	bob := mustUser(t, repo, "bob")

	for _, owner := range []string{alice.ID, alice.ID, bob.ID} {
		in := &models.Internship{UserID: owner, Company: "Acme", Position: "Intern", ApplicationDate: time.Now(), Status: models.StatusPending,
			Links: []models.Link{{Label: "Job Link", URL: "https://acme.example/jobs/1"}}}
		if _, err := repo.CreateInternship(ctx, in); err != nil {
			t.Fatalf("CreateInternship: %v", err)
		}
	}

	if err := repo.DeleteUser(ctx, alice.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := repo.GetUserByID(ctx, alice.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected deleted user to be gone, got %v", err)
	}

	list, err := repo.ListInternshipsByUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListInternshipsByUser: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no internships for deleted user, got %d", len(list))
	}
	list, err = repo.ListInternshipsByUser(ctx, bob.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected bob to keep 1 internship, got %d (%v)", len(list), err)
	}

	if err := repo.DeleteUser(ctx, alice.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestInternshipCRUD(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	alice := mustUser(t, repo, "alice")
	bob := mustUser(t, repo, "bob")

	if _, err := repo.CreateInternship(ctx, nil); err == nil {
		t.Fatalf("expected error when creating nil internship")
	}

	applied := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	follow := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	in := &models.Internship{
		UserID:          alice.ID,
		Company:         "Grab",
		Position:        "Backend Intern",
		ApplicationDate: applied,
		Status:          models.StatusPending,
		FollowUpDate:    &follow,
		Comments:        "referral from Jane",
		Links: []models.Link{
			{Label: "Job Link", URL: "https://grab.careers/1"},
			{Label: "Portal", URL: "https://portal.grab.com"},
		},
	}
	id, err := repo.CreateInternship(ctx, in)
	if err != nil {
		t.Fatalf("CreateInternship: %v", err)
	}
	if in.ID != id || in.Created == 0 || in.Updated != in.Created {
		t.Fatalf("expected timestamps and id assigned: %#v", in)
	}

	got, err := repo.GetInternship(ctx, alice.ID, id)
	if err != nil {
		t.Fatalf("GetInternship: %v", err)
	}
	if got.Company != "Grab" || got.Status != models.StatusPending || got.Comments != "referral from Jane" {
		t.Fatalf("unexpected record: %#v", got)
	}
	if !got.ApplicationDate.Equal(applied) {
		t.Fatalf("application date mismatch: %v", got.ApplicationDate)
	}
	if got.FollowUpDate == nil || !got.FollowUpDate.Equal(follow) {
		t.Fatalf("follow-up date mismatch: %v", got.FollowUpDate)
	}
	if len(got.Links) != 2 || got.Links[0].Label != "Job Link" || got.Links[1].URL != "https://portal.grab.com" {
		t.Fatalf("links not preserved in order: %#v", got.Links)
	}
	if got.Resume != nil {
		t.Fatalf("expected no resume, got %#v", got.Resume)
	}

	// other users cannot see the record
	if _, err := repo.GetInternship(ctx, bob.ID, id); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
	}

	got.Status = models.StatusFollowUp
	got.FollowUpDate = nil
	got.Archived = true
	got.Links = []models.Link{{Label: "Offer", URL: "https://grab.careers/offer"}}
	if err := repo.UpdateInternship(ctx, got); err != nil {
		t.Fatalf("UpdateInternship: %v", err)
	}
	updated, err := repo.GetInternship(ctx, alice.ID, id)
	if err != nil {
		t.Fatalf("GetInternship after update: %v", err)
	}
	if updated.Status != models.StatusFollowUp || updated.FollowUpDate != nil || !updated.Archived {
		t.Fatalf("update not persisted: %#v", updated)
	}
	if len(updated.Links) != 1 || updated.Links[0].Label != "Offer" {
		t.Fatalf("links not replaced: %#v", updated.Links)
	}

	foreign := *updated
	foreign.UserID = bob.ID
	if err := repo.UpdateInternship(ctx, &foreign); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating foreign record, got %v", err)
	}

	if err := repo.DeleteInternship(ctx, bob.ID, id); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting foreign record, got %v", err)
	}
	if err := repo.DeleteInternship(ctx, alice.ID, id); err != nil {
		t.Fatalf("DeleteInternship: %v", err)
	}
	if _, err := repo.GetInternship(ctx, alice.ID, id); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestInternshipInvalidStatusRejected(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	alice := mustUser(t, repo, "alice")
	in := &models.Internship{UserID: alice.ID, Company: "Acme", Position: "Intern", ApplicationDate: time.Now(), Status: "Ghosted"}
	if _, err := repo.CreateInternship(ctx, in); err == nil {
		t.Fatalf("expected check constraint to reject unknown status")
	}
}

func TestListInternshipsByUser(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	alice := mustUser(t, repo, "alice")
	bob := mustUser(t, repo, "bob")

	companies := []string{"Grab", "Shopee", "Sea"}
	for i, c := range companies {
		in := &models.Internship{UserID: alice.ID, Company: c, Position: "Intern", ApplicationDate: time.Now(), Status: models.StatusPending}
		if i == 1 {
			in.Links = []models.Link{{Label: "Job Link", URL: "https://shopee.example"}}
		}
		if _, err := repo.CreateInternship(ctx, in); err != nil {
			t.Fatalf("CreateInternship: %v", err)
		}
	}
	if _, err := repo.CreateInternship(ctx, &models.Internship{UserID: bob.ID, Company: "Other", Position: "Intern", ApplicationDate: time.Now(), Status: models.StatusPending}); err != nil {
		t.Fatalf("CreateInternship: %v", err)
	}

	list, err := repo.ListInternshipsByUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListInternshipsByUser: %v", err)
	}
	if len(list) != len(companies) {
		t.Fatalf("expected %d records, got %d", len(companies), len(list))
	}
	for i, c := range companies {
		if list[i].Company != c {
			t.Fatalf("expected creation order, index %d got %s want %s", i, list[i].Company, c)
		}
		if list[i].Links == nil {
			t.Fatalf("expected non-nil links slice at %d", i)
		}
	}
	if len(list[1].Links) != 1 || len(list[0].Links) != 0 {
		t.Fatalf("links attached to wrong record: %#v", list)
	}

	n, err := repo.DeleteInternshipsByUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("DeleteInternshipsByUser: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 deleted, got %d", n)
	}
	list, err = repo.ListInternshipsByUser(ctx, bob.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("bob's record should survive: %d, %v", len(list), err)
	}
}

func TestResumeRoundTrip(t *testing.T) {
	repo, cleanup := setupRepo(t)
	defer cleanup()
	ctx := context.Background()

	alice := mustUser(t, repo, "alice")
	in := &models.Internship{UserID: alice.ID, Company: "Acme", Position: "Intern", ApplicationDate: time.Now(), Status: models.StatusPending}
	id, err := repo.CreateInternship(ctx, in)
	if err != nil {
		t.Fatalf("CreateInternship: %v", err)
	}

	if _, err := repo.GetResume(ctx, alice.ID, id); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before upload, got %v", err)
	}

	data := []byte("%PDF-1.4 fake body")
	if err := repo.SetResume(ctx, alice.ID, id, &models.Resume{Data: data, ContentType: "application/pdf", FileName: "cv.pdf"}); err != nil {
		t.Fatalf("SetResume: %v", err)
	}
	if err := repo.SetResume(ctx, "someone-else", id, &models.Resume{Data: data}); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
	}

	res, err := repo.GetResume(ctx, alice.ID, id)
	if err != nil {
		t.Fatalf("GetResume: %v", err)
	}
	if string(res.Data) != string(data) || res.FileName != "cv.pdf" || res.ContentType != "application/pdf" || res.Size != int64(len(data)) {
		t.Fatalf("unexpected resume: %#v", res)
	}

	// record metadata carries resume info without the bytes
	got, err := repo.GetInternship(ctx, alice.ID, id)
	if err != nil {
		t.Fatalf("GetInternship: %v", err)
	}
	if got.Resume == nil || got.Resume.Size != int64(len(data)) || got.Resume.Data != nil {
		t.Fatalf("unexpected resume metadata: %#v", got.Resume)
	}
}
