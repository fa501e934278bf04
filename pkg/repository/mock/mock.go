package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/garnizeh/interntrack/pkg/models"
)

// Test helpers and mocks
type Mocks struct {
	UserRepo       *mockUserRepo
	InternshipRepo *mockInternshipRepo
}

func NewMocks() *Mocks {
	return &Mocks{
		UserRepo:       &mockUserRepo{Users: map[string]*models.User{}},
		InternshipRepo: &mockInternshipRepo{Records: map[string]*models.Internship{}, Resumes: map[string]*models.Resume{}},
	}
}

type mockUserRepo struct {
	mu        sync.Mutex
	seq       int
	Users     map[string]*models.User
	CreateErr error
	GetErr    error
	UpdateErr error
	DeleteErr error
}

func (m *mockUserRepo) CreateUser(ctx context.Context, u *models.User) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	email := models.NormalizeEmail(u.Email)
	for _, existing := range m.Users {
		if existing.Username == u.Username || existing.Email == email {
			return "", fmt.Errorf("create user: %w", models.ErrConflict)
		}
	}
	m.seq++
	u.ID = fmt.Sprintf("user-%d", m.seq)
	u.Email = email
	cp := *u
	m.Users[u.ID] = &cp
	return u.ID, nil
}

func (m *mockUserRepo) find(match func(*models.User) bool, key string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	for _, u := range m.Users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", key, models.ErrNotFound)
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.ID == id }, id)
}

func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	return m.find(func(u *models.User) bool { return u.Email == email }, email)
}

func (m *mockUserRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.find(func(u *models.User) bool { return u.Username == username }, username)
}

func (m *mockUserRepo) UpdateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	if _, ok := m.Users[u.ID]; !ok {
		return fmt.Errorf("user %s: %w", u.ID, models.ErrNotFound)
	}
	email := models.NormalizeEmail(u.Email)
	for id, existing := range m.Users {
		if id != u.ID && (existing.Username == u.Username || existing.Email == email) {
			return fmt.Errorf("update user: %w", models.ErrConflict)
		}
	}
	cp := *u
	cp.Email = email
	m.Users[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) DeleteUser(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, ok := m.Users[id]; !ok {
		return fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	delete(m.Users, id)
	return nil
}

type mockInternshipRepo struct {
	mu        sync.Mutex
	seq       int
	order     []string
	Records   map[string]*models.Internship
	Resumes   map[string]*models.Resume
	CreateErr error
	ListErr   error
	UpdateErr error
}

func (m *mockInternshipRepo) CreateInternship(ctx context.Context, in *models.Internship) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	m.seq++
	in.ID = fmt.Sprintf("int-%d", m.seq)
	in.Created = int64(m.seq)
	in.Updated = in.Created
	if in.Resume != nil && len(in.Resume.Data) > 0 {
		r := *in.Resume
		r.Size = int64(len(r.Data))
		m.Resumes[in.ID] = &r
		in.Resume = &models.Resume{ContentType: r.ContentType, FileName: r.FileName, Size: r.Size}
	}
	m.Records[in.ID] = clone(in)
	m.order = append(m.order, in.ID)
	return in.ID, nil
}

func (m *mockInternshipRepo) GetInternship(ctx context.Context, userID, id string) (*models.Internship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.Records[id]
	if !ok || in.UserID != userID {
		return nil, fmt.Errorf("internship %s: %w", id, models.ErrNotFound)
	}
	return clone(in), nil
}

func (m *mockInternshipRepo) ListInternshipsByUser(ctx context.Context, userID string) ([]models.Internship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var out []models.Internship
	for _, id := range m.order {
		if in, ok := m.Records[id]; ok && in.UserID == userID {
			out = append(out, *clone(in))
		}
	}
	return out, nil
}

func (m *mockInternshipRepo) UpdateInternship(ctx context.Context, in *models.Internship) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	cur, ok := m.Records[in.ID]
	if !ok || cur.UserID != in.UserID {
		return fmt.Errorf("internship %s: %w", in.ID, models.ErrNotFound)
	}
	next := clone(in)
	next.Resume = cur.Resume
	next.Updated = cur.Updated + 1
	in.Updated = next.Updated
	m.Records[in.ID] = next
	return nil
}

func (m *mockInternshipRepo) SetResume(ctx context.Context, userID, id string, r *models.Resume) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.Records[id]
	if !ok || cur.UserID != userID {
		return fmt.Errorf("internship %s: %w", id, models.ErrNotFound)
	}
	cp := *r
	cp.Size = int64(len(cp.Data))
	m.Resumes[id] = &cp
	cur.Resume = &models.Resume{ContentType: cp.ContentType, FileName: cp.FileName, Size: cp.Size}
	return nil
}

func (m *mockInternshipRepo) GetResume(ctx context.Context, userID, id string) (*models.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.Records[id]
	if !ok || cur.UserID != userID {
		return nil, fmt.Errorf("internship %s: %w", id, models.ErrNotFound)
	}
	r, ok := m.Resumes[id]
	if !ok {
		return nil, fmt.Errorf("resume %s: %w", id, models.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (m *mockInternshipRepo) DeleteInternship(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.Records[id]
	if !ok || cur.UserID != userID {
		return fmt.Errorf("internship %s: %w", id, models.ErrNotFound)
	}
	delete(m.Records, id)
	delete(m.Resumes, id)
	return nil
}

func (m *mockInternshipRepo) DeleteInternshipsByUser(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, in := range m.Records {
		if in.UserID == userID {
			delete(m.Records, id)
			delete(m.Resumes, id)
			n++
		}
	}
	return n, nil
}

// Count returns the number of stored records whose company contains substr.
func (m *mockInternshipRepo) Count(substr string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, in := range m.Records {
		if strings.Contains(in.Company, substr) {
			n++
		}
	}
	return n
}

func clone(in *models.Internship) *models.Internship {
	cp := *in
	if in.FollowUpDate != nil {
		t := *in.FollowUpDate
		cp.FollowUpDate = &t
	}
	if in.Resume != nil {
		r := *in.Resume
		r.Data = nil
		cp.Resume = &r
	}
	cp.Links = append([]models.Link{}, in.Links...)
	return &cp
}
