package repository

import (
	"context"

	"github.com/garnizeh/interntrack/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
//
// Lookups of missing rows return models.ErrNotFound (wrapped); unique
// constraint violations return models.ErrConflict.

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (string, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id string) error
}

type InternshipRepo interface {
	CreateInternship(ctx context.Context, in *models.Internship) (string, error)
	GetInternship(ctx context.Context, userID, id string) (*models.Internship, error)
	ListInternshipsByUser(ctx context.Context, userID string) ([]models.Internship, error)
	UpdateInternship(ctx context.Context, in *models.Internship) error
	SetResume(ctx context.Context, userID, id string, r *models.Resume) error
	GetResume(ctx context.Context, userID, id string) (*models.Resume, error)
	DeleteInternship(ctx context.Context, userID, id string) error
	DeleteInternshipsByUser(ctx context.Context, userID string) (int64, error)
}
