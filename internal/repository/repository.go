package repository

import (
	"context"
	"database/sql"

	"regenx/internal/models"
)

// UserStore persists whole user documents, history included.
type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	Save(ctx context.Context, u *models.User) error
	// Update loads the user, applies fn and writes the document back in one
	// transaction. fn must not retain the pointer.
	Update(ctx context.Context, id int64, fn func(u *models.User) error) (*models.User, error)
}

type Repository struct {
	Users UserStore
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Users: NewUserSQLite(db),
	}
}
