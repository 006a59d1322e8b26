// Package users provides the credential store: persistence for user
// accounts keyed by id, email and phone.
package users

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository is the credential store. Lookups return common.ErrorNotFound
// when no row matches; Create returns common.ErrDuplicateCredential when
// the email or phone is already taken.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	GetByEmailOrPhone(ctx context.Context, email, phone *string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) (bool, error)
}
