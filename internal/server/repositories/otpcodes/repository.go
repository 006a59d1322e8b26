// Package otpcodes persists password-recovery one-time codes, at most one
// row per email.
package otpcodes

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

type Repository interface {
	// Upsert stores code for email, replacing any existing row.
	Upsert(ctx context.Context, email, code string, expiresAt time.Time) error
	// FindByEmail returns common.ErrorNotFound when email has no code.
	FindByEmail(ctx context.Context, email string) (*models.OneTimeCode, error)
	DeleteByEmail(ctx context.Context, email string) error
	// DeleteExpired removes rows with expires_at <= now and reports how many.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
