package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Rejection reasons carried by Gate errors.
var (
	ErrInvalidToken = fmt.Errorf("%w: invalid or expired token", common.ErrorUnauthorized)
	ErrUserGone     = fmt.Errorf("%w: user no longer exists", common.ErrorUnauthorized)
	ErrMissingToken = fmt.Errorf("%w: missing bearer token", common.ErrorUnauthorized)
)

// UserFinder resolves a user id to a user.
type UserFinder interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Gate turns a bearer token into the user it was issued for.
type Gate struct {
	issuer  *Issuer
	users   UserFinder
	timeout time.Duration
}

func NewGate(issuer *Issuer, users UserFinder, timeout time.Duration) *Gate {
	return &Gate{issuer: issuer, users: users, timeout: timeout}
}

// Authenticate verifies token and loads its subject. Every failure wraps
// common.ErrorUnauthorized, except storage failures, which wrap
// common.ErrorInternal.
func (g *Gate) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	id, err := g.issuer.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w (%v)", ErrInvalidToken, err)
	}

	ctx, cancel := dbx.Bounded(ctx, g.timeout)
	defer cancel()

	user, err := g.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrUserGone
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return user, nil
}

// BearerToken extracts the token from an Authorization header value. It
// returns "" when the header is absent or uses another scheme.
func BearerToken(header string) string {
	if len(header) < len(common.BearerScheme) || !strings.EqualFold(header[:len(common.BearerScheme)], common.BearerScheme) {
		return ""
	}
	return strings.TrimSpace(header[len(common.BearerScheme):])
}
