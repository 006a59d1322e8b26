package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingFinder struct{ err error }

func (f failingFinder) GetByID(context.Context, int64) (*models.User, error) { return nil, f.err }

func TestGate_Authenticate(t *testing.T) {
	ctx := context.Background()
	repo := users.NewMemoryRepository()
	email := "a@x.com"
	u, err := repo.Create(ctx, &models.User{Name: "Ana", Email: &email, PasswordHash: "h"})
	require.NoError(t, err)

	issuer := NewIssuer([]byte("secret"), time.Hour)
	gate := NewGate(issuer, repo, time.Second)

	tok, err := issuer.Issue(u.ID)
	require.NoError(t, err)

	got, err := gate.Authenticate(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "Ana", got.Name)
}

func TestGate_Rejections(t *testing.T) {
	ctx := context.Background()
	issuer := NewIssuer([]byte("secret"), time.Hour)
	gate := NewGate(issuer, users.NewMemoryRepository(), time.Second)

	orphan, err := issuer.Issue(404)
	require.NoError(t, err)
	foreign, err := NewIssuer([]byte("other"), time.Hour).Issue(1)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"missing", "", ErrMissingToken},
		{"garbage", "not-a-token", ErrInvalidToken},
		{"wrong key", foreign, ErrInvalidToken},
		{"vanished user", orphan, ErrUserGone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gate.Authenticate(ctx, tt.token)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, common.ErrorUnauthorized)
		})
	}
}

func TestGate_StorageFailureIsInternal(t *testing.T) {
	issuer := NewIssuer([]byte("secret"), time.Hour)
	gate := NewGate(issuer, failingFinder{err: errors.New("db down")}, time.Second)

	tok, err := issuer.Issue(1)
	require.NoError(t, err)

	_, err = gate.Authenticate(context.Background(), tok)
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.NotErrorIs(t, err, common.ErrorUnauthorized)
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc.def":   "abc.def",
		"bearer abc.def":   "abc.def",
		"Bearer  abc.def ": "abc.def",
		"Basic abc":        "",
		"Bearer":           "",
		"":                 "",
	}
	for in, want := range tests {
		assert.Equal(t, want, BearerToken(in), in)
	}
}
