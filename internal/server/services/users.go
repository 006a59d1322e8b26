// Package services contains server-side business logic. This file implements
// UserService, which handles registration and login.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/password"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
)

// TokenType is the OAuth2-style token type returned on login.
const TokenType = "bearer"

// WelcomeQueue accepts welcome notifications for asynchronous delivery.
type WelcomeQueue interface {
	Welcome(ctx context.Context, email, name string) bool
}

// RegisterInput is a validated registration request.
type RegisterInput struct {
	Name     string
	Email    *string
	Phone    *string
	Password string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
	User        *models.User
}

// UserService provides account operations:
// - Register: create users and queue a welcome email
// - Login: verify credentials and issue a bearer token
type UserService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	hasher       password.Hasher
	issuer       *auth.Issuer
	welcome      WelcomeQueue
	logger       logging.Logger
	storeTimeout time.Duration

	dummyOnce   sync.Once
	dummyDigest string
}

// NewUserService wires a UserService. welcome may be nil.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher password.Hasher, issuer *auth.Issuer,
	welcome WelcomeQueue, logger logging.Logger, storeTimeout time.Duration) *UserService {
	return &UserService{
		db:           db,
		repomanager:  m,
		hasher:       hasher,
		issuer:       issuer,
		welcome:      welcome,
		logger:       logger,
		storeTimeout: storeTimeout,
	}
}

// Register stores a new user. A duplicate email or phone yields
// common.ErrDuplicateCredential. The welcome email is queued after the user
// is committed; its delivery never affects the result.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Email == nil && in.Phone == nil {
		return nil, fmt.Errorf("%w: email or phone is required", common.ErrValidation)
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %v", common.ErrorInternal, err)
	}

	user := &models.User{Name: in.Name, Email: in.Email, Phone: in.Phone, PasswordHash: digest}

	ctx2, cancel := dbx.Bounded(ctx, s.storeTimeout)
	defer cancel()

	user, err = s.repomanager.Users(s.db).Create(ctx2, user)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateCredential) {
			return nil, common.ErrDuplicateCredential
		}
		s.logger.Error(ctx, "error creating user", "error", err)
		return nil, fmt.Errorf("%w: create user: %v", common.ErrorInternal, err)
	}

	if user.Phone != nil {
		s.logger.Info(ctx, "user registered", "user_id", user.ID, "phone", logging.MaskPhone(*user.Phone))
	} else {
		s.logger.Info(ctx, "user registered", "user_id", user.ID)
	}

	if user.Email != nil && s.welcome != nil {
		if !s.welcome.Welcome(ctx, *user.Email, user.Name) {
			s.logger.Warn(ctx, "welcome email dropped", "user_id", user.ID)
		}
	}

	return user, nil
}

// Login verifies email/password and issues a bearer token. Unknown email and
// wrong password both yield common.ErrInvalidCredentials and take roughly
// the same time.
func (s *UserService) Login(ctx context.Context, email, plain string) (*LoginResult, error) {
	ctx2, cancel := dbx.Bounded(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx2, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(plain, s.dummyHash())
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "error loading user", "error", err)
		return nil, fmt.Errorf("%w: load user: %v", common.ErrorInternal, err)
	}

	if !s.hasher.Verify(plain, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: issue token: %v", common.ErrorInternal, err)
	}

	return &LoginResult{
		AccessToken: token,
		TokenType:   TokenType,
		ExpiresIn:   s.issuer.TTL(),
		User:        user,
	}, nil
}

// dummyHash is a digest of a throwaway password, used to spend the same
// verification work on unknown accounts as on real ones.
func (s *UserService) dummyHash() string {
	s.dummyOnce.Do(func() {
		d, err := s.hasher.Hash("dummy-Passw0rd")
		if err == nil {
			s.dummyDigest = d
		}
	})
	return s.dummyDigest
}
