// Package otp manages password-recovery one-time codes: generation,
// atomic replacement, verification against expiry, and consumption.
package otp

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
)

const (
	// CodeLength is the number of decimal digits in a code.
	CodeLength = 6
	// DefaultTTL is how long a freshly created code stays valid.
	DefaultTTL = 10 * time.Minute
)

// Store keeps at most one live code per identity (email).
type Store struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	ttl         time.Duration
	timeout     time.Duration
	now         func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithTimeout bounds every storage call. Zero means no extra bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

func NewStore(db *sql.DB, m repomanager.RepositoryManager, ttl time.Duration, opts ...Option) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{db: db, repomanager: m, ttl: ttl, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GenerateCode returns CodeLength uniformly random digits.
func (s *Store) GenerateCode() (string, error) {
	return common.RandomDigits(CodeLength)
}

// Create replaces any code for identity with code, valid for the store TTL.
// The delete and insert commit together, so readers never observe zero or
// two codes for one identity.
func (s *Store) Create(ctx context.Context, identity, code string) error {
	ctx, cancel := dbx.Bounded(ctx, s.timeout)
	defer cancel()

	expiresAt := s.now().Add(s.ttl)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.OTPCodes(tx)
		if err := repo.DeleteByEmail(ctx, identity); err != nil {
			return err
		}
		return repo.Upsert(ctx, identity, code, expiresAt)
	})
	if err != nil {
		return fmt.Errorf("error storing code: %w", err)
	}
	return nil
}

// Verify reports whether code is the live code for identity. It does not
// consume the code.
func (s *Store) Verify(ctx context.Context, identity, code string) (bool, error) {
	ctx, cancel := dbx.Bounded(ctx, s.timeout)
	defer cancel()

	stored, err := s.repomanager.OTPCodes(s.db).FindByEmail(ctx, identity)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("error loading code: %w", err)
	}

	match := subtle.ConstantTimeCompare([]byte(stored.Code), []byte(code)) == 1
	return match && stored.LiveAt(s.now()), nil
}

// Delete removes the code for identity. Deleting a missing code succeeds.
func (s *Store) Delete(ctx context.Context, identity string) error {
	ctx, cancel := dbx.Bounded(ctx, s.timeout)
	defer cancel()

	if err := s.repomanager.OTPCodes(s.db).DeleteByEmail(ctx, identity); err != nil {
		return fmt.Errorf("error deleting code: %w", err)
	}
	return nil
}

// PurgeExpired drops every code whose expiry has passed.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	ctx, cancel := dbx.Bounded(ctx, s.timeout)
	defer cancel()

	n, err := s.repomanager.OTPCodes(s.db).DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("error purging codes: %w", err)
	}
	return n, nil
}
