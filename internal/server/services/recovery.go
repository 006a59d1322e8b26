package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/notify"
	"github.com/dmitrijs2005/authkeeper/internal/server/password"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
)

// ResetRequestedMessage is returned by RequestReset whether or not the email
// belongs to an account.
const ResetRequestedMessage = "If the email exists, you will receive a verification code"

// CodeStore is the subset of the OTP store used by RecoveryService.
type CodeStore interface {
	GenerateCode() (string, error)
	Create(ctx context.Context, identity, code string) error
	Verify(ctx context.Context, identity, code string) (bool, error)
	Delete(ctx context.Context, identity string) error
}

// RecoveryService drives password recovery for an email identity:
// NoActiveCode -> CodeIssued (RequestReset) -> Consumed (ResetPassword).
// Expiry is a property of the stored code, not a separate state.
type RecoveryService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	codes         CodeStore
	hasher        password.Hasher
	notifier      notify.Notifier
	logger        logging.Logger
	storeTimeout  time.Duration
	notifyTimeout time.Duration
}

func NewRecoveryService(db *sql.DB, m repomanager.RepositoryManager, codes CodeStore, hasher password.Hasher,
	notifier notify.Notifier, logger logging.Logger, storeTimeout, notifyTimeout time.Duration) *RecoveryService {
	return &RecoveryService{
		db:            db,
		repomanager:   m,
		codes:         codes,
		hasher:        hasher,
		notifier:      notifier,
		logger:        logger,
		storeTimeout:  storeTimeout,
		notifyTimeout: notifyTimeout,
	}
}

// RequestReset issues a fresh code for email and sends it. The returned
// message is the same for known and unknown emails. A notifier failure after
// the code was stored yields common.ErrorInternal and leaves the code valid.
func (s *RecoveryService) RequestReset(ctx context.Context, email string) (string, error) {
	user, err := s.lookup(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Info(ctx, "reset requested for unknown email")
			return ResetRequestedMessage, nil
		}
		return "", err
	}

	code, err := s.codes.GenerateCode()
	if err != nil {
		return "", fmt.Errorf("%w: generate code: %v", common.ErrorInternal, err)
	}

	if err := s.codes.Create(ctx, email, code); err != nil {
		s.logger.Error(ctx, "error storing reset code", "user_id", user.ID, "error", err)
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	nctx, cancel := dbx.Bounded(ctx, s.notifyTimeout)
	defer cancel()

	if err := s.notifier.SendPasswordReset(nctx, email, user.Name, code); err != nil {
		s.logger.Error(ctx, "error sending reset code", "user_id", user.ID, "error", err)
		return "", fmt.Errorf("%w: notify: %v", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "reset code issued", "user_id", user.ID)
	return ResetRequestedMessage, nil
}

// VerifyCode checks code without consuming it. Unknown email, wrong code
// and expired code all yield common.ErrInvalidOrExpiredOTP.
func (s *RecoveryService) VerifyCode(ctx context.Context, email, code string) error {
	_, err := s.check(ctx, email, code)
	return err
}

// ResetPassword sets a new password if code is valid for email and then
// consumes the code. If the password update fails the code stays valid so
// the caller can retry.
func (s *RecoveryService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	user, err := s.check(ctx, email, code)
	if err != nil {
		return err
	}

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("%w: hash password: %v", common.ErrorInternal, err)
	}

	uctx, cancel := dbx.Bounded(ctx, s.storeTimeout)
	defer cancel()

	ok, err := s.repomanager.Users(s.db).UpdatePasswordHash(uctx, user.ID, digest)
	if err != nil {
		s.logger.Error(ctx, "error updating password", "user_id", user.ID, "error", err)
		return fmt.Errorf("%w: update password: %v", common.ErrorInternal, err)
	}
	if !ok {
		s.logger.Error(ctx, "password update matched no user", "user_id", user.ID)
		return fmt.Errorf("%w: update password: no rows", common.ErrorInternal)
	}

	if err := s.codes.Delete(ctx, email); err != nil {
		// the password already changed; the stale code dies at expiry
		s.logger.Error(ctx, "error deleting used code", "user_id", user.ID, "error", err)
	}

	s.logger.Info(ctx, "password reset", "user_id", user.ID)
	return nil
}

func (s *RecoveryService) check(ctx context.Context, email, code string) (*models.User, error) {
	user, err := s.lookup(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidOrExpiredOTP
		}
		return nil, err
	}

	ok, err := s.codes.Verify(ctx, email, code)
	if err != nil {
		s.logger.Error(ctx, "error verifying code", "user_id", user.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	if !ok {
		return nil, common.ErrInvalidOrExpiredOTP
	}
	return user, nil
}

// lookup returns common.ErrorNotFound untouched and maps any other failure
// to common.ErrorInternal.
func (s *RecoveryService) lookup(ctx context.Context, email string) (*models.User, error) {
	lctx, cancel := dbx.Bounded(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.repomanager.Users(s.db).GetByEmail(lctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		s.logger.Error(ctx, "error loading user", "error", err)
		return nil, fmt.Errorf("%w: load user: %v", common.ErrorInternal, err)
	}
	return user, nil
}
