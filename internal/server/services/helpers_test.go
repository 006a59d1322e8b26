package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/password"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/otpcodes"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func fastHasher() password.Hasher { return password.NewBcrypt(bcrypt.MinCost) }

func strp(s string) *string { return &s }

// usersOverride wraps a users.Repository and lets tests fail selected calls.
type usersOverride struct {
	users.Repository
	createErr error
	getErr    error
	updateErr error
	updateOK  *bool
}

func (u *usersOverride) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if u.createErr != nil {
		return nil, u.createErr
	}
	return u.Repository.Create(ctx, user)
}

func (u *usersOverride) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if u.getErr != nil {
		return nil, u.getErr
	}
	return u.Repository.GetByEmail(ctx, email)
}

func (u *usersOverride) UpdatePasswordHash(ctx context.Context, id int64, hash string) (bool, error) {
	if u.updateErr != nil {
		return false, u.updateErr
	}
	if u.updateOK != nil {
		return *u.updateOK, nil
	}
	return u.Repository.UpdatePasswordHash(ctx, id, hash)
}

type fakeRepoManager struct {
	u users.Repository
}

func newFakeRepoManager() (*fakeRepoManager, *usersOverride) {
	o := &usersOverride{Repository: users.NewMemoryRepository()}
	return &fakeRepoManager{u: o}, o
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.u }
func (m *fakeRepoManager) OTPCodes(dbx.DBTX) otpcodes.Repository        { return nil }

var _ repomanager.RepositoryManager = (*fakeRepoManager)(nil)

// fakeCodes is an in-memory CodeStore with a controllable clock.
type fakeCodes struct {
	mu        sync.Mutex
	codes     map[string]models.OneTimeCode
	next      []string
	now       time.Time
	createErr error
	verifyErr error
	deleteErr error
}

func newFakeCodes() *fakeCodes {
	return &fakeCodes{codes: map[string]models.OneTimeCode{}, now: time.Now()}
}

func (f *fakeCodes) GenerateCode() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.next) == 0 {
		return "", errors.New("no code queued")
	}
	c := f.next[0]
	f.next = f.next[1:]
	return c, nil
}

func (f *fakeCodes) Create(_ context.Context, identity, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.codes[identity] = models.OneTimeCode{Email: identity, Code: code, ExpiresAt: f.now.Add(10 * time.Minute)}
	return nil
}

func (f *fakeCodes) Verify(_ context.Context, identity, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.verifyErr != nil {
		return false, f.verifyErr
	}
	c, ok := f.codes[identity]
	return ok && c.Code == code && c.LiveAt(f.now), nil
}

func (f *fakeCodes) Delete(_ context.Context, identity string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.codes, identity)
	return nil
}

// fakeNotifier records reset codes and welcome emails.
type fakeNotifier struct {
	mu       sync.Mutex
	resets   map[string]string
	welcomes []string
	err      error
}

func newFakeNotifier() *fakeNotifier { return &fakeNotifier{resets: map[string]string{}} }

func (n *fakeNotifier) SendWelcome(_ context.Context, email, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcomes = append(n.welcomes, email)
	return n.err
}

func (n *fakeNotifier) SendPasswordReset(_ context.Context, email, _, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.resets[email] = code
	return nil
}

func (n *fakeNotifier) codeFor(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.resets[email]
}

// welcomeQueue records Welcome calls synchronously.
type welcomeQueue struct {
	mu     sync.Mutex
	sent   []string
	accept bool
}

func (q *welcomeQueue) Welcome(_ context.Context, email, _ string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sent = append(q.sent, email)
	return q.accept
}

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) { return "", errBoom{} }
func (failingHasher) Verify(string, string) bool  { return false }
