package users

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// MemoryRepository is a mutex-guarded Repository with the same uniqueness
// rules as the users table. Returned users are copies.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[int64]*models.User)}
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if sameValue(u.Email, user.Email) {
			return nil, fmt.Errorf("%w: email", common.ErrDuplicateCredential)
		}
		if sameValue(u.Phone, user.Phone) {
			return nil, fmt.Errorf("%w: phone", common.ErrDuplicateCredential)
		}
	}

	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.byID[user.ID] = clone(user)
	return user, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(u), nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.GetByEmailOrPhone(ctx, &email, nil)
}

func (r *MemoryRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	return r.GetByEmailOrPhone(ctx, nil, &phone)
}

func (r *MemoryRepository) GetByEmailOrPhone(_ context.Context, email, phone *string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *models.User
	for _, u := range r.byID {
		if sameValue(u.Email, email) || sameValue(u.Phone, phone) {
			if found == nil || u.ID < found.ID {
				found = u
			}
		}
	}
	if found == nil {
		return nil, common.ErrorNotFound
	}
	return clone(found), nil
}

func (r *MemoryRepository) UpdatePasswordHash(_ context.Context, id int64, hash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return false, nil
	}
	u.PasswordHash = hash
	return true, nil
}

func sameValue(a, b *string) bool {
	return a != nil && b != nil && *a == *b
}

func clone(u *models.User) *models.User {
	c := *u
	if u.Email != nil {
		e := *u.Email
		c.Email = &e
	}
	if u.Phone != nil {
		p := *u.Phone
		c.Phone = &p
	}
	return &c
}
