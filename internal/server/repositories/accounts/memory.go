package accounts

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

// MemoryRepository keeps accounts in process memory. One mutex guards both
// indexes, which makes email uniqueness and Update atomic.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.Account
	byEmail map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*models.Account),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryRepository) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[a.Email]; taken {
		return nil, common.ErrDuplicateEmail
	}
	r.byID[a.ID] = a.Clone()
	r.byEmail[a.Email] = a.ID
	return a, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a.Clone(), nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	r.mu.RLock()
	id, ok := r.byEmail[email]
	r.mu.RUnlock()
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *MemoryRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byEmail[email]
	return ok, nil
}

func (f Filter) matches(a *models.Account) bool {
	switch {
	case f.Active != nil && a.IsActive != *f.Active:
		return false
	case f.EmailVerified != nil && a.EmailVerified != *f.EmailVerified:
		return false
	case f.Tier != "" && a.LoyaltyTier != f.Tier:
		return false
	case f.EmailContains != "" && !strings.Contains(a.Email, f.EmailContains):
		return false
	case f.CreatedAfter != nil && a.CreatedAt.Before(*f.CreatedAfter):
		return false
	case f.MinPoints != nil && a.LoyaltyPoints < *f.MinPoints:
		return false
	}
	return true
}

func (r *MemoryRepository) List(_ context.Context, f Filter) ([]*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Account, 0, len(r.byID))
	for _, a := range r.byID {
		if f.matches(a) {
			result = append(result, a.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, fn MutateFunc) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}

	working := stored.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}

	// Identity fields are immutable whatever fn did.
	working.ID = stored.ID
	working.Email = stored.Email
	working.PasswordHash = stored.PasswordHash
	working.CreatedAt = stored.CreatedAt

	r.byID[id] = working
	return working.Clone(), nil
}

func (r *MemoryRepository) Ping(context.Context) error { return nil }
