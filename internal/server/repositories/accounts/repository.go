// Package accounts is the Account Store: the persistent collection of
// accounts keyed by id and by unique email.
package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

// Filter narrows List. Zero-valued fields do not constrain the result.
type Filter struct {
	Active        *bool
	EmailVerified *bool
	Tier          models.LoyaltyTier
	EmailContains string
	CreatedAfter  *time.Time
	MinPoints     *int64
}

// MutateFunc edits an account in place during Update. Returning an error
// aborts the update and leaves the stored record unchanged.
type MutateFunc func(a *models.Account) error

type Repository interface {
	// Create inserts a new account. A duplicate email yields
	// common.ErrDuplicateEmail, enforced by the store itself.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// List returns matching accounts ordered by creation time.
	List(ctx context.Context, f Filter) ([]*models.Account, error)

	// Update performs an atomic read-modify-write of one account: concurrent
	// updates of the same id are serialised, so none is lost.
	Update(ctx context.Context, id string, fn MutateFunc) (*models.Account, error)

	Ping(ctx context.Context) error
}
