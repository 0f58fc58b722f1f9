// Package services contains the server-side business logic: AccountService
// enforces the account rules, AuthService turns successful credential checks
// into access and refresh tokens.
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/config"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/accounts"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// PasswordHasher is the one-way credential primitive. auth.BcryptHasher
// satisfies it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) (bool, error)
	VerifyDummy(password string)
}

// NewAccount is the input of Create.
type NewAccount struct {
	Email     string
	Password  string
	FirstName *string
	LastName  *string
}

// ProfileUpdate carries a partial profile change. A nil field is left as is;
// a pointer to "" clears the field.
type ProfileUpdate struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
}

type AccountService struct {
	repo     accounts.Repository
	hasher   PasswordHasher
	log      logging.Logger
	validate *validator.Validate
	now      func() time.Time

	sessionDuration         time.Duration
	extendedSessionDuration time.Duration
}

func NewAccountService(repo accounts.Repository, hasher PasswordHasher, cfg *config.Config, log logging.Logger) *AccountService {
	return &AccountService{
		repo:                    repo,
		hasher:                  hasher,
		log:                     log.With("module", "accounts"),
		validate:                validator.New(),
		now:                     time.Now,
		sessionDuration:         cfg.AccessTokenValidityDuration,
		extendedSessionDuration: cfg.ExtendedSessionDuration,
	}
}

// MaxPasswordBytes is the bcrypt input limit.
const MaxPasswordBytes = 72

// NormalizeEmail trims and lower-cases an address; every lookup goes through it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AccountService) Create(ctx context.Context, in NewAccount) (*models.Account, error) {
	email := NormalizeEmail(in.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is empty", common.ErrorValidation)
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return nil, fmt.Errorf("%w: malformed email", common.ErrorValidation)
	}
	if in.Password == "" {
		return nil, fmt.Errorf("%w: password is empty", common.ErrorValidation)
	}
	if len(in.Password) > MaxPasswordBytes {
		return nil, fmt.Errorf("%w: password is longer than %d bytes", common.ErrorValidation, MaxPasswordBytes)
	}

	// The unique index is authoritative; this only saves a bcrypt round.
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, s.internal(ctx, "exists check failed", err)
	}
	if exists {
		return nil, common.ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, s.internal(ctx, "password hashing failed", err)
	}

	a := &models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		IsActive:     true,
		CreatedAt:    s.now().UTC(),
		LoyaltyTier:  models.TierForPoints(0),
	}

	created, err := s.repo.Create(ctx, a)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, s.internal(ctx, "account insert failed", err)
	}

	s.log.Info(ctx, "account created", "account_id", created.ID)
	return created, nil
}

// Authenticate checks the credentials and records the login. The returned
// duration is the session length: extended when requested.
//
// An unknown email and a wrong password are indistinguishable to the caller:
// both match common.ErrInvalidCredential, the former additionally matches
// common.ErrorNotFound.
func (s *AccountService) Authenticate(ctx context.Context, email, password string, extended bool) (*models.Account, time.Duration, error) {
	a, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.VerifyDummy(password)
			return nil, 0, fmt.Errorf("%w: %w", common.ErrInvalidCredential, common.ErrorNotFound)
		}
		return nil, 0, s.internal(ctx, "account lookup failed", err)
	}

	ok, err := s.hasher.Verify(a.PasswordHash, password)
	if err != nil {
		return nil, 0, s.internal(ctx, "password verification failed", err)
	}
	if !ok {
		return nil, 0, common.ErrInvalidCredential
	}
	if !a.IsActive {
		return nil, 0, common.ErrAccountDisabled
	}

	a, err = s.RecordLogin(ctx, a.ID)
	if err != nil {
		return nil, 0, err
	}

	d := s.sessionDuration
	if extended {
		d = s.extendedSessionDuration
	}
	return a, d, nil
}

// UpdateProfile applies the non-nil fields of u.
func (s *AccountService) UpdateProfile(ctx context.Context, id string, u ProfileUpdate) (*models.Account, error) {
	return s.mutate(ctx, id, func(a *models.Account) error {
		if u.FirstName != nil {
			a.FirstName = clearable(*u.FirstName)
		}
		if u.LastName != nil {
			a.LastName = clearable(*u.LastName)
		}
		if u.PhoneNumber != nil {
			a.PhoneNumber = clearable(*u.PhoneNumber)
		}
		s.touch(a)
		return nil
	})
}

// RecordLogin sets lastLoginAt and nothing else.
func (s *AccountService) RecordLogin(ctx context.Context, id string) (*models.Account, error) {
	return s.mutate(ctx, id, func(a *models.Account) error {
		now := s.now().UTC()
		a.LastLoginAt = &now
		return nil
	})
}

func (s *AccountService) VerifyEmail(ctx context.Context, id string) (*models.Account, error) {
	return s.mutate(ctx, id, func(a *models.Account) error {
		a.EmailVerified = true
		s.touch(a)
		return nil
	})
}

func (s *AccountService) Deactivate(ctx context.Context, id string) (*models.Account, error) {
	a, err := s.mutate(ctx, id, func(a *models.Account) error {
		a.IsActive = false
		s.touch(a)
		return nil
	})
	if err == nil {
		s.log.Info(ctx, "account deactivated", "account_id", id)
	}
	return a, err
}

// AddLoyaltyPoints adds a strictly positive delta and recomputes the tier.
func (s *AccountService) AddLoyaltyPoints(ctx context.Context, id string, points int64) (*models.Account, error) {
	if points <= 0 {
		return nil, fmt.Errorf("%w: points must be positive", common.ErrorValidation)
	}
	return s.mutate(ctx, id, func(a *models.Account) error {
		if points > math.MaxInt64-a.LoyaltyPoints {
			return fmt.Errorf("%w: points total overflows", common.ErrorValidation)
		}
		a.ApplyPoints(points)
		s.touch(a)
		return nil
	})
}

func (s *AccountService) Exists(ctx context.Context, email string) (bool, error) {
	ok, err := s.repo.ExistsByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return false, s.internal(ctx, "exists check failed", err)
	}
	return ok, nil
}

func (s *AccountService) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}
	a, err := s.repo.GetByID(ctx, id)
	return s.get(ctx, a, err)
}

func (s *AccountService) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	a, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	return s.get(ctx, a, err)
}

func (s *AccountService) List(ctx context.Context) ([]*models.Account, error) {
	return s.list(ctx, accounts.Filter{})
}

func (s *AccountService) ListActive(ctx context.Context) ([]*models.Account, error) {
	active := true
	return s.list(ctx, accounts.Filter{Active: &active})
}

func (s *AccountService) ListByTier(ctx context.Context, tier models.LoyaltyTier) ([]*models.Account, error) {
	return s.list(ctx, accounts.Filter{Tier: tier})
}

func (s *AccountService) ListVerified(ctx context.Context) ([]*models.Account, error) {
	verified := true
	return s.list(ctx, accounts.Filter{EmailVerified: &verified})
}

// SearchByEmail matches accounts whose email contains fragment.
func (s *AccountService) SearchByEmail(ctx context.Context, fragment string) ([]*models.Account, error) {
	return s.list(ctx, accounts.Filter{EmailContains: NormalizeEmail(fragment)})
}

// ListCreatedAfter is inclusive of t.
func (s *AccountService) ListCreatedAfter(ctx context.Context, t time.Time) ([]*models.Account, error) {
	return s.list(ctx, accounts.Filter{CreatedAfter: &t})
}

func (s *AccountService) ListByMinPoints(ctx context.Context, minPoints int64) ([]*models.Account, error) {
	return s.list(ctx, accounts.Filter{MinPoints: &minPoints})
}

// Search combines the optional criteria of the search endpoint.
func (s *AccountService) Search(ctx context.Context, f accounts.Filter) ([]*models.Account, error) {
	f.EmailContains = NormalizeEmail(f.EmailContains)
	return s.list(ctx, f)
}

// --- helpers below ---

func (s *AccountService) mutate(ctx context.Context, id string, fn accounts.MutateFunc) (*models.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}
	a, err := s.repo.Update(ctx, id, fn)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorValidation) {
			return nil, err
		}
		return nil, s.internal(ctx, "account update failed", err, "account_id", id)
	}
	return a, nil
}

func (s *AccountService) get(ctx context.Context, a *models.Account, err error) (*models.Account, error) {
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, s.internal(ctx, "account lookup failed", err)
	}
	return a, nil
}

func (s *AccountService) list(ctx context.Context, f accounts.Filter) ([]*models.Account, error) {
	list, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, s.internal(ctx, "account list failed", err)
	}
	return list, nil
}

func (s *AccountService) touch(a *models.Account) {
	now := s.now().UTC()
	a.UpdatedAt = &now
}

// internal logs the cause and hides it behind common.ErrorInternal.
func (s *AccountService) internal(ctx context.Context, msg string, err error, args ...any) error {
	s.log.Error(ctx, msg, append(args, "error", err)...)
	return fmt.Errorf("%w: %s", common.ErrorInternal, msg)
}

func clearable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
