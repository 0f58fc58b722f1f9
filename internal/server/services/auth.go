package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/server/config"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/accountkeeper/internal/server/revocation"
)

// Session is what a client gets back from register, login and refresh.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// AuthService issues JWT access tokens and server-stored refresh tokens on
// top of AccountService:
//   - Register / Login: create or authenticate, then mint a session
//   - Refresh: redeem a refresh token exactly once for a new session
//   - Logout: revoke the access token and drop the refresh token
//   - Authorize: validate a bearer token for the protected routes
type AuthService struct {
	accounts      *AccountService
	refreshTokens refreshtokens.Repository
	revoked       revocation.Store
	log           logging.Logger

	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewAuthService(accounts *AccountService, refreshTokens refreshtokens.Repository, revoked revocation.Store, cfg *config.Config, log logging.Logger) *AuthService {
	return &AuthService{
		accounts:                     accounts,
		refreshTokens:                refreshTokens,
		revoked:                      revoked,
		log:                          log.With("module", "auth"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Register creates the account and opens a default-length session for it.
func (s *AuthService) Register(ctx context.Context, in NewAccount) (*models.Account, *Session, error) {
	a, err := s.accounts.Create(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	session, err := s.newSession(ctx, a, s.accessTokenValidityDuration)
	if err != nil {
		return nil, nil, err
	}
	return a, session, nil
}

// Login authenticates and opens a session; rememberMe selects the extended
// session length.
func (s *AuthService) Login(ctx context.Context, email, password string, rememberMe bool) (*models.Account, *Session, error) {
	a, d, err := s.accounts.Authenticate(ctx, email, password, rememberMe)
	if err != nil {
		return nil, nil, err
	}
	session, err := s.newSession(ctx, a, d)
	if err != nil {
		return nil, nil, err
	}
	s.log.Info(ctx, "login", "account_id", a.ID, "extended", rememberMe)
	return a, session, nil
}

// Refresh consumes refreshToken and returns a new session. Unknown tokens
// give common.ErrInvalidToken, expired ones common.ErrRefreshTokenExpired.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.Account, *Session, error) {
	if refreshToken == "" {
		return nil, nil, fmt.Errorf("%w: refresh token is empty", common.ErrorValidation)
	}

	next, err := s.generateRefreshToken()
	if err != nil {
		return nil, nil, err
	}

	rt, err := s.refreshTokens.Rotate(ctx, refreshToken, next, s.refreshTokenValidityDuration)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return nil, nil, common.ErrInvalidToken
		case errors.Is(err, common.ErrRefreshTokenExpired):
			return nil, nil, err
		}
		return nil, nil, s.internal(ctx, "refresh token rotation failed", err)
	}

	a, err := s.accounts.GetByID(ctx, rt.UserID)
	if err == nil && !a.IsActive {
		err = common.ErrAccountDisabled
	}
	if err != nil {
		_ = s.refreshTokens.Delete(ctx, next)
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrInvalidToken
		}
		return nil, nil, err
	}

	access, err := s.generateAccessToken(a)
	if err != nil {
		return nil, nil, err
	}
	return a, &Session{AccessToken: access, RefreshToken: next, ExpiresIn: s.accessTokenValidityDuration}, nil
}

// Logout revokes the access token described by claims until it would have
// expired anyway. A refresh token, when given, is deleted if it belongs to
// the same account.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims, refreshToken string) error {
	var until time.Time
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if err := s.revoked.Revoke(ctx, claims.ID, until); err != nil {
		return s.internal(ctx, "token revocation failed", err)
	}

	if refreshToken != "" {
		rt, err := s.refreshTokens.Find(ctx, refreshToken)
		switch {
		case errors.Is(err, common.ErrorNotFound):
		case err != nil:
			return s.internal(ctx, "refresh token lookup failed", err)
		case rt.UserID == claims.UserID:
			if err := s.refreshTokens.Delete(ctx, refreshToken); err != nil {
				return s.internal(ctx, "refresh token delete failed", err)
			}
		}
	}

	s.log.Info(ctx, "logout", "account_id", claims.UserID)
	return nil
}

// Authorize validates a bearer token and rejects revoked ones with
// common.ErrTokenRevoked.
func (s *AuthService) Authorize(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, s.internal(ctx, "revocation check failed", err)
	}
	if revoked {
		return nil, common.ErrTokenRevoked
	}
	return claims, nil
}

// --- helpers below ---

func (s *AuthService) newSession(ctx context.Context, a *models.Account, validity time.Duration) (*Session, error) {
	access, _, err := auth.GenerateToken(a.ID, a.Email, s.jwtSecret, validity)
	if err != nil {
		return nil, s.internal(ctx, "access token signing failed", err)
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, err
	}
	if err := s.refreshTokens.Create(ctx, a.ID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, s.internal(ctx, "refresh token insert failed", err)
	}
	return &Session{AccessToken: access, RefreshToken: refresh, ExpiresIn: validity}, nil
}

func (s *AuthService) generateAccessToken(a *models.Account) (string, error) {
	token, _, err := auth.GenerateToken(a.ID, a.Email, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

func (s *AuthService) generateRefreshToken() (string, error) {
	token, err := common.MakeRandHexString(32)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

func (s *AuthService) internal(ctx context.Context, msg string, err error) error {
	s.log.Error(ctx, msg, "error", err)
	return fmt.Errorf("%w: %s", common.ErrorInternal, msg)
}
