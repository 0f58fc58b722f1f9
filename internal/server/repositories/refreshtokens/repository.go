// Package refreshtokens stores the opaque refresh tokens issued at login.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

type Repository interface {
	// Create stores a new refresh token for userID with an expiry of now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Find returns common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete is a no-op for unknown tokens.
	Delete(ctx context.Context, token string) error

	// Rotate consumes oldToken and stores newToken for the same user in one
	// step, so a refresh token can be redeemed at most once. An unknown token
	// yields common.ErrorNotFound; an expired one is removed and yields
	// common.ErrRefreshTokenExpired.
	Rotate(ctx context.Context, oldToken, newToken string, validity time.Duration) (*models.RefreshToken, error)
}
