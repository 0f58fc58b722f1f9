package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		a    Account
		want string
	}{
		{"both names", Account{Email: "a@x.com", FirstName: str("Ann"), LastName: str("Lee")}, "Ann Lee"},
		{"first only", Account{Email: "a@x.com", FirstName: str("Ann")}, "Ann"},
		{"empty names fall back", Account{Email: "a@x.com", FirstName: str("")}, "a@x.com"},
		{"no names", Account{Email: "a@x.com"}, "a@x.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.a.DisplayName())
		})
	}
}

func TestSummary(t *testing.T) {
	login := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	a := Account{
		ID:            "id-1",
		Email:         "a@x.com",
		FirstName:     str("Ann"),
		PhoneNumber:   str("+371"),
		IsActive:      true,
		CreatedAt:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		LastLoginAt:   &login,
		LoyaltyPoints: 1100,
		LoyaltyTier:   "SILVER",
	}
	s := a.Summary()
	require.Contains(t, s, "Ann <a@x.com>")
	require.Contains(t, s, "SILVER (1100 points)")
	require.Contains(t, s, "phone:      +371")
	require.Contains(t, s, "last login: 2024-05-01T10:00:00Z")
}
