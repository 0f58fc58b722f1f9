// Package models defines the client-side view of the account service
// resources, decoded from its JSON responses.
package models

import (
	"fmt"
	"strings"
	"time"
)

type Account struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	FirstName     *string    `json:"firstName"`
	LastName      *string    `json:"lastName"`
	PhoneNumber   *string    `json:"phoneNumber"`
	IsActive      bool       `json:"isActive"`
	EmailVerified bool       `json:"emailVerified"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     *time.Time `json:"updatedAt"`
	LastLoginAt   *time.Time `json:"lastLoginAt"`
	LoyaltyPoints int64      `json:"loyaltyPoints"`
	LoyaltyTier   string     `json:"loyaltyTier"`
}

// Session is the token pair handed out by register, login and refresh.
type Session struct {
	Token        string
	RefreshToken string
	ExpiresIn    time.Duration
}

// DisplayName joins first and last name, falling back to the email.
func (a *Account) DisplayName() string {
	var parts []string
	for _, p := range []*string{a.FirstName, a.LastName} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}
	if len(parts) == 0 {
		return a.Email
	}
	return strings.Join(parts, " ")
}

// Summary renders the account for the terminal.
func (a *Account) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s <%s>\n", a.DisplayName(), a.Email)
	fmt.Fprintf(&b, "  id:         %s\n", a.ID)
	fmt.Fprintf(&b, "  tier:       %s (%d points)\n", a.LoyaltyTier, a.LoyaltyPoints)
	fmt.Fprintf(&b, "  active:     %t, verified: %t\n", a.IsActive, a.EmailVerified)
	if a.PhoneNumber != nil {
		fmt.Fprintf(&b, "  phone:      %s\n", *a.PhoneNumber)
	}
	fmt.Fprintf(&b, "  created:    %s\n", a.CreatedAt.Format(time.RFC3339))
	if a.LastLoginAt != nil {
		fmt.Fprintf(&b, "  last login: %s\n", a.LastLoginAt.Format(time.RFC3339))
	}
	return b.String()
}
