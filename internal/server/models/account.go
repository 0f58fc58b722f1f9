// Package models declares the server-side data model: accounts, loyalty
// tiers and refresh tokens.
package models

import "time"

// Account is a registered user with credentials, profile and loyalty state.
// PasswordHash is never serialised.
type Account struct {
	ID            string      `json:"id"`
	Email         string      `json:"email"`
	PasswordHash  string      `json:"-"`
	FirstName     *string     `json:"firstName"`
	LastName      *string     `json:"lastName"`
	PhoneNumber   *string     `json:"phoneNumber"`
	IsActive      bool        `json:"isActive"`
	EmailVerified bool        `json:"emailVerified"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     *time.Time  `json:"updatedAt"`
	LastLoginAt   *time.Time  `json:"lastLoginAt"`
	LoyaltyPoints int64       `json:"loyaltyPoints"`
	LoyaltyTier   LoyaltyTier `json:"loyaltyTier"`
}

// Clone returns a deep copy, so stores can hand out records without sharing
// pointer fields with their internal state.
func (a *Account) Clone() *Account {
	c := *a
	c.FirstName = cloneString(a.FirstName)
	c.LastName = cloneString(a.LastName)
	c.PhoneNumber = cloneString(a.PhoneNumber)
	c.UpdatedAt = cloneTime(a.UpdatedAt)
	c.LastLoginAt = cloneTime(a.LastLoginAt)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
