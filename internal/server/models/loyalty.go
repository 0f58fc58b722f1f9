package models

import (
	"fmt"
	"strings"
)

// LoyaltyTier is the classification of an account's accumulated points.
type LoyaltyTier string

const (
	TierBronze   LoyaltyTier = "BRONZE"
	TierSilver   LoyaltyTier = "SILVER"
	TierGold     LoyaltyTier = "GOLD"
	TierPlatinum LoyaltyTier = "PLATINUM"
)

// Tier thresholds, inclusive lower bounds.
const (
	SilverThreshold   int64 = 1000
	GoldThreshold     int64 = 5000
	PlatinumThreshold int64 = 10000
)

// TierForPoints maps a points total to its tier. It is total over int64:
// anything below SilverThreshold, negatives included, is BRONZE.
func TierForPoints(points int64) LoyaltyTier {
	switch {
	case points >= PlatinumThreshold:
		return TierPlatinum
	case points >= GoldThreshold:
		return TierGold
	case points >= SilverThreshold:
		return TierSilver
	default:
		return TierBronze
	}
}

// ParseTier accepts a tier name in any letter case.
func ParseTier(s string) (LoyaltyTier, error) {
	t := LoyaltyTier(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case TierBronze, TierSilver, TierGold, TierPlatinum:
		return t, nil
	}
	return "", fmt.Errorf("unknown loyalty tier %q", s)
}

// ApplyPoints adds delta to the account and recomputes its tier.
func (a *Account) ApplyPoints(delta int64) {
	a.LoyaltyPoints += delta
	a.LoyaltyTier = TierForPoints(a.LoyaltyPoints)
}
