package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/accountkeeper/internal/client/api"
)

// Account prints the account registered under email, or the logged-in
// account when email is empty.
func (a *App) Account(ctx context.Context, email string) error {
	if !a.isLoggedIn() {
		return api.ErrNotLoggedIn
	}
	if email == "" {
		email = a.account.Email
	}

	acc, err := a.client.GetAccountByEmail(ctx, email)
	if err != nil {
		return err
	}
	if acc.ID == a.account.ID {
		a.account = acc
	}

	fmt.Fprint(a.out, acc.Summary())
	return nil
}

// AddPoints credits loyalty points to the logged-in account and shows the
// resulting tier.
func (a *App) AddPoints(ctx context.Context) error {
	if !a.isLoggedIn() {
		return api.ErrNotLoggedIn
	}

	points, err := getInt(a.reader, "Points to add", a.out)
	if err != nil {
		return err
	}
	if points <= 0 {
		return fmt.Errorf("points must be positive")
	}

	acc, err := a.client.AddLoyaltyPoints(ctx, a.account.ID, points)
	if err != nil {
		return err
	}
	before := a.account.LoyaltyTier
	a.account = acc

	fmt.Fprintf(a.out, "Balance: %d points, tier %s\n", acc.LoyaltyPoints, acc.LoyaltyTier)
	if before != "" && before != acc.LoyaltyTier {
		fmt.Fprintf(a.out, "Tier upgraded from %s to %s\n", before, acc.LoyaltyTier)
	}
	return nil
}
