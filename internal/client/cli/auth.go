package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
)

// Indirections over the interactive input helpers, swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getInt        = GetInt
	getYesNo      = GetYesNo
)

// Register prompts for email, password and names and creates the account.
// A successful registration also logs the user in.
//
// The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	exists, err := a.client.Exists(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%s is already registered, use login", email)
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	firstName, err := getSimpleText(a.reader, "First name (optional)", a.out)
	if err != nil {
		return err
	}
	lastName, err := getSimpleText(a.reader, "Last name (optional)", a.out)
	if err != nil {
		return err
	}

	acc, err := a.client.Register(ctx, email, password, firstName, lastName)
	if err != nil {
		return err
	}
	a.account = acc

	fmt.Fprintln(a.out, "Registration successful")
	return nil
}

// Login prompts for credentials and opens a session.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	rememberMe, err := getYesNo(a.reader, "Remember me?", a.out)
	if err != nil {
		return err
	}

	acc, err := a.client.Login(ctx, email, password, rememberMe)
	if err != nil {
		return fmt.Errorf("login unsuccessful: %w", err)
	}
	a.account = acc

	fmt.Fprintln(a.out, "Login successful")
	return nil
}

// Logout ends the server session and forgets the local account.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		return nil
	}
	a.account = nil
	return a.client.Logout(ctx)
}
