package cli

import (
	"context"
	"fmt"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username and password and creates a new account on
// the server. Registration never signs the user in; a login follows.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Choose a username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	res := a.sessions.Register(ctx, username, password)
	fmt.Fprintln(a.out, res.Message)
	if res.OK {
		fmt.Fprintln(a.out, "You can now log in.")
	}
	return nil
}

// Login prompts for credentials and authenticates.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	res := a.sessions.Login(ctx, username, password)
	if !res.OK {
		fmt.Fprintln(a.out, res.Message)
		return nil
	}

	if u := a.sessions.Current().Identity; u != nil {
		fmt.Fprintf(a.out, "Welcome, %s!\n", u.DisplayName())
	}
	return a.ListAccounts(ctx)
}

// Whoami prints the current identity.
func (a *App) Whoami(ctx context.Context) error {
	u := a.sessions.Current().Identity
	if u == nil {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	fmt.Fprintf(a.out, "%s (%s)\n", u.DisplayName(), u.Username)
	return nil
}

// Logout signs out and clears all client state. The local sign-out always
// succeeds even when the server call does not.
func (a *App) Logout(ctx context.Context) error {
	a.sessions.Logout(ctx)
	a.registry.Invalidate()
	a.ledger.CloseView()
	a.gate.Cancel()
	a.current = nil
	a.listed = nil
	a.shown = nil
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}
