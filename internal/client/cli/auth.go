package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/docme/internal/api"
	"github.com/dmitrijs2005/docme/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for the account details and creates the account on the
// server. It does not log in.
//
// The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Enter your name", a.out)
	if err != nil {
		return err
	}
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeBytes(password)

	req := api.RegisterRequest{Email: email, Name: name, Username: userName, Password: string(password)}
	if err := a.auth.Register(ctx, req); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Account created, you can log in now.")
	return nil
}

// Login prompts for credentials and opens a server session. Local data stays
// usable without one; the session is needed for sync only.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	// AuthService.Login wipes password.
	if err := a.auth.Login(ctx, userName, password); err != nil {
		a.log.Warn(ctx, "login failed", "user", userName, "error", err)
		return err
	}

	a.setUserName(userName)
	a.setMode(ModeOnline)
	a.log.Info(ctx, "logged in", "user", userName)
	fmt.Fprintf(a.out, "Logged in as %s\n", userName)
	return nil
}

// Logout forgets the stored session. Local folders and documents are kept.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.setUserName("")
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Me prints the account the session belongs to.
func (a *App) Me(ctx context.Context) error {
	u, err := a.auth.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (%s)", u.Username, u.Name)
	if u.Email != "" {
		fmt.Fprintf(a.out, " <%s>", u.Email)
	}
	fmt.Fprintln(a.out)
	return nil
}
