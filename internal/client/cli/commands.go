package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

var errNotLoggedIn = errors.New("not logged in")

func (a *App) report(err error) error {
	fmt.Fprintf(a.out, "error: %s\n", status.Convert(err).Message())
	return err
}

func (a *App) storeTokens(userName string, tc *auth.TokenCollection) {
	a.userName = userName
	a.accessToken = tc.AccessToken
	a.refreshToken = tc.RefreshToken
}

func (a *App) prompt(text string) (string, error) {
	return GetSimpleText(a.reader, text, a.out)
}

func (a *App) password(text string) (string, error) {
	pw, err := GetPassword(text, a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

func (a *App) SignUp(ctx context.Context) error {
	userName, err := a.prompt("Enter user name")
	if err != nil {
		return a.report(err)
	}
	email, err := a.prompt("Enter email")
	if err != nil {
		return a.report(err)
	}
	password, err := a.password("Enter password")
	if err != nil {
		return a.report(err)
	}

	ctx, cancel := a.call(ctx)
	defer cancel()

	tc, err := a.api.SignUp(ctx, &gs.SignUpRequest{Username: userName, Email: email, Password: password})
	if err != nil {
		return a.report(err)
	}

	a.storeTokens(userName, tc)
	fmt.Fprintln(a.out, "Account created. Follow the link in the confirmation e-mail to activate it.")
	return nil
}

func (a *App) SignIn(ctx context.Context) error {
	login, err := a.prompt("Enter user name or email")
	if err != nil {
		return a.report(err)
	}
	password, err := a.password("Enter password")
	if err != nil {
		return a.report(err)
	}

	ctx, cancel := a.call(ctx)
	defer cancel()

	tc, err := a.api.SignIn(ctx, &gs.SignInRequest{Login: login, Password: password})
	if err != nil {
		return a.report(err)
	}

	a.storeTokens(login, tc)
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

// Current prints the signed-in user. An expired access token is refreshed
// once and the call retried.
func (a *App) Current(ctx context.Context) error {
	if !a.isLoggedIn() {
		return a.report(errNotLoggedIn)
	}

	u, err := a.current(ctx)
	if status.Code(err) == codes.Unauthenticated && a.refreshToken != "" {
		if a.refresh(ctx) == nil {
			u, err = a.current(ctx)
		}
	}
	if err != nil {
		return a.report(err)
	}

	a.userName = u.Username
	fmt.Fprintf(a.out, "Signed in as %s\n", u.Username)
	return nil
}

func (a *App) current(ctx context.Context) (*gs.UserResponse, error) {
	ctx, cancel := a.call(ctx)
	defer cancel()

	ctx = metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, a.accessToken)
	return a.api.Current(ctx, &gs.CurrentRequest{})
}

func (a *App) Refresh(ctx context.Context) error {
	if a.refreshToken == "" {
		return a.report(common.ErrRefreshTokenMissing)
	}
	if err := a.refresh(ctx); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Access token refreshed")
	return nil
}

func (a *App) refresh(ctx context.Context) error {
	ctx, cancel := a.call(ctx)
	defer cancel()

	resp, err := a.api.Refresh(ctx, &gs.RefreshRequest{RefreshToken: a.refreshToken})
	if err != nil {
		return err
	}
	a.accessToken = resp.AccessToken
	return nil
}

func (a *App) Confirm(ctx context.Context) error {
	token, err := a.prompt("Paste the confirmation token")
	if err != nil {
		return a.report(err)
	}

	ctx, cancel := a.call(ctx)
	defer cancel()

	if _, err := a.api.Confirm(ctx, &gs.ConfirmRequest{Token: token}); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Account activated")
	return nil
}

func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := a.prompt("Enter email")
	if err != nil {
		return a.report(err)
	}

	ctx, cancel := a.call(ctx)
	defer cancel()

	if _, err := a.api.RequestPasswordReset(ctx, &gs.RequestPasswordResetRequest{Email: email}); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "If the address is registered, a reset link is on its way")
	return nil
}

func (a *App) ResetPassword(ctx context.Context) error {
	token, err := a.prompt("Paste the reset token")
	if err != nil {
		return a.report(err)
	}
	password, err := a.password("Enter new password")
	if err != nil {
		return a.report(err)
	}

	ctx, cancel := a.call(ctx)
	defer cancel()

	if _, err := a.api.ResetPassword(ctx, &gs.ResetPasswordRequest{Token: token, Password: password}); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Password changed")
	return nil
}

func (a *App) Logout(context.Context) error {
	a.userName = ""
	a.accessToken = ""
	a.refreshToken = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
