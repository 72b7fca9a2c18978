package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

type fakeAPI struct {
	signUp  *gs.SignUpRequest
	signIn  *gs.SignInRequest
	confirm *gs.ConfirmRequest
	forgot  *gs.RequestPasswordResetRequest
	reset   *gs.ResetPasswordRequest

	accessSeen   []string
	validAccess  string
	refreshCalls int
	pingErr      error
	err          error
}

func (f *fakeAPI) SignUp(_ context.Context, in *gs.SignUpRequest, _ ...grpc.CallOption) (*auth.TokenCollection, error) {
	f.signUp = in
	if f.err != nil {
		return nil, f.err
	}
	return &auth.TokenCollection{Type: common.TokenTypeBearer, AccessToken: "a1", RefreshToken: "r1"}, nil
}

func (f *fakeAPI) SignIn(_ context.Context, in *gs.SignInRequest, _ ...grpc.CallOption) (*auth.TokenCollection, error) {
	f.signIn = in
	if f.err != nil {
		return nil, f.err
	}
	return &auth.TokenCollection{Type: common.TokenTypeBearer, AccessToken: "a1", RefreshToken: "r1"}, nil
}

func (f *fakeAPI) Refresh(_ context.Context, in *gs.RefreshRequest, _ ...grpc.CallOption) (*gs.AccessTokenResponse, error) {
	f.refreshCalls++
	if in.RefreshToken != "r1" {
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}
	return &gs.AccessTokenResponse{AccessToken: "a2"}, nil
}

func (f *fakeAPI) Current(ctx context.Context, _ *gs.CurrentRequest, _ ...grpc.CallOption) (*gs.UserResponse, error) {
	md, _ := metadata.FromOutgoingContext(ctx)
	token := strings.Join(md.Get(common.AccessTokenHeaderName), "")
	f.accessSeen = append(f.accessSeen, token)
	if token != f.validAccess {
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}
	return &gs.UserResponse{Username: "alice"}, nil
}

func (f *fakeAPI) Confirm(_ context.Context, in *gs.ConfirmRequest, _ ...grpc.CallOption) (*gs.Empty, error) {
	f.confirm = in
	return &gs.Empty{}, f.err
}

func (f *fakeAPI) RequestPasswordReset(_ context.Context, in *gs.RequestPasswordResetRequest, _ ...grpc.CallOption) (*gs.Empty, error) {
	f.forgot = in
	return &gs.Empty{}, f.err
}

func (f *fakeAPI) ResetPassword(_ context.Context, in *gs.ResetPasswordRequest, _ ...grpc.CallOption) (*gs.Empty, error) {
	f.reset = in
	return &gs.Empty{}, f.err
}

func (f *fakeAPI) Ping(context.Context, *gs.PingRequest, ...grpc.CallOption) (*gs.PingResponse, error) {
	if f.pingErr != nil {
		return nil, f.pingErr
	}
	return &gs.PingResponse{Status: "ok"}, nil
}

func newTestApp(t *testing.T, api *fakeAPI, input string) (*App, *bytes.Buffer) {
	t.Helper()

	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) { return []byte("passw0rd1"), nil }

	cfg := &config.Config{}
	cfg.LoadDefaults()

	var out bytes.Buffer
	return newApp(cfg, api, bufio.NewReader(strings.NewReader(input)), &out), &out
}

func TestApp_SignUp(t *testing.T) {
	api := &fakeAPI{}
	a, out := newTestApp(t, api, "alice\nalice@example.com\n")

	require.NoError(t, a.SignUp(context.Background()))

	assert.Equal(t, &gs.SignUpRequest{Username: "alice", Email: "alice@example.com", Password: "passw0rd1"}, api.signUp)
	assert.True(t, a.isLoggedIn())
	assert.Equal(t, "r1", a.refreshToken)
	assert.Contains(t, out.String(), "Account created")
}

func TestApp_SignIn_Error(t *testing.T) {
	api := &fakeAPI{err: status.Error(codes.Unauthenticated, "wrong login or password")}
	a, out := newTestApp(t, api, "alice\n")

	require.Error(t, a.SignIn(context.Background()))

	assert.Equal(t, "alice", api.signIn.Login)
	assert.False(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "error: wrong login or password")
}

func TestApp_Current_RefreshesOnce(t *testing.T) {
	api := &fakeAPI{validAccess: "a2"}
	a, out := newTestApp(t, api, "alice\n")
	require.NoError(t, a.SignIn(context.Background()))

	require.NoError(t, a.Current(context.Background()))

	assert.Equal(t, []string{"a1", "a2"}, api.accessSeen)
	assert.Equal(t, 1, api.refreshCalls)
	assert.Contains(t, out.String(), "Signed in as alice")
}

func TestApp_Current_NotLoggedIn(t *testing.T) {
	a, _ := newTestApp(t, &fakeAPI{}, "")
	assert.ErrorIs(t, a.Current(context.Background()), errNotLoggedIn)
}

func TestApp_Refresh_Missing(t *testing.T) {
	a, _ := newTestApp(t, &fakeAPI{}, "")
	assert.ErrorIs(t, a.Refresh(context.Background()), common.ErrRefreshTokenMissing)
}

func TestApp_ConfirmForgotReset(t *testing.T) {
	api := &fakeAPI{}
	a, _ := newTestApp(t, api, "ctok\nalice@example.com\nrtok\n")

	require.NoError(t, a.Confirm(context.Background()))
	require.NoError(t, a.ForgotPassword(context.Background()))
	require.NoError(t, a.ResetPassword(context.Background()))

	assert.Equal(t, "ctok", api.confirm.Token)
	assert.Equal(t, "alice@example.com", api.forgot.Email)
	assert.Equal(t, &gs.ResetPasswordRequest{Token: "rtok", Password: "passw0rd1"}, api.reset)
}

func TestApp_Logout(t *testing.T) {
	a, _ := newTestApp(t, &fakeAPI{}, "alice\n")
	require.NoError(t, a.SignIn(context.Background()))

	require.NoError(t, a.Logout(context.Background()))

	assert.False(t, a.isLoggedIn())
	assert.Empty(t, a.refreshToken)
	assert.Empty(t, a.status())
}

func TestApp_OnlineStatus(t *testing.T) {
	api := &fakeAPI{}
	a, _ := newTestApp(t, api, "")

	a.checkOnline(context.Background())
	assert.Equal(t, ModeOnline, a.Mode())

	api.pingErr = status.Error(codes.Unavailable, "down")
	a.checkOnline(context.Background())
	assert.Equal(t, ModeOffline, a.Mode())
}

func TestApp_WatcherStopsOnCancel(t *testing.T) {
	a, _ := newTestApp(t, &fakeAPI{}, "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.StartOnlineStatusWatcher(ctx, 10*time.Millisecond)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
	assert.Equal(t, ModeOnline, a.Mode())
}
