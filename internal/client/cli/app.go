package cli

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// authAPI is the part of the gRPC client the CLI calls.
// *grpc.AuthClient satisfies it.
type authAPI interface {
	SignUp(ctx context.Context, in *gs.SignUpRequest, opts ...grpc.CallOption) (*auth.TokenCollection, error)
	SignIn(ctx context.Context, in *gs.SignInRequest, opts ...grpc.CallOption) (*auth.TokenCollection, error)
	Refresh(ctx context.Context, in *gs.RefreshRequest, opts ...grpc.CallOption) (*gs.AccessTokenResponse, error)
	Current(ctx context.Context, in *gs.CurrentRequest, opts ...grpc.CallOption) (*gs.UserResponse, error)
	Confirm(ctx context.Context, in *gs.ConfirmRequest, opts ...grpc.CallOption) (*gs.Empty, error)
	RequestPasswordReset(ctx context.Context, in *gs.RequestPasswordResetRequest, opts ...grpc.CallOption) (*gs.Empty, error)
	ResetPassword(ctx context.Context, in *gs.ResetPasswordRequest, opts ...grpc.CallOption) (*gs.Empty, error)
	Ping(ctx context.Context, in *gs.PingRequest, opts ...grpc.CallOption) (*gs.PingResponse, error)
}

type App struct {
	config *config.Config
	conn   io.Closer
	api    authAPI
	reader *bufio.Reader
	out    io.Writer

	userName     string
	accessToken  string
	refreshToken string

	mu   sync.Mutex
	mode Mode
}

func NewApp(c *config.Config) (*App, error) {

	conn, err := grpc.NewClient(c.ServerEndpointAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}

	a := newApp(c, gs.NewAuthClient(conn), bufio.NewReader(os.Stdin), os.Stdout)
	a.conn = conn
	return a, nil
}

func newApp(c *config.Config, api authAPI, reader *bufio.Reader, out io.Writer) *App {
	return &App{config: c, api: api, reader: reader, out: out}
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode != mode {
		a.mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// Run starts the connectivity watcher and the REPL on stdin. It returns when
// the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.conn != nil {
		defer a.conn.Close()
	}

	log.Println("Welcome to gophauth CLI (type 'help' for commands)")

	a.checkOnline(ctx)
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.status, bufio.NewScanner(a.reader))
}

func (a *App) isLoggedIn() bool {
	return a.accessToken != ""
}

func (a *App) status() string {
	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	if m := a.Mode(); m != "" {
		s = s + string(m)
	}
	return s
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if _, err := a.api.Ping(ctx, &gs.PingRequest{}); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher pings the server every interval until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// call bounds a single request with the configured timeout.
func (a *App) call(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}
