// Package server wires the configuration, storage, token machinery and both
// transports together and runs them until the process is asked to stop.
package server

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/httpapi"
	"github.com/dmitrijs2005/gophauth/internal/server/mailer"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/dmitrijs2005/gophauth/internal/server/session"
	"github.com/dmitrijs2005/gophauth/internal/server/tasks"
	"github.com/jmoiron/sqlx"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

const (
	backgroundTaskTimeout = 30 * time.Second
	drainTimeout          = 15 * time.Second
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sqlx.DB
	runner     *tasks.Runner
	httpServer *httpapi.HTTPServer
	grpcServer *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(c.LogBackend, c.LogLevel, os.Stdout)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewFromConfig(c)
	if err != nil {
		return nil, fmt.Errorf("token factory init error: %w", err)
	}

	rm, err := repomanager.NewRepositoryManager(c.DatabaseDriver)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	db, err := repomanager.Open(ctx, c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	notifier, err := newNotifier(c, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	runner := tasks.NewRunner(logger, backgroundTaskTimeout)
	hasher := cryptox.NewPasswordHasher(0)

	sessions := session.NewManager(tokens, rm.Users(db), notifier, runner, hasher, logger)
	us, err := services.NewUserService(db, rm, sessions, hasher, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		config:     c,
		logger:     logger,
		db:         db,
		runner:     runner,
		httpServer: httpapi.NewHTTPServer(c.EndpointAddrHTTP, logger, us, sessions, c.PublicBaseURL, c.TrustProxyHeaders),
		grpcServer: gs.NewGRPCServer(c.EndpointAddrGRPC, logger, us, sessions, linkBaseURL(c)),
	}, nil
}

// newNotifier sends real mail when an SMTP server is configured and only
// logs messages otherwise.
func newNotifier(c *config.Config, logger logging.Logger) (mailer.Notifier, error) {
	renderer, err := mailer.NewRenderer()
	if err != nil {
		return nil, err
	}
	if c.SMTPServer == "" {
		return mailer.NewLogNotifier(renderer, logger), nil
	}
	return mailer.NewSMTPNotifier(mailer.SMTPConfigFromConfig(c), renderer), nil
}

// linkBaseURL is the base of links e-mailed from gRPC calls: the public
// base URL, or the HTTP endpoint when none is configured.
func linkBaseURL(c *config.Config) string {
	if c.PublicBaseURL != "" {
		return c.PublicBaseURL
	}
	host, port, err := net.SplitHostPort(c.EndpointAddrHTTP)
	if err != nil {
		return "http://localhost/"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpcServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves both transports until ctx is cancelled or a signal arrives,
// then lets background tasks finish and closes the database.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
	defer cancel()
	if err := app.runner.Close(drainCtx); err != nil {
		app.logger.Warn(drainCtx, "background tasks did not finish", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(drainCtx, "db close error", "error", err)
	}

	app.logger.Info(drainCtx, "App stopped")
}
