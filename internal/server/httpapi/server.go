// Package httpapi exposes the auth operations over HTTP/JSON using a
// gorilla/mux router.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/dmitrijs2005/gophauth/internal/server/session"
	"github.com/gorilla/mux"
)

const (
	shutdownTimeout = 10 * time.Second
	apiPrefix       = "/api/auth"
)

type HTTPServer struct {
	address       string
	users         *services.UserService
	sessions      *session.Manager
	logger        logging.Logger
	publicBaseURL string
	trustProxy    bool
}

// NewHTTPServer builds the server. publicBaseURL, when set, is used in
// e-mailed links instead of the request's own base URL. trustProxy makes
// X-Forwarded-Proto decide the request scheme.
func NewHTTPServer(a string, l logging.Logger, us *services.UserService, sm *session.Manager, publicBaseURL string, trustProxy bool) *HTTPServer {
	return &HTTPServer{
		address:       a,
		logger:        l.With("module", "http_server"),
		users:         us,
		sessions:      sm,
		publicBaseURL: publicBaseURL,
		trustProxy:    trustProxy,
	}
}

// Router returns the routes with their middleware.
func (s *HTTPServer) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.recoverer)
	r.Use(s.requestLogger)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	// Full paths on the root router keep 404 and 405 on its handlers.
	r.HandleFunc(apiPrefix+"/signup", s.handleSignUp).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/signin", s.handleSignIn).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/refresh", s.handleRefresh).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/confirm", s.handleConfirm).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/password/forgot", s.handleForgotPassword).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/password/reset", s.handleResetPassword).Methods(http.MethodPost)
	r.Handle(apiPrefix+"/current", s.requireUser(http.HandlerFunc(s.handleCurrent))).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *HTTPServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
