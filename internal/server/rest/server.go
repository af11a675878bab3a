// Package rest is the HTTP/JSON gateway of the session service. Routes and
// response bodies follow the historic JSON API:
//
//	POST /signup   {username, password, firstName, lastName, email}
//	POST /signin   {username, password}
//	POST /token    {refreshToken, clientId}
//	POST /signout  {username, clientId}
//	GET  /me       (access token required)
//	POST /me       {token}
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/rs/cors"
)

const shutdownTimeout = 5 * time.Second

type SessionManager interface {
	SignUp(ctx context.Context, p services.SignUpParams) (*models.User, error)
	SignIn(ctx context.Context, username, password string) (*services.SignInResult, error)
	SignOut(ctx context.Context, username, clientID string) (*models.User, error)
	RenewToken(ctx context.Context, refreshToken, clientID string) (*services.RenewResult, error)
	Sessions(ctx context.Context, username string) ([]models.Client, error)
}

type RequestAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*services.Identity, error)
}

type RESTServer struct {
	address        string
	sessions       SessionManager
	authn          RequestAuthenticator
	metrics        http.Handler
	allowedOrigins []string
	logger         logging.Logger
}

// NewRESTServer builds the gateway. metricsHandler may be nil, in which
// case /metrics is not served.
func NewRESTServer(a string, l logging.Logger, sessions SessionManager, authn RequestAuthenticator, metricsHandler http.Handler, allowedOrigins []string) *RESTServer {
	return &RESTServer{
		address:        a,
		sessions:       sessions,
		authn:          authn,
		metrics:        metricsHandler,
		allowedOrigins: allowedOrigins,
		logger:         l.With("module", "rest_server"),
	}
}

// Handler returns the routed, CORS-wrapped handler.
func (s *RESTServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": http.StatusOK})
	})
	mux.HandleFunc("POST /signup", s.signUp)
	mux.HandleFunc("POST /signin", s.signIn)
	mux.HandleFunc("POST /token", s.renewToken)
	mux.HandleFunc("POST /signout", s.signOut)
	mux.Handle("GET /me", s.requireToken(http.HandlerFunc(s.me)))
	mux.Handle("POST /me", s.requireToken(http.HandlerFunc(s.me)))
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Access-Token"},
		AllowCredentials: true,
	})

	return corsHandler.Handler(s.logRequests(mux))
}

func (s *RESTServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve handles requests on lis until ctx is cancelled, then shuts down
// and waits up to shutdownTimeout for in-flight requests.
func (s *RESTServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
