// Package server wires the authkeeper server together: storage, token
// issuer, session service, and the gRPC and HTTP transports. It handles
// graceful shutdown on SIGINT/SIGTERM/SIGQUIT.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/audit"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/rest"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"

	gs "github.com/dmitrijs2005/authkeeper/internal/server/grpc"
)

// openPostgres is a seam for tests.
var openPostgres = func(ctx context.Context, dsn string) (repomanager.RepositoryManager, error) {
	return repomanager.OpenPostgres(ctx, dsn)
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	repos    repomanager.RepositoryManager
	sessions *services.SessionService
	authn    *services.Authenticator
	metrics  *metrics.Recorder
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	repos, err := openRepositories(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	var claims auth.ClaimsProvider = auth.NoClaims
	if c.ProfileClaims {
		claims = auth.ProfileClaims
	}
	issuer, err := auth.NewIssuer([]byte(c.SecretKey), c.AccessTokenValidityDuration, claims)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	sink, err := newAuditSink(ctx, c, logger)
	if err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("audit init error: %w", err)
	}

	rec := metrics.New()
	sessions := services.NewSessionService(repos, issuer, auth.NewPasswordHasher(c.BcryptCost), logger, services.SessionOptions{
		RotateRefreshToken: c.RotateRefreshToken,
		Audit:              sink,
		Metrics:            rec,
	})
	authn := services.NewAuthenticator(repos.Users(), issuer, logger, rec)

	logger.Info(ctx, "sessions configured",
		"access_token_ttl", issuer.TTL().String(),
		"rotate_refresh_token", c.RotateRefreshToken,
		"profile_claims", c.ProfileClaims,
		"memory_store", c.UsesMemoryStore())

	return &App{
		config:   c,
		logger:   logger,
		repos:    repos,
		sessions: sessions,
		authn:    authn,
		metrics:  rec,
	}, nil
}

func openRepositories(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, error) {
	if c.UsesMemoryStore() {
		return repomanager.NewMemoryRepositoryManager(), nil
	}
	return openPostgres(ctx, c.DatabaseDSN)
}

func newAuditSink(ctx context.Context, c *config.Config, logger logging.Logger) (audit.Sink, error) {
	if c.S3Bucket == "" {
		return audit.NewLogSink(logger), nil
	}
	return audit.NewS3Sink(ctx, audit.S3Options{
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
	})
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
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.sessions, app.authn)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewRESTServer(app.config.EndpointAddrHTTP, app.logger, app.sessions, app.authn, app.metrics.Handler(), app.config.AllowedOrigins)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a signal arrives, or a transport
// fails, and then closes the store.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.config.EndpointAddrHTTP != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startHTTPServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "close store", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
