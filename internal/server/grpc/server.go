// Package grpc exposes the session service as authkeeper.v1.AuthService.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"google.golang.org/grpc"
)

// SessionManager is the part of services.SessionService the transport uses.
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

type GRPCServer struct {
	address  string
	sessions SessionManager
	authn    RequestAuthenticator
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, sessions SessionManager, authn RequestAuthenticator) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		sessions: sessions,
		authn:    authn,
	}
}

// newServer creates the gRPC server with the interceptor chain and the
// service registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	srv.RegisterService(&AuthServiceDesc, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
