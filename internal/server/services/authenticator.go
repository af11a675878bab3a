package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

// Identity is the caller of a protected operation.
type Identity struct {
	User   *models.User
	Client *models.Client
	Claims *auth.Claims
}

// Authenticator checks access tokens. A token is accepted only while the
// client it was issued for is still active, so sign-out takes effect
// immediately even though the token itself has not expired.
type Authenticator struct {
	repo    users.Repository
	issuer  *auth.Issuer
	logger  logging.Logger
	metrics *metrics.Recorder
}

func NewAuthenticator(repo users.Repository, issuer *auth.Issuer, logger logging.Logger, m *metrics.Recorder) *Authenticator {
	return &Authenticator{
		repo:    repo,
		issuer:  issuer,
		logger:  logger.With("module", "authenticator"),
		metrics: m,
	}
}

func (a *Authenticator) Authenticate(ctx context.Context, token string) (id *Identity, err error) {
	defer func() { a.metrics.Observe(metrics.OpAuthenticate, err) }()

	if token == "" {
		return nil, common.ErrMissingToken
	}

	claims, err := a.issuer.Parse(token)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	user, err := a.repo.FindByUsername(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		a.logger.Error(ctx, "find user", "error", err)
		return nil, common.ErrorInternal
	}

	client := user.FindActiveClientByID(claims.ClientID)
	if client == nil {
		return nil, common.ErrInvalidToken
	}

	return &Identity{User: user, Client: client, Claims: claims}, nil
}
