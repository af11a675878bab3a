// Package services contains the server-side session lifecycle: sign-up,
// sign-in, sign-out and access-token renewal (SessionService), and the
// read-only request check that guards protected operations (Authenticator).
// Neither knows about a transport.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/audit"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/authkeeper/internal/shared"
	"github.com/google/uuid"
)

// Test seams for identifier generation.
var (
	newClientID     = uuid.NewString
	newRefreshToken = shared.NewRefreshToken
)

type SignUpParams struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
}

type SignInResult struct {
	AccessToken  string
	RefreshToken string
	ClientID     string
	ExpiresIn    int64
}

// RenewResult carries the new access token. RefreshToken is set only when
// rotation is enabled; otherwise the caller keeps using the old one.
type RenewResult struct {
	AccessToken  string
	ExpiresIn    int64
	RefreshToken string
}

type SessionOptions struct {
	RotateRefreshToken bool
	Audit              audit.Sink
	Metrics            *metrics.Recorder
}

// SessionService is the only component that changes persisted session
// state. Every mutation is one read-modify-save cycle inside a store
// transaction; a concurrent writer makes the save fail with
// common.ErrVersionConflict, which is returned as is.
type SessionService struct {
	repos   repomanager.RepositoryManager
	issuer  *auth.Issuer
	hasher  *auth.PasswordHasher
	logger  logging.Logger
	rotate  bool
	audit   audit.Sink
	metrics *metrics.Recorder
}

func NewSessionService(m repomanager.RepositoryManager, issuer *auth.Issuer, hasher *auth.PasswordHasher, logger logging.Logger, opts SessionOptions) *SessionService {
	if opts.Audit == nil {
		opts.Audit = audit.NopSink{}
	}
	return &SessionService{
		repos:   m,
		issuer:  issuer,
		hasher:  hasher,
		logger:  logger.With("module", "sessions"),
		rotate:  opts.RotateRefreshToken,
		audit:   opts.Audit,
		metrics: opts.Metrics,
	}
}

// SignUp registers a new user. The password is hashed before the
// existence check, so both outcomes cost the same.
func (s *SessionService) SignUp(ctx context.Context, p SignUpParams) (user *models.User, err error) {
	defer func() { s.metrics.Observe(metrics.OpSignUp, err) }()

	p.Username = strings.TrimSpace(p.Username)
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = strings.TrimSpace(p.Email)
	if p.Username == "" || p.Password == "" {
		return nil, common.ErrValidation
	}

	hash, err := s.hasher.Hash(p.Password)
	if err != nil {
		s.logger.Error(ctx, "hash password", "error", err)
		return nil, common.ErrorInternal
	}

	repo := s.repos.Users()
	exists, err := repo.Exists(ctx, p.Username)
	if err != nil {
		s.logger.Error(ctx, "check user existence", "error", err)
		return nil, common.ErrorInternal
	}
	if exists {
		return nil, common.ErrUsernameTaken
	}

	user, err = repo.Create(ctx, &models.User{
		Username:     p.Username,
		PasswordHash: hash,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Email:        p.Email,
	})
	if err != nil {
		if errors.Is(err, common.ErrUsernameTaken) || errors.Is(err, common.ErrEmailTaken) {
			return nil, err
		}
		s.logger.Error(ctx, "create user", "error", err)
		return nil, common.ErrorInternal
	}

	s.record(ctx, audit.NewEvent(audit.ActionSignUp, user.Username, ""))
	return user, nil
}

// SignIn checks the credentials and registers a new client for the
// calling device. Unknown users and wrong passwords are indistinguishable.
func (s *SessionService) SignIn(ctx context.Context, username, password string) (res *SignInResult, err error) {
	defer func() { s.metrics.Observe(metrics.OpSignIn, err) }()

	username = strings.TrimSpace(username)
	user, err := s.repos.Users().FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "find user", "error", err)
		return nil, common.ErrorInternal
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	clientID := newClientID()
	refreshToken, err := newRefreshToken()
	if err != nil {
		s.logger.Error(ctx, "generate refresh token", "error", err)
		return nil, common.ErrorInternal
	}

	err = s.repos.WithinTx(ctx, func(ctx context.Context, repo users.Repository) error {
		current, err := repo.FindByUsername(ctx, username)
		if err != nil {
			return err
		}

		accessToken, expiresIn, err := s.issuer.Issue(current, clientID)
		if err != nil {
			return err
		}

		current.AddClient(clientID, refreshToken)
		if _, err := repo.Save(ctx, current); err != nil {
			return err
		}

		res = &SignInResult{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ClientID:     clientID,
			ExpiresIn:    expiresIn,
		}
		return nil
	})
	if err != nil {
		return nil, s.storeError(ctx, "sign in", err)
	}

	s.logger.Info(ctx, "signed in", "username", username, "client_id", clientID)
	s.record(ctx, audit.NewEvent(audit.ActionSignIn, username, clientID))
	return res, nil
}

// SignOut invalidates one client of the user. Unknown users, unknown
// clients and clients that are already invalidated all report
// common.ErrAlreadyLoggedOut.
func (s *SessionService) SignOut(ctx context.Context, username, clientID string) (user *models.User, err error) {
	defer func() { s.metrics.Observe(metrics.OpSignOut, err) }()

	username = strings.TrimSpace(username)
	err = s.repos.WithinTx(ctx, func(ctx context.Context, repo users.Repository) error {
		current, err := repo.FindByUsername(ctx, username)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrAlreadyLoggedOut
			}
			return err
		}

		client := current.FindClientByID(clientID)
		if client == nil || !client.Active() {
			return common.ErrAlreadyLoggedOut
		}
		client.Invalidate()

		user, err = repo.Save(ctx, current)
		return err
	})
	if err != nil {
		return nil, s.storeError(ctx, "sign out", err)
	}

	s.logger.Info(ctx, "signed out", "username", username, "client_id", clientID)
	s.record(ctx, audit.NewEvent(audit.ActionSignOut, username, clientID))
	return user, nil
}

// RenewToken issues a new access token for the client identified by the
// (refreshToken, clientID) pair. Neither value is enough on its own.
func (s *SessionService) RenewToken(ctx context.Context, refreshToken, clientID string) (res *RenewResult, err error) {
	defer func() { s.metrics.Observe(metrics.OpRenewToken, err) }()

	if refreshToken == "" || clientID == "" {
		return nil, common.ErrInvalidToken
	}

	var username string
	err = s.repos.WithinTx(ctx, func(ctx context.Context, repo users.Repository) error {
		owner, err := repo.FindByRefreshToken(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrClientNotFound
			}
			return err
		}

		client := models.FindActiveClientByRefreshToken(owner.Clients, refreshToken, clientID)
		if client == nil {
			return common.ErrClientNotFound
		}

		accessToken, expiresIn, err := s.issuer.Issue(owner, client.ClientID)
		if err != nil {
			return err
		}
		res = &RenewResult{AccessToken: accessToken, ExpiresIn: expiresIn}
		username = owner.Username

		if !s.rotate {
			return nil
		}

		next, err := newRefreshToken()
		if err != nil {
			return err
		}
		client.RefreshToken = next
		if _, err := repo.Save(ctx, owner); err != nil {
			return err
		}
		res.RefreshToken = next
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrClientNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, s.storeError(ctx, "renew token", err)
	}

	s.record(ctx, audit.NewEvent(audit.ActionRenew, username, clientID))
	return res, nil
}

// Sessions lists the active clients of a user.
func (s *SessionService) Sessions(ctx context.Context, username string) ([]models.Client, error) {
	user, err := s.repos.Users().FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		s.logger.Error(ctx, "find user", "error", err)
		return nil, common.ErrorInternal
	}
	return user.ActiveClients(), nil
}

// storeError passes the session-level sentinels through and collapses
// everything else into common.ErrorInternal.
func (s *SessionService) storeError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, common.ErrAlreadyLoggedOut),
		errors.Is(err, common.ErrVersionConflict),
		errors.Is(err, common.ErrInvalidCredentials):
		return err
	case errors.Is(err, common.ErrorNotFound):
		// The user vanished between the credential check and the write.
		return common.ErrInvalidCredentials
	}
	s.logger.Error(ctx, op, "error", err)
	return common.ErrorInternal
}

func (s *SessionService) record(ctx context.Context, e audit.Event) {
	if err := s.audit.Record(ctx, e); err != nil {
		s.logger.Warn(ctx, "audit record failed", "action", string(e.Action), "error", err)
	}
}
