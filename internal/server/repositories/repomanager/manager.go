// Package repomanager vends user repositories for a storage backend and
// runs work against them inside a transaction.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	// WithinTx runs fn with a repository bound to a single transaction.
	// Everything fn wrote is discarded when it returns an error.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repo users.Repository) error) error
	Close() error
}
