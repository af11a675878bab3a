package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process. Transactions are
// serialized and rolled back by restoring a snapshot; writes made outside
// WithinTx take the same lock, so a rollback only ever undoes its own
// transaction.
type MemoryRepositoryManager struct {
	txMu sync.Mutex
	repo *users.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{repo: users.NewMemoryRepository()}
}

// Users returns the store with every write running as its own
// single-statement transaction.
func (m *MemoryRepositoryManager) Users() users.Repository {
	return &autocommitRepository{MemoryRepository: m.repo, txMu: &m.txMu}
}

func (m *MemoryRepositoryManager) WithinTx(ctx context.Context, fn func(ctx context.Context, repo users.Repository) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	snapshot := m.repo.Snapshot()
	if err := fn(ctx, m.repo); err != nil {
		m.repo.Restore(snapshot)
		return err
	}
	return nil
}

func (m *MemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m *MemoryRepositoryManager) Close() error {
	return nil
}

type autocommitRepository struct {
	*users.MemoryRepository
	txMu *sync.Mutex
}

func (r *autocommitRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return r.MemoryRepository.Create(ctx, user)
}

func (r *autocommitRepository) Save(ctx context.Context, user *models.User) (*models.User, error) {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return r.MemoryRepository.Save(ctx, user)
}

func (r *autocommitRepository) Delete(ctx context.Context, username string) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return r.MemoryRepository.Delete(ctx, username)
}
