package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps users in process memory. It is used for local runs
// and tests; callers always get copies so nothing leaks past a Save.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*models.User)}
}

func (r *MemoryRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneUser(u), nil
}

func (r *MemoryRepository) FindByRefreshToken(ctx context.Context, refreshToken string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if refreshToken == "" {
		return nil, common.ErrorNotFound
	}
	for _, u := range r.users {
		for _, c := range u.Clients {
			if c.Active() && c.RefreshToken == refreshToken {
				return cloneUser(u), nil
			}
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) Exists(ctx context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.users[username]
	return ok, nil
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Username]; ok {
		return nil, common.ErrUsernameTaken
	}
	if r.emailTaken(user.Email, "") {
		return nil, common.ErrEmailTaken
	}

	stored := cloneUser(user)
	stored.ID = uuid.NewString()
	stored.Version = 1
	stored.CreatedAt = time.Now().UTC()
	stored.Clients = make([]models.Client, 0)
	r.users[stored.Username] = stored

	return cloneUser(stored), nil
}

func (r *MemoryRepository) Save(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.users[user.Username]
	if !ok || current.ID != user.ID || current.Version != user.Version {
		return nil, common.ErrVersionConflict
	}
	if r.emailTaken(user.Email, user.Username) {
		return nil, common.ErrEmailTaken
	}

	next := cloneUser(user)
	for i := range next.Clients {
		if prev := current.FindClientByID(next.Clients[i].ClientID); prev != nil && prev.Invalidated {
			next.Clients[i].Invalidated = true
		}
	}
	next.PasswordHash = current.PasswordHash
	next.CreatedAt = current.CreatedAt
	next.Version = current.Version + 1
	r.users[next.Username] = next

	return cloneUser(next), nil
}

func (r *MemoryRepository) Delete(ctx context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[username]; !ok {
		return common.ErrorNotFound
	}
	delete(r.users, username)
	return nil
}

// Snapshot returns copies of all stored users. It backs the transaction
// emulation of the in-memory repository manager.
func (r *MemoryRepository) Snapshot() map[string]*models.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*models.User, len(r.users))
	for k, u := range r.users {
		out[k] = cloneUser(u)
	}
	return out
}

// Restore replaces the stored users with a snapshot taken earlier.
func (r *MemoryRepository) Restore(snapshot map[string]*models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users = make(map[string]*models.User, len(snapshot))
	for k, u := range snapshot {
		r.users[k] = cloneUser(u)
	}
}

func (r *MemoryRepository) emailTaken(email, except string) bool {
	if email == "" {
		return false
	}
	for name, u := range r.users {
		if name != except && u.Email == email {
			return true
		}
	}
	return false
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Clients = make([]models.Client, len(u.Clients))
	copy(c.Clients, u.Clients)
	return &c
}
