package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	usernameConstraint = "users_username_key"
	emailConstraint    = "users_email_key"

	uniqueViolation = "23505"
)

// PostgresRepository implements Repository over dbx.DBTX, so it works the
// same on *sql.DB and inside a transaction.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query :=
		`SELECT id, username, password_hash, first_name, last_name, COALESCE(email, ''), version, created_at
		 FROM users
		 WHERE username = $1
		 `
	return r.findUser(ctx, query, username)
}

func (r *PostgresRepository) FindByRefreshToken(ctx context.Context, refreshToken string) (*models.User, error) {
	query :=
		`SELECT u.id, u.username, u.password_hash, u.first_name, u.last_name, COALESCE(u.email, ''), u.version, u.created_at
		 FROM users u
		 JOIN clients c ON c.user_id = u.id
		 WHERE c.refresh_token = $1 AND NOT c.invalidated
		 `
	return r.findUser(ctx, query, refreshToken)
}

func (r *PostgresRepository) findUser(ctx context.Context, query string, arg string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.Email, &user.Version, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	clients, err := r.loadClients(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Clients = clients

	return user, nil
}

func (r *PostgresRepository) loadClients(ctx context.Context, userID string) ([]models.Client, error) {
	query :=
		`SELECT client_id, refresh_token, invalidated, created_at
		 FROM clients
		 WHERE user_id = $1
		 ORDER BY seq
		 `
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	clients := make([]models.Client, 0)
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ClientID, &c.RefreshToken, &c.Invalidated, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return clients, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (username, password_hash, first_name, last_name, email)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		 RETURNING id, version, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.PasswordHash, user.FirstName, user.LastName, user.Email,
	).Scan(&user.ID, &user.Version, &user.CreatedAt)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}

	user.Clients = make([]models.Client, 0)
	return user, nil
}

func (r *PostgresRepository) Save(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`UPDATE users
		 SET first_name = $2, last_name = $3, email = NULLIF($4, ''), version = version + 1
		 WHERE id = $1 AND version = $5
		 RETURNING version
		 `

	var version int64
	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Email, user.Version,
	).Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrVersionConflict
		}
		return nil, mapUniqueViolation(err)
	}

	upsert :=
		`INSERT INTO clients (client_id, user_id, refresh_token, invalidated, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (client_id) DO UPDATE
		 SET refresh_token = EXCLUDED.refresh_token,
		     invalidated = clients.invalidated OR EXCLUDED.invalidated
		 WHERE clients.user_id = EXCLUDED.user_id
		 `
	for i := range user.Clients {
		c := &user.Clients[i]
		if _, err := r.db.ExecContext(ctx, upsert, c.ClientID, user.ID, c.RefreshToken, c.Invalidated, c.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
	}

	user.Version = version
	return user, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, username string) error {
	query := `DELETE FROM users WHERE username = $1`

	res, err := r.db.ExecContext(ctx, query, username)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// mapUniqueViolation turns the unique constraint errors of the users table
// into the matching sentinel and wraps everything else.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case usernameConstraint:
			return common.ErrUsernameTaken
		case emailConstraint:
			return common.ErrEmailTaken
		}
	}
	return fmt.Errorf("db error: %w", err)
}
