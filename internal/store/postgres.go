package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arjun/auth-dashboard/internal/models"
)

// PostgresStore is the relational alternative to MongoStore, selected
// with STORE_DRIVER=postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the users table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name          VARCHAR(100) NOT NULL,
			email         VARCHAR(255) UNIQUE NOT NULL,
			date_of_birth VARCHAR(10)  NOT NULL,
			password      VARCHAR(255) NOT NULL,
			avatar_key    VARCHAR(255) NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ  DEFAULT NOW()
		)
	`)
	return err
}

func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	created := *u
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, date_of_birth, password)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		u.Name, u.Email, u.DateOfBirth, u.Password,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("postgres create user: %w", err)
	}
	return &created, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, `SELECT id, name, email, date_of_birth, password, avatar_key, created_at
		FROM users WHERE email = $1`, email)
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, `SELECT id, name, email, date_of_birth, password, avatar_key, created_at
		FROM users WHERE id = $1`, id)
}

func (s *PostgresStore) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx, query, arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.DateOfBirth, &u.Password, &u.AvatarKey, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("postgres get user: %w", err)
	}
	return &u, nil
}

// SetAvatarKey records the object key of the user's uploaded avatar.
func (s *PostgresStore) SetAvatarKey(ctx context.Context, id, key string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET avatar_key = $2 WHERE id = $1`, id, key)
	if err != nil {
		return fmt.Errorf("postgres set avatar key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
