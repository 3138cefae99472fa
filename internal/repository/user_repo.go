package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Peauntmore/Meeting-Translator/internal/model"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserRepository struct {
	DB DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{DB: db}
}

// Create inserts a new user. The unique index on email is the single
// source of truth for duplicates, so two concurrent registrations with
// the same address cannot both succeed.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	query := `INSERT INTO users (id, username, email, password_hash, is_verified, verification_token, verification_token_expires)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`
	err := r.DB.QueryRow(ctx, query,
		u.ID, u.Username, u.Email, u.PasswordHash, u.IsVerified, u.VerificationToken, u.VerificationTokenExpires,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email=$1)`
	if err := r.DB.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	query := `SELECT id, username, email, password_hash, is_verified, verification_token, verification_token_expires, created_at, updated_at
		FROM users
		WHERE email=$1`
	err := r.DB.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsVerified,
		&u.VerificationToken, &u.VerificationTokenExpires, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ConsumeVerificationToken marks the matching user verified and clears
// the token in one conditional update, so a token can only ever be
// consumed once even under concurrent requests. Expired or unknown
// tokens both come back as ErrNotFound.
func (r *UserRepository) ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (*model.User, error) {
	var u model.User
	query := `UPDATE users
		SET is_verified = TRUE, verification_token = NULL, verification_token_expires = NULL, updated_at = now()
		WHERE verification_token = $1 AND verification_token_expires > $2
		RETURNING id, username, email, password_hash, is_verified, verification_token, verification_token_expires, created_at, updated_at`
	err := r.DB.QueryRow(ctx, query, token, now).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsVerified,
		&u.VerificationToken, &u.VerificationTokenExpires, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
