package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrUserNotFound signals that the user does not exist.
	ErrUserNotFound = errors.New("auth: user not found")
	// ErrDuplicateEmail signals that the email is already registered.
	ErrDuplicateEmail = errors.New("auth: email already exists")
	// ErrTokenNotFound signals that no verification token matches.
	ErrTokenNotFound = errors.New("auth: verification token not found")
)

// Repository handles data access for accounts and verification tokens.
type Repository interface {
	CreateUser(ctx context.Context, params CreateUserParams) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, userID string) (User, error)
	MarkEmailVerified(ctx context.Context, userID string, at time.Time) error
	CreateVerificationToken(ctx context.Context, token VerificationToken) error
	GetVerificationToken(ctx context.Context, token string) (VerificationToken, error)
	DeleteVerificationToken(ctx context.Context, token string) error
}

// CreateUserParams contains write parameters for creating users.
type CreateUserParams struct {
	Email        string
	Name         *string
	PasswordHash string
	Role         Role
	CompanyID    *string
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL-backed auth repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, email, name, password_hash, role, company_id, email_verified_at, created_at, updated_at`

// CreateUser inserts a new user with hashed password.
func (r *PGRepository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	insertSQL := fmt.Sprintf(`
		INSERT INTO users (email, name, password_hash, role, company_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s
	`, userColumns)

	user, err := scanUser(r.pool.QueryRow(ctx, insertSQL, params.Email, params.Name, params.PasswordHash, params.Role, params.CompanyID))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrDuplicateEmail
		}
		return User{}, fmt.Errorf("auth: create user: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email address.
func (r *PGRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	selectSQL := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)

	user, err := scanUser(r.pool.QueryRow(ctx, selectSQL, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("auth: get user by email: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves a user by ID.
func (r *PGRepository) GetUserByID(ctx context.Context, userID string) (User, error) {
	selectSQL := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	user, err := scanUser(r.pool.QueryRow(ctx, selectSQL, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("auth: get user by id: %w", err)
	}

	return user, nil
}

// MarkEmailVerified stamps the verification time on the user row.
func (r *PGRepository) MarkEmailVerified(ctx context.Context, userID string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email_verified_at = $2,
		    updated_at = now()
		WHERE id = $1
	`, userID, at)
	if err != nil {
		return fmt.Errorf("auth: mark email verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CreateVerificationToken stores a fresh single-use token.
func (r *PGRepository) CreateVerificationToken(ctx context.Context, token VerificationToken) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO verification_tokens (identifier, token, expires)
		VALUES ($1, $2, $3)
	`, token.Identifier, token.Token, token.Expires)
	if err != nil {
		return fmt.Errorf("auth: create verification token: %w", err)
	}
	return nil
}

// GetVerificationToken retrieves a token by its value.
func (r *PGRepository) GetVerificationToken(ctx context.Context, token string) (VerificationToken, error) {
	var vt VerificationToken
	err := r.pool.QueryRow(ctx, `
		SELECT identifier, token, expires
		FROM verification_tokens
		WHERE token = $1
	`, token).Scan(&vt.Identifier, &vt.Token, &vt.Expires)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return VerificationToken{}, ErrTokenNotFound
		}
		return VerificationToken{}, fmt.Errorf("auth: get verification token: %w", err)
	}
	return vt, nil
}

// DeleteVerificationToken removes a consumed or expired token.
func (r *PGRepository) DeleteVerificationToken(ctx context.Context, token string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM verification_tokens WHERE token = $1`, token); err != nil {
		return fmt.Errorf("auth: delete verification token: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		user         User
		name         *string
		passwordHash *string
		companyID    *string
	)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&name,
		&passwordHash,
		&user.Role,
		&companyID,
		&user.EmailVerifiedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}

	user.Name = name
	user.CompanyID = companyID
	if passwordHash != nil {
		user.PasswordHash = *passwordHash
	}
	return user, nil
}
