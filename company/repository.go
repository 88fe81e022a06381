package company

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound signals the requested company does not exist.
	ErrNotFound = errors.New("company: not found")
	// ErrDuplicateSlug signals the slug is already taken by another tenant.
	ErrDuplicateSlug = errors.New("company: slug already exists")
	// ErrUserNotFound signals the user targeted by an assignment is missing.
	ErrUserNotFound = errors.New("company: user not found")
)

// Repository provides data access for tenant companies.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Company, error)
	List(ctx context.Context) ([]Company, error)
	GetByID(ctx context.Context, id string) (Company, []Member, error)
	GetBySlug(ctx context.Context, slug string) (Company, error)
	Update(ctx context.Context, id string, params UpdateParams) (Company, error)
	AssignUser(ctx context.Context, userID, companyID, role string) error
	RemoveUser(ctx context.Context, userID string) error
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) Create(ctx context.Context, params CreateParams) (Company, error) {
	const insertSQL = `
		INSERT INTO companies (name, slug, admin_email, logo_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, slug, admin_email, logo_url, is_active, created_at
	`

	var c Company
	err := r.pool.QueryRow(ctx, insertSQL, params.Name, params.Slug, params.AdminEmail, params.LogoURL).
		Scan(&c.ID, &c.Name, &c.Slug, &c.AdminEmail, &c.LogoURL, &c.IsActive, &c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Company{}, ErrDuplicateSlug
		}
		return Company{}, fmt.Errorf("company: create: %w", err)
	}
	return c, nil
}

// List returns every tenant with member and request counts, most recent first.
func (r *PGRepository) List(ctx context.Context) ([]Company, error) {
	const query = `
		SELECT c.id, c.name, c.slug, c.admin_email, c.logo_url, c.is_active, c.created_at,
		       (SELECT COUNT(*) FROM users u WHERE u.company_id = c.id),
		       (SELECT COUNT(*) FROM trip_requests t WHERE t.company_id = c.id)
		FROM companies c
		ORDER BY c.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("company: list: %w", err)
	}
	defer rows.Close()

	out := make([]Company, 0, 8)
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.AdminEmail, &c.LogoURL, &c.IsActive, &c.CreatedAt, &c.UserCount, &c.TripRequestCount); err != nil {
			return nil, fmt.Errorf("company: scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("company: iterate: %w", err)
	}
	return out, nil
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (Company, []Member, error) {
	const query = `
		SELECT c.id, c.name, c.slug, c.admin_email, c.logo_url, c.is_active, c.created_at,
		       (SELECT COUNT(*) FROM users u WHERE u.company_id = c.id),
		       (SELECT COUNT(*) FROM trip_requests t WHERE t.company_id = c.id)
		FROM companies c
		WHERE c.id = $1
	`

	var c Company
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&c.ID, &c.Name, &c.Slug, &c.AdminEmail, &c.LogoURL, &c.IsActive, &c.CreatedAt, &c.UserCount, &c.TripRequestCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, nil, ErrNotFound
		}
		return Company{}, nil, fmt.Errorf("company: get by id: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, email, name, role::text
		FROM users
		WHERE company_id = $1
		ORDER BY created_at ASC
	`, id)
	if err != nil {
		return Company{}, nil, fmt.Errorf("company: list members: %w", err)
	}
	defer rows.Close()

	members := make([]Member, 0, 8)
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.Email, &m.Name, &m.Role); err != nil {
			return Company{}, nil, fmt.Errorf("company: scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return Company{}, nil, fmt.Errorf("company: iterate members: %w", err)
	}

	return c, members, nil
}

// GetBySlug resolves an active tenant for the public booking page.
func (r *PGRepository) GetBySlug(ctx context.Context, slug string) (Company, error) {
	const query = `
		SELECT id, name, slug, admin_email, logo_url, is_active, created_at
		FROM companies
		WHERE slug = $1 AND is_active
	`

	var c Company
	err := r.pool.QueryRow(ctx, query, slug).
		Scan(&c.ID, &c.Name, &c.Slug, &c.AdminEmail, &c.LogoURL, &c.IsActive, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, ErrNotFound
		}
		return Company{}, fmt.Errorf("company: get by slug: %w", err)
	}
	return c, nil
}

func (r *PGRepository) Update(ctx context.Context, id string, params UpdateParams) (Company, error) {
	const query = `
		UPDATE companies
		SET name = COALESCE($2, name),
		    admin_email = COALESCE($3, admin_email),
		    logo_url = COALESCE($4, logo_url),
		    is_active = COALESCE($5, is_active)
		WHERE id = $1
		RETURNING id, name, slug, admin_email, logo_url, is_active, created_at
	`

	var c Company
	err := r.pool.QueryRow(ctx, query, id, params.Name, params.AdminEmail, params.LogoURL, params.IsActive).
		Scan(&c.ID, &c.Name, &c.Slug, &c.AdminEmail, &c.LogoURL, &c.IsActive, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, ErrNotFound
		}
		return Company{}, fmt.Errorf("company: update: %w", err)
	}
	return c, nil
}

// AssignUser moves a user into a tenant with the given role.
func (r *PGRepository) AssignUser(ctx context.Context, userID, companyID, role string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET company_id = $2,
		    role = $3::user_role,
		    updated_at = now()
		WHERE id = $1
	`, userID, companyID, role)
	if err != nil {
		return fmt.Errorf("company: assign user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RemoveUser detaches a user from its tenant and demotes it to USER.
func (r *PGRepository) RemoveUser(ctx context.Context, userID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET company_id = NULL,
		    role = 'USER',
		    updated_at = now()
		WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("company: remove user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
