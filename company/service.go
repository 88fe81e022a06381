package company

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"tripmanager/auth"
)

var (
	// ErrForbidden signals the acting principal may not manage tenants.
	ErrForbidden = errors.New("company: forbidden")
	// ErrInvalidInput signals malformed tenant management input.
	ErrInvalidInput = errors.New("company: invalid input")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Service exposes tenant management operations. All mutating operations
// require a SUPER_ADMIN principal; GetBySlug is public.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, principal auth.Principal, params CreateParams) (Company, error) {
	if !principal.IsSuperAdmin() {
		return Company{}, ErrForbidden
	}
	if strings.TrimSpace(params.Name) == "" {
		return Company{}, fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	if !slugPattern.MatchString(params.Slug) {
		return Company{}, fmt.Errorf("%w: slug must be lowercase alphanumeric with hyphens", ErrInvalidInput)
	}
	return s.repo.Create(ctx, params)
}

func (s *Service) List(ctx context.Context, principal auth.Principal) ([]Company, error) {
	if !principal.IsSuperAdmin() {
		return nil, ErrForbidden
	}
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, principal auth.Principal, id string) (Company, []Member, error) {
	if !principal.IsSuperAdmin() {
		return Company{}, nil, ErrForbidden
	}
	return s.repo.GetByID(ctx, id)
}

// GetBySlug serves the public booking page; only active tenants resolve.
func (s *Service) GetBySlug(ctx context.Context, slug string) (Company, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *Service) Update(ctx context.Context, principal auth.Principal, id string, params UpdateParams) (Company, error) {
	if !principal.IsSuperAdmin() {
		return Company{}, ErrForbidden
	}
	if params.Name != nil && strings.TrimSpace(*params.Name) == "" {
		return Company{}, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	return s.repo.Update(ctx, id, params)
}

func (s *Service) AssignUser(ctx context.Context, principal auth.Principal, userID, companyID string, role auth.Role) error {
	if !principal.IsSuperAdmin() {
		return ErrForbidden
	}
	if role != auth.RoleUser && role != auth.RoleAdmin {
		return fmt.Errorf("%w: role must be USER or ADMIN", ErrInvalidInput)
	}
	return s.repo.AssignUser(ctx, userID, companyID, string(role))
}

func (s *Service) RemoveUser(ctx context.Context, principal auth.Principal, userID string) error {
	if !principal.IsSuperAdmin() {
		return ErrForbidden
	}
	return s.repo.RemoveUser(ctx, userID)
}

// ActiveCompanyIDBySlug implements the directory lookup used by the
// registration flow.
func (s *Service) ActiveCompanyIDBySlug(ctx context.Context, slug string) (string, error) {
	c, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}
