package company

import "time"

// Company is a tenant scoping users and trip requests. The slug routes
// the public booking portal.
type Company struct {
	ID         string
	Name       string
	Slug       string
	AdminEmail *string
	LogoURL    *string
	IsActive   bool
	CreatedAt  time.Time

	UserCount        int
	TripRequestCount int
}

// Member is the subset of user data exposed on company detail pages.
type Member struct {
	ID    string
	Email string
	Name  *string
	Role  string
}

// CreateParams enumerates the fields required to register a tenant.
type CreateParams struct {
	Name       string
	Slug       string
	AdminEmail *string
	LogoURL    *string
}

// UpdateParams carries a partial update; nil fields are left untouched.
type UpdateParams struct {
	Name       *string
	AdminEmail *string
	LogoURL    *string
	IsActive   *bool
}
