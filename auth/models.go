package auth

import "time"

type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// User is the domain representation of an account.
// It mirrors the users table and should not include JSON annotations so it
// can be reused by different presentation layers.
type User struct {
	ID              string
	Email           string
	Name            *string
	PasswordHash    string
	Role            Role
	CompanyID       *string
	EmailVerifiedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Principal identifies the acting user on every guarded operation. It is
// passed explicitly into services instead of being read from ambient
// session state.
type Principal struct {
	UserID    string
	Role      Role
	CompanyID *string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin || p.Role == RoleSuperAdmin
}

func (p Principal) IsSuperAdmin() bool {
	return p.Role == RoleSuperAdmin
}

// VerificationToken proves ownership of an email address. Single use,
// time limited.
type VerificationToken struct {
	Identifier string
	Token      string
	Expires    time.Time
}

// RegisterRequest contains user registration data supplied by callers.
// Registration always happens through a company booking link, so the
// company slug is mandatory.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	CompanySlug string `json:"company_slug"`
}

// LoginRequest contains user login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
