package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials signals wrong email or password.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrWeakPassword signals password doesn't meet requirements.
	ErrWeakPassword = errors.New("auth: password must be at least 6 characters")
	// ErrCompanyRequired signals registration without a company booking link.
	ErrCompanyRequired = errors.New("auth: registration requires a company invitation link")
	// ErrCompanyNotFound signals the booking link points at a missing or inactive company.
	ErrCompanyNotFound = errors.New("auth: company not found or inactive")
	// ErrTokenExpired signals the verification token is past its deadline.
	ErrTokenExpired = errors.New("auth: verification token has expired")
	// ErrInvalidInput signals malformed registration or login input.
	ErrInvalidInput = errors.New("auth: invalid input")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CompanyDirectory resolves booking-portal slugs to active companies.
type CompanyDirectory interface {
	ActiveCompanyIDBySlug(ctx context.Context, slug string) (string, error)
}

// Notifier delivers the verification email. Sends are best effort and
// must never fail registration.
type Notifier interface {
	VerificationIssued(email string, name *string, token string)
}

// Service handles authentication business logic.
type Service struct {
	repo      Repository
	companies CompanyDirectory
	notifier  Notifier
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
	tokenGen  func() string
}

// LoginResult bundles the token and domain user returned after a successful login.
type LoginResult struct {
	Token string
	User  User
}

// NewService creates a new authentication service.
func NewService(repo Repository, companies CompanyDirectory, notifier Notifier, jwtSecret string, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{
		repo:      repo,
		companies: companies,
		notifier:  notifier,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		now:       time.Now,
		tokenGen: func() string {
			return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
		},
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) WithTokenGenerator(gen func() string) *Service {
	s.tokenGen = gen
	return s
}

// Register creates a new customer account scoped to a company and issues
// an email verification token.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}
	if !emailPattern.MatchString(req.Email) {
		return nil, fmt.Errorf("%w: malformed email address", ErrInvalidInput)
	}
	if len(req.Password) < 6 {
		return nil, ErrWeakPassword
	}
	if strings.TrimSpace(req.CompanySlug) == "" {
		return nil, ErrCompanyRequired
	}

	companyID, err := s.companies.ActiveCompanyIDBySlug(ctx, req.CompanySlug)
	if err != nil {
		return nil, ErrCompanyNotFound
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	var name *string
	if trimmed := strings.TrimSpace(req.Name); trimmed != "" {
		name = &trimmed
	}

	user, err := s.repo.CreateUser(ctx, CreateUserParams{
		Email:        req.Email,
		Name:         name,
		PasswordHash: string(passwordHash),
		Role:         RoleUser,
		CompanyID:    &companyID,
	})
	if err != nil {
		return nil, err
	}

	token := VerificationToken{
		Identifier: user.Email,
		Token:      s.tokenGen(),
		Expires:    s.now().Add(24 * time.Hour),
	}
	if err := s.repo.CreateVerificationToken(ctx, token); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.VerificationIssued(user.Email, user.Name, token.Token)
	}

	return &user, nil
}

// Login authenticates a user and returns a JWT token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if user.PasswordHash == "" {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return LoginResult{}, fmt.Errorf("auth: generate token: %w", err)
	}

	return LoginResult{Token: token, User: user}, nil
}

// VerifyEmail consumes a verification token and stamps the account. The
// token is removed whether it verified the account or had expired.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	vt, err := s.repo.GetVerificationToken(ctx, token)
	if err != nil {
		return err
	}

	if vt.Expires.Before(s.now()) {
		_ = s.repo.DeleteVerificationToken(ctx, token)
		return ErrTokenExpired
	}

	user, err := s.repo.GetUserByEmail(ctx, vt.Identifier)
	if err != nil {
		return err
	}

	if err := s.repo.MarkEmailVerified(ctx, user.ID, s.now()); err != nil {
		return err
	}

	return s.repo.DeleteVerificationToken(ctx, token)
}

// GetUserByID retrieves user information by ID.
func (s *Service) GetUserByID(ctx context.Context, userID string) (*User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// VerifyToken validates a JWT token and returns the acting principal.
func (s *Service) VerifyToken(tokenString string) (Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return Principal{}, fmt.Errorf("auth: parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Principal{}, fmt.Errorf("auth: invalid token")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return Principal{}, fmt.Errorf("auth: invalid user_id in token")
	}
	roleStr, ok := claims["role"].(string)
	if !ok {
		return Principal{}, fmt.Errorf("auth: invalid role in token")
	}
	role := Role(roleStr)
	if !isValidRole(role) {
		return Principal{}, fmt.Errorf("auth: invalid role %q in token", roleStr)
	}

	principal := Principal{UserID: userID, Role: role}
	if companyID, ok := claims["company_id"].(string); ok && companyID != "" {
		principal.CompanyID = &companyID
	}
	return principal, nil
}

// generateToken creates a JWT token carrying the principal claims.
func (s *Service) generateToken(user User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     s.now().Add(s.tokenTTL).Unix(),
		"iat":     s.now().Unix(),
	}
	if user.CompanyID != nil {
		claims["company_id"] = *user.CompanyID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func isValidRole(role Role) bool {
	switch role {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}
