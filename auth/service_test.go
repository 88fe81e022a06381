package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestService_RegisterAndLogin(t *testing.T) {
	repo := newFakeRepository()
	notifier := &captureNotifier{}
	svc := NewService(repo, fakeDirectory{"acme-transfers": "company-1"}, notifier, "test-secret", time.Hour)

	req := RegisterRequest{
		Email:       "alice@example.com",
		Password:    "supersafe",
		Name:        "Alice",
		CompanySlug: "acme-transfers",
	}

	ctx := context.Background()
	user, err := svc.Register(ctx, req)
	if err != nil {
		t.Fatalf("register: unexpected error: %v", err)
	}

	if user.Email != req.Email {
		t.Fatalf("expected email %q got %q", req.Email, user.Email)
	}
	if user.Role != RoleUser {
		t.Fatalf("register: expected default role %s got %s", RoleUser, user.Role)
	}
	if user.CompanyID == nil || *user.CompanyID != "company-1" {
		t.Fatalf("register: expected company-1, got %v", user.CompanyID)
	}
	if notifier.token == "" {
		t.Fatal("register: expected verification email to be issued")
	}

	resp, err := svc.Login(ctx, LoginRequest{Email: req.Email, Password: req.Password})
	if err != nil {
		t.Fatalf("login: unexpected error: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("login: expected token, got empty string")
	}
	if resp.User.ID != user.ID {
		t.Fatalf("login: expected user id %q got %q", user.ID, resp.User.ID)
	}

	principal, err := svc.VerifyToken(resp.Token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if principal.UserID != user.ID {
		t.Fatalf("verify token: expected %q got %q", user.ID, principal.UserID)
	}
	if principal.Role != RoleUser {
		t.Fatalf("verify token: expected role %s got %s", RoleUser, principal.Role)
	}
	if principal.CompanyID == nil || *principal.CompanyID != "company-1" {
		t.Fatalf("verify token: expected company-1, got %v", principal.CompanyID)
	}
}

func TestService_RegisterValidation(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, fakeDirectory{"acme-transfers": "company-1"}, nil, "test-secret", time.Hour)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "alice@example.com",
		Password:    "short",
		CompanySlug: "acme-transfers",
	})
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}

	if _, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "",
		Password: "strongpassword",
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing fields, got %v", err)
	}

	if _, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "alice@example.com",
		Password: "strongpassword",
	}); !errors.Is(err, ErrCompanyRequired) {
		t.Fatalf("expected ErrCompanyRequired, got %v", err)
	}

	if _, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "alice@example.com",
		Password:    "strongpassword",
		CompanySlug: "nope",
	}); !errors.Is(err, ErrCompanyNotFound) {
		t.Fatalf("expected ErrCompanyNotFound, got %v", err)
	}
}

func TestService_DuplicateEmail(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, fakeDirectory{"acme-transfers": "company-1"}, nil, "test-secret", time.Hour)

	req := RegisterRequest{
		Email:       "alice@example.com",
		Password:    "strongpassword",
		CompanySlug: "acme-transfers",
	}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	if _, err := svc.Register(context.Background(), req); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestService_LoginInvalidCredentials(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, fakeDirectory{}, nil, "test-secret", time.Hour)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "unknown@example.com",
		Password: "irrelevant",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestService_VerifyEmail(t *testing.T) {
	repo := newFakeRepository()
	notifier := &captureNotifier{}
	svc := NewService(repo, fakeDirectory{"acme-transfers": "company-1"}, notifier, "test-secret", time.Hour)

	ctx := context.Background()
	user, err := svc.Register(ctx, RegisterRequest{
		Email:       "alice@example.com",
		Password:    "strongpassword",
		CompanySlug: "acme-transfers",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.VerifyEmail(ctx, notifier.token); err != nil {
		t.Fatalf("verify email: %v", err)
	}

	stored, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if stored.EmailVerifiedAt == nil {
		t.Fatal("expected email_verified_at to be stamped")
	}

	// Single use: a second attempt must miss.
	if err := svc.VerifyEmail(ctx, notifier.token); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound on reuse, got %v", err)
	}
}

func TestService_VerifyEmailExpired(t *testing.T) {
	repo := newFakeRepository()
	notifier := &captureNotifier{}
	svc := NewService(repo, fakeDirectory{"acme-transfers": "company-1"}, notifier, "test-secret", time.Hour)

	issued := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return issued })

	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterRequest{
		Email:       "alice@example.com",
		Password:    "strongpassword",
		CompanySlug: "acme-transfers",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	svc.WithClock(func() time.Time { return issued.Add(25 * time.Hour) })

	if err := svc.VerifyEmail(ctx, notifier.token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}

	// The expired token is consumed either way.
	if err := svc.VerifyEmail(ctx, notifier.token); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound after cleanup, got %v", err)
	}
}

type fakeDirectory map[string]string

func (f fakeDirectory) ActiveCompanyIDBySlug(ctx context.Context, slug string) (string, error) {
	id, ok := f[slug]
	if !ok {
		return "", errors.New("no such company")
	}
	return id, nil
}

type captureNotifier struct {
	email string
	token string
}

func (c *captureNotifier) VerificationIssued(email string, name *string, token string) {
	c.email = email
	c.token = token
}

type fakeRepository struct {
	usersByEmail map[string]User
	usersByID    map[string]User
	tokens       map[string]VerificationToken
	nextID       int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		usersByEmail: make(map[string]User),
		usersByID:    make(map[string]User),
		tokens:       make(map[string]VerificationToken),
		nextID:       1,
	}
}

func (f *fakeRepository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	if _, exists := f.usersByEmail[strings.ToLower(params.Email)]; exists {
		return User{}, ErrDuplicateEmail
	}

	id := fmt.Sprintf("user-%d", f.nextID)
	f.nextID++

	user := User{
		ID:           id,
		Email:        params.Email,
		Name:         params.Name,
		PasswordHash: params.PasswordHash,
		Role:         params.Role,
		CompanyID:    params.CompanyID,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	f.usersByEmail[strings.ToLower(user.Email)] = user
	f.usersByID[user.ID] = user

	return user, nil
}

func (f *fakeRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	user, ok := f.usersByEmail[strings.ToLower(email)]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (f *fakeRepository) GetUserByID(ctx context.Context, userID string) (User, error) {
	user, ok := f.usersByID[userID]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (f *fakeRepository) MarkEmailVerified(ctx context.Context, userID string, at time.Time) error {
	user, ok := f.usersByID[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.EmailVerifiedAt = &at
	f.usersByID[userID] = user
	f.usersByEmail[strings.ToLower(user.Email)] = user
	return nil
}

func (f *fakeRepository) CreateVerificationToken(ctx context.Context, token VerificationToken) error {
	f.tokens[token.Token] = token
	return nil
}

func (f *fakeRepository) GetVerificationToken(ctx context.Context, token string) (VerificationToken, error) {
	vt, ok := f.tokens[token]
	if !ok {
		return VerificationToken{}, ErrTokenNotFound
	}
	return vt, nil
}

func (f *fakeRepository) DeleteVerificationToken(ctx context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}
