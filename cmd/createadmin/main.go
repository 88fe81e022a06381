package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tripmanager/auth"
	"tripmanager/config"
	"tripmanager/db"
	"tripmanager/logger"
)

// createadmin seeds the first SUPER_ADMIN account. Every later role
// assignment goes through the API, which itself requires a super admin.
func main() {
	var (
		email    = flag.String("email", "", "email address for the super admin")
		password = flag.String("password", "", "password for the super admin")
		name     = flag.String("name", "", "display name (optional)")
	)
	flag.Parse()

	_ = godotenv.Load()

	if *email == "" || *password == "" {
		log.Fatal("both -email and -password are required")
	}
	if len(*password) < 6 {
		log.Fatal("password must be at least 6 characters")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DB.URL)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer pool.Close()

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		zapLogger.Fatal("hashing password", zap.Error(err))
	}

	var displayName *string
	if trimmed := strings.TrimSpace(*name); trimmed != "" {
		displayName = &trimmed
	}

	repo := auth.NewRepository(pool)
	user, err := repo.CreateUser(ctx, auth.CreateUserParams{
		Email:        *email,
		Name:         displayName,
		PasswordHash: string(passwordHash),
		Role:         auth.RoleSuperAdmin,
	})
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateEmail) {
			zapLogger.Fatal("a user with this email already exists", zap.String("email", *email))
		}
		zapLogger.Fatal("creating super admin", zap.Error(err))
	}

	// No verification round trip for a seeded account.
	if err := repo.MarkEmailVerified(ctx, user.ID, time.Now()); err != nil {
		zapLogger.Fatal("marking email verified", zap.Error(err))
	}

	zapLogger.Info("super admin created",
		zap.String("user_id", user.ID), zap.String("email", user.Email))
}
