package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"tripmanager/auth"
	"tripmanager/company"
	"tripmanager/config"
	"tripmanager/db"
	"tripmanager/httpapi"
	"tripmanager/logger"
	"tripmanager/notify"
	"tripmanager/quotation"
	"tripmanager/triprequest"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DB.URL)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer pool.Close()
	zapLogger.Info("database connected")

	var mailer notify.Mailer
	if cfg.Email.SendGridAPIKey != "" {
		mailer = notify.NewSendGridMailer(cfg.Email.SendGridAPIKey, cfg.Email.FromEmail, cfg.Email.FromName, zapLogger)
	} else {
		zapLogger.Warn("SENDGRID_API_KEY not set, emails will be logged only")
		mailer = notify.NewLogMailer(zapLogger)
	}
	notifier := notify.NewNotifier(mailer, notify.Config{
		AdminEmail: cfg.Email.AdminEmail,
		AppURL:     cfg.Email.AppURL,
	}, zapLogger)

	companyService := company.NewService(company.NewRepository(pool))
	authService := auth.NewService(auth.NewRepository(pool), companyService, notifier, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	tripService := triprequest.NewService(triprequest.NewRepository(pool), notifier, zapLogger)
	quotationService := quotation.NewService(pool, quotation.NewRepository(pool), notifier, zapLogger)

	router := httpapi.NewRouter(httpapi.Services{
		Auth:         authService,
		Verifier:     authService,
		Companies:    companyService,
		TripRequests: tripService,
		Quotations:   quotationService,
	}, zapLogger)

	srv := httpapi.NewServer(cfg.Server.Port, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}
	notifier.Wait()

	zapLogger.Info("server stopped gracefully")
}
