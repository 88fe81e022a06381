package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Auth   AuthConfig
	Email  EmailConfig
	Log    LogConfig
}

type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

type DBConfig struct {
	URL string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type EmailConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	AdminEmail     string
	AppURL         string
}

type LogConfig struct {
	Level string
}

// Load reads configuration from the environment with sensible defaults.
func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("AUTH_TOKEN_TTL", "24h")
	viper.SetDefault("SENDGRID_API_KEY", "")
	viper.SetDefault("SENDGRID_FROM_EMAIL", "noreply@tripmanager.local")
	viper.SetDefault("SENDGRID_FROM_NAME", "Trip Manager")
	viper.SetDefault("ADMIN_EMAIL", "")
	viper.SetDefault("APP_URL", "http://localhost:3000")
	viper.SetDefault("LOG_LEVEL", "info")

	shutdownTimeout, err := time.ParseDuration(viper.GetString("SERVER_SHUTDOWN_TIMEOUT"))
	if err != nil {
		return nil, err
	}
	tokenTTL, err := time.ParseDuration(viper.GetString("AUTH_TOKEN_TTL"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            viper.GetInt("SERVER_PORT"),
			ShutdownTimeout: shutdownTimeout,
		},
		DB: DBConfig{
			URL: viper.GetString("DATABASE_URL"),
		},
		Auth: AuthConfig{
			JWTSecret: viper.GetString("JWT_SECRET"),
			TokenTTL:  tokenTTL,
		},
		Email: EmailConfig{
			SendGridAPIKey: viper.GetString("SENDGRID_API_KEY"),
			FromEmail:      viper.GetString("SENDGRID_FROM_EMAIL"),
			FromName:       viper.GetString("SENDGRID_FROM_NAME"),
			AdminEmail:     viper.GetString("ADMIN_EMAIL"),
			AppURL:         viper.GetString("APP_URL"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	return cfg, nil
}
