package config

import (
	"fmt"
	"os"
	"time"

	"hospital-app-server/internal/utils"
)

// Config holds all application configuration
type Config struct {
	Port        string
	Environment string
	Origin      string

	JWT      JWTConfig
	Database DatabaseConfig
	Notify   NotifyConfig
}

// JWTConfig holds JWT related configuration
type JWTConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessExpiresIn  time.Duration
	RefreshExpiresIn time.Duration
}

// DatabaseConfig holds database related configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// NotifyConfig holds notification dispatcher configuration
type NotifyConfig struct {
	QueueSize int
}

// DSN builds the MySQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// TokenConfig adapts the JWT section for token generation.
func (j JWTConfig) TokenConfig() utils.TokenConfig {
	return utils.TokenConfig{
		AccessSecret:     j.AccessSecret,
		RefreshSecret:    j.RefreshSecret,
		AccessExpiresIn:  j.AccessExpiresIn,
		RefreshExpiresIn: j.RefreshExpiresIn,
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	accessExpiry, err := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRES_IN", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRES_IN: %w", err)
	}
	refreshExpiry, err := time.ParseDuration(getEnv("JWT_REFRESH_EXPIRES_IN", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRES_IN: %w", err)
	}

	config := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		Origin:      getEnv("ORIGIN", "http://localhost:3000"),
		JWT: JWTConfig{
			AccessSecret:     getEnv("JWT_ACCESS_SECRET", ""),
			RefreshSecret:    getEnv("JWT_REFRESH_SECRET", ""),
			AccessExpiresIn:  accessExpiry,
			RefreshExpiresIn: refreshExpiry,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			User:     getEnv("DB_USER", "root"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "hospital"),
		},
		Notify: NotifyConfig{
			QueueSize: 256,
		},
	}

	if config.JWT.AccessSecret == "" || config.JWT.RefreshSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must be set")
	}

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
