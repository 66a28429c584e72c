package config

import (
	"os"
	"strings"
)

type Config struct {
	// Database
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	// Security
	JWTSecret string

	// Server
	Port           string
	TrustedProxies []string

	// Email (SendGrid)
	SendGridAPIKey   string
	EmailFromName    string
	EmailFromAddress string
	AdminEmail       string

	// Links embedded in outgoing mail
	AppBaseURL string

	// OAuth Configuration
	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string
}

func Load() *Config {
	cfg := &Config{
		DBUser:             getEnv("DB_USER", "root"),
		DBPassword:         getEnv("DB_PASSWORD", "password"),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "3306"),
		DBName:             getEnv("DB_NAME", "collegereclaim"),
		JWTSecret:          getEnv("JWT_SECRET", "your-secret-key-here"),
		Port:               getEnv("PORT", "8080"),
		SendGridAPIKey:     getEnv("SENDGRID_API_KEY", ""),
		EmailFromName:      getEnv("EMAIL_FROM_NAME", "College Reclaim"),
		EmailFromAddress:   getEnv("EMAIL_FROM_ADDRESS", "no-reply@collegereclaim.app"),
		AdminEmail:         getEnv("ADMIN_EMAIL", ""),
		AppBaseURL:         getEnv("APP_BASE_URL", "http://localhost:3000"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GitHubClientID:     getEnv("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
	}

	// Handle trusted proxies
	trustedProxies := os.Getenv("TRUSTED_PROXIES")
	if trustedProxies != "" {
		cfg.TrustedProxies = strings.Split(trustedProxies, ",")
		for i, proxy := range cfg.TrustedProxies {
			cfg.TrustedProxies[i] = strings.TrimSpace(proxy)
		}
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
