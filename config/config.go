package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Service exposes the runtime configuration the rest of the app needs.
// Kept as an interface so handlers can be tested with a mock.
type Service interface {
	GetDatabaseDSN() string
	GetJWTSecret() string
	GetTMDBKey() string
	GetServerPort() string
	GetBindAddr() string
	GetAllowedOrigins() []string
}

type EnvConfig struct{}

// Load reads .env if present and returns an env-backed Service.
func Load() *EnvConfig {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}
	return &EnvConfig{}
}

// GetDatabaseDSN prefers a single DATABASE_URL (managed hosting) and falls
// back to the discrete DB_* variables for local development.
func (c *EnvConfig) GetDatabaseDSN() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	host := getenv("DB_HOST", "localhost")
	port := getenv("DB_PORT", "5432")
	user := getenv("DB_USER", "postgres")
	pass := os.Getenv("DB_PASS")
	name := getenv("DB_NAME", "cinelog")
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, pass, name)
}

func (c *EnvConfig) GetJWTSecret() string {
	return os.Getenv("JWT_SECRET")
}

func (c *EnvConfig) GetTMDBKey() string {
	return os.Getenv("TMDB_API_KEY")
}

func (c *EnvConfig) GetServerPort() string {
	return getenv("PORT", "3000")
}

func (c *EnvConfig) GetBindAddr() string {
	return getenv("IP", "0.0.0.0")
}

// GetAllowedOrigins parses the comma-separated ALLOWED_ORIGINS variable.
func (c *EnvConfig) GetAllowedOrigins() []string {
	raw := os.Getenv("ALLOWED_ORIGINS")
	if raw == "" {
		return []string{"http://localhost:3000"}
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
