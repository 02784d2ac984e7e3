package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string

	// Gemini AI
	GeminiAPIKey string
	GeminiModel  string

	// Storage
	DatabaseURL string
	SQLitePath  string

	// Redis (optional analytics cache)
	RedisURL string

	// Sessions
	SessionSecret string

	// Persona
	PersonaFile string

	// Frontend
	FrontendURL string
	WebDir      string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		Port:          getEnvOrDefault("PORT", "5000"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnvOrDefault("GEMINI_MODEL", "gemini-pro"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SQLitePath:    getEnvOrDefault("SQLITE_PATH", "interview.db"),
		RedisURL:      os.Getenv("REDIS_URL"),
		SessionSecret: getEnvOrDefault("SESSION_SECRET", "dev-secret-key"),
		PersonaFile:   getEnvOrDefault("PERSONA_FILE", "persona_extra.txt"),
		FrontendURL:   getEnvOrDefault("FRONTEND_URL", "*"),
		WebDir:        getEnvOrDefault("WEB_DIR", "web"),
	}
}

// APIKeyConfigured reports whether the upstream credential is present.
// The server still starts without one; chat requests fail until it is set.
func (c *Config) APIKeyConfigured() bool {
	return c.GeminiAPIKey != ""
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}
