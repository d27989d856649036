// Package config loads server configuration from the environment.
// A .env file is honored when present; real environment variables win.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        int
	DBPath      string
	LogLevel    string
	CORSOrigins []string
}

const (
	defaultPort     = 8080
	defaultDBPath   = "availability.db"
	defaultLogLevel = "info"
)

var defaultCORSOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// Load reads configuration from .env (if present) and the environment.
// Missing keys fall back to defaults; nothing here is fatal.
func Load() Config {
	_ = godotenv.Load() // absent .env is fine

	return Config{
		Port:        getEnvAsInt("PORT", defaultPort),
		DBPath:      getEnv("DB_PATH", defaultDBPath),
		LogLevel:    getEnv("LOG_LEVEL", defaultLogLevel),
		CORSOrigins: getEnvAsList("CORS_ORIGINS", defaultCORSOrigins),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsList(key string, defaultVal []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
