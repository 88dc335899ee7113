package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the process reads from the environment.
type Config struct {
	ServerPort     string
	DBPath         string
	JWTSecret      string
	JWTIssuer      string
	JWTAudience    string
	LogDevelopment bool
}

// Load reads .env (when present) and the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:     getEnv("PORT", "8008"),
		DBPath:         getEnv("DB_PATH", "mentorhub.db"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTIssuer:      getEnv("JWT_ISSUER", ""),
		JWTAudience:    getEnv("JWT_AUDIENCE", ""),
		LogDevelopment: getEnv("LOG_DEVELOPMENT", "false") == "true",
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
