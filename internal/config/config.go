package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr     string // listen address
	DataDir  string // root directory for stored drawings
	LogLevel string // zap level: debug, info, warn, error
}

// Load reads an optional .env file and then the environment. Real
// environment variables win over .env values.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:     envOr("TDT_ADDR", ":8080"),
		DataDir:  envOr("TDT_DATA_DIR", "data"),
		LogLevel: envOr("TDT_LOG_LEVEL", "info"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
