package config

import (
	"github.com/joho/godotenv"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var dotenvOnce sync.Once

// loadDotEnv reads an optional .env file (or the file named by DOTENV_FILE) into the process environment.
// Variables already present in the environment win over the file.
func loadDotEnv() {
	dotenvOnce.Do(func() {
		file, ok := os.LookupEnv("DOTENV_FILE")
		if !ok {
			file = ".env"
		}
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			slog.Warn("Unable to load dotenv file", slog.String("file", file), ErrAttr(err))
		}
	})
}

func GetEnv(key string, fallback string) string {
	loadDotEnv()
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func GetEnvAsInt(key string, fallback int) int {
	if value, ok := lookup(key); ok {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		slog.Warn("Invalid integer in environment, using default", slog.String("key", key), slog.Int("default", fallback))
	}
	return fallback
}

func GetEnvAsFloat(key string, fallback float64) float64 {
	if value, ok := lookup(key); ok {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
		slog.Warn("Invalid number in environment, using default", slog.String("key", key), slog.Float64("default", fallback))
	}
	return fallback
}

func GetEnvAsBool(key string, fallback bool) bool {
	if value, ok := lookup(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
		slog.Warn("Invalid boolean in environment, using default", slog.String("key", key), slog.Bool("default", fallback))
	}
	return fallback
}

// GetEnvAsDuration accepts Go duration strings ("15s", "4h") and, for compatibility, a bare number of seconds.
func GetEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
		slog.Warn("Invalid duration in environment, using default", slog.String("key", key), slog.Duration("default", fallback))
	}
	return fallback
}

func lookup(key string) (string, bool) {
	loadDotEnv()
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}
