package main

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds settings read from the environment. Command line flags take
// precedence over every field.
type Config struct {
	ModelPath string
	Clock     string
	Port      int
	CacheSize int
	Verbose   bool
}

// loadConfig reads an optional .env file from the working directory and then
// the environment.
func loadConfig(files ...string) Config {
	_ = godotenv.Load(files...)

	return Config{
		ModelPath: getEnv("BETTERREST_MODEL", ""),
		Clock:     getEnv("BETTERREST_CLOCK", string(ClockAuto)),
		Port:      getEnvInt("BETTERREST_PORT", 0),
		CacheSize: getEnvInt("BETTERREST_CACHE_SIZE", 4096),
		Verbose:   getEnvBool("BETTERREST_VERBOSE", false),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("failed to parse env var as int, using default", "key", key, "error", err)
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		slog.Warn("failed to parse env var as bool, using default", "key", key, "error", err)
		return defaultValue
	}
	return boolValue
}
