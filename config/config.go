package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the appliance configuration. Values come from the
// environment (optionally a .env file) with sensible defaults for a
// single-box deployment.
type Config struct {
	HTTPAddr string // JSON/HTTP API listen address
	MPDAddr  string // line-protocol listen address

	// Redis document store
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Playback
	PlaylistCapacity int
	StreamRetryWait  time.Duration // backoff before reconnecting a dead stream
	ControlTick      time.Duration // control-plane loop period

	// Optional stations seed file, re-imported on change
	StationsFile string

	// Logging
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	return &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		MPDAddr:  getEnv("MPD_ADDR", ":6600"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		PlaylistCapacity: getEnvInt("PLAYLIST_CAPACITY", 20),
		StreamRetryWait:  time.Duration(getEnvInt("STREAM_RETRY_SECONDS", 5)) * time.Second,
		ControlTick:      time.Duration(getEnvInt("CONTROL_TICK_MS", 100)) * time.Millisecond,

		StationsFile: getEnv("STATIONS_FILE", ""),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogPath:       getEnv("LOG_PATH", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 14),
	}
}
