package config

import (
	"os"
	"strconv"
)

// Config holds all server settings, sourced from environment variables.
// A .env file is loaded by godotenv/autoload in main before this runs.
type Config struct {
	Addr string

	// BigBlind is the table big blind in chips; the small blind is half.
	BigBlind int

	// TurnTimerSec is the per-turn deadline before a default action fires.
	TurnTimerSec int

	// MaxPlayers is the seat cap per room. Rooms auto-start when full.
	MaxPlayers int

	// RedisAddr is the hand-history queue target. Empty disables history.
	RedisAddr string

	HistoryQueueName string
}

// Load reads the configuration from the environment, applying defaults.
func Load() Config {
	return Config{
		Addr:             ":" + getEnv("PORT", "8080"),
		BigBlind:         getEnvInt("BIG_BLIND", 100),
		TurnTimerSec:     getEnvInt("TURN_TIMER_SEC", 30),
		MaxPlayers:       getEnvInt("MAX_PLAYERS", 6),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		HistoryQueueName: getEnv("HISTORY_QUEUE_NAME", "holdem_actions"),
	}
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
