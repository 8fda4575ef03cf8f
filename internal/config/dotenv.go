package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	DefaultRounds            int
	RoundDurationSeconds     int
	WordSelectionSeconds     int
	IntermissionSeconds      int
	ReconnectGraceSeconds    int
	EmptyRoomTTLSeconds      int
	DefaultMaxPlayers        int
	MaxPlayersLimit          int
	SessionSecret            string
	SessionTTLHours          int
	DatabaseURL              string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
	LogLevel                 string
}

func Default() Config {
	return Config{
		DefaultRounds:            3,
		RoundDurationSeconds:     60,
		WordSelectionSeconds:     15,
		IntermissionSeconds:      5,
		ReconnectGraceSeconds:    30,
		EmptyRoomTTLSeconds:      60,
		DefaultMaxPlayers:        15,
		MaxPlayersLimit:          15,
		SessionTTLHours:          24,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
		LogLevel:                 "info",
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("DEFAULT_ROUNDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DefaultRounds = value
		}
	}
	if raw := os.Getenv("ROUND_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.RoundDurationSeconds = value
		}
	}
	if raw := os.Getenv("WORD_SELECTION_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.WordSelectionSeconds = value
		}
	}
	if raw := os.Getenv("INTERMISSION_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.IntermissionSeconds = value
		}
	}
	if raw := os.Getenv("RECONNECT_GRACE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.ReconnectGraceSeconds = value
		}
	}
	if raw := os.Getenv("EMPTY_ROOM_TTL_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.EmptyRoomTTLSeconds = value
		}
	}
	if raw := os.Getenv("DEFAULT_MAX_PLAYERS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 1 {
			cfg.DefaultMaxPlayers = value
		}
	}
	if raw := os.Getenv("MAX_PLAYERS_LIMIT"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 1 {
			cfg.MaxPlayersLimit = value
		}
	}
	if raw := os.Getenv("SESSION_SECRET"); raw != "" {
		cfg.SessionSecret = raw
	}
	if raw := os.Getenv("SESSION_TTL_HOURS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.SessionTTLHours = value
		}
	}
	if raw := os.Getenv("DATABASE_URL"); raw != "" {
		cfg.DatabaseURL = raw
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSeconds = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_IDLE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxIdleTimeSeconds = value
		}
	}
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		cfg.LogLevel = raw
	}
	return cfg
}
