package main

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sketchroom/internal/config"
	"sketchroom/internal/db"
	"sketchroom/internal/game"
	"sketchroom/internal/server"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}
	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	registry := game.NewRegistry(gameOptions(cfg))

	// The database is optional: without one, finished games simply are
	// not archived.
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("connect to database")
		}
		registry.OnGameEnd = db.NewArchiver(conn).SaveResult
		log.Info().Msg("game archiving enabled")
	}

	srv := server.New(registry, cfg)

	addr := ":8080"
	if env := os.Getenv("PORT"); env != "" {
		addr = ":" + env
	}
	log.Info().Str("addr", addr).Msg("sketchroom server listening")
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func gameOptions(cfg config.Config) game.Options {
	opts := game.DefaultOptions()
	opts.SelectionTimeout = time.Duration(cfg.WordSelectionSeconds) * time.Second
	opts.Intermission = time.Duration(cfg.IntermissionSeconds) * time.Second
	opts.ReconnectGrace = time.Duration(cfg.ReconnectGraceSeconds) * time.Second
	opts.EmptyRoomTTL = time.Duration(cfg.EmptyRoomTTLSeconds) * time.Second
	return opts
}
