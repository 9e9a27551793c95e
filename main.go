package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/devJIA85/GuessTheNumber-sub000/internal/engine"
	"github.com/devJIA85/GuessTheNumber-sub000/internal/game"
	"github.com/devJIA85/GuessTheNumber-sub000/internal/httpserver"
	"github.com/devJIA85/GuessTheNumber-sub000/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	cfg := store.Config{
		Modes: game.Modes{
			Classic: game.Mode{Length: getEnvInt("SECRET_LENGTH", game.DefaultSecretLength)},
			Daily: game.Mode{
				Length:     getEnvInt("DAILY_SECRET_LENGTH", game.DefaultDailySecretLength),
				AttemptCap: getEnvInt("DAILY_ATTEMPT_CAP", game.DefaultDailyAttemptCap),
			},
		},
	}

	dbPath := getEnv("DB_PATH", "./data/guessnum.db")
	st, err := store.Open(dbPath, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("path", dbPath).Msg("failed to open store")
	}
	defer func() { _ = st.Close() }()

	srv := httpserver.New(engine.New(st), st)
	port := getEnv("PORT", "5176")
	log.Info().Str("port", port).Str("db", dbPath).Msg("starting guessnum server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
