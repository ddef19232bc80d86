package main

import (
	"os"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/skynet2/finance-reconciler/pkg/database"
)

type Config struct {
	PostgresDSN string `env:"POSTGRES_CONNECTION_STRING,required"`
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatal().Err(err).Msg("failed to load .env")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to parse config")
	}

	db, err := database.Open(cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get postgres")
	}

	log.Info().Msg("[Db] start migrations")

	if err = database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate")
	}

	log.Info().Msg("[Db] migrations applied")
}
