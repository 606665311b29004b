package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"cafebook/config"
	"cafebook/helper"
	"cafebook/shared/logger"
)

const (
	argLength = 2
)

func main() {
	logger.InitLogger()

	if len(os.Args) < argLength {
		log.Fatal().Msg("Migration direction is required: up, down, drop or step-up")
	}

	cfg := config.Get()
	logger.SetLogLevel(cfg)

	if err := helper.Runner(cfg, helper.Direction(os.Args[1])); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
