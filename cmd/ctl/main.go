package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"cafebook/config"
	"cafebook/di"
	"cafebook/shared/logger"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	var app *di.App

	load := func() *deps {
		if app == nil {
			app = di.InitializeApp()
		}

		return &deps{
			reservations: app.Reservations,
			reminders:    app.Reminders,
			jwt:          app.JWT,
		}
	}

	err := newRootCmd(load).Execute()

	if app != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if closeErr := app.Close(ctx); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to release resources cleanly")
		}
	}

	if err != nil {
		os.Exit(1)
	}
}
