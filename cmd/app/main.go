package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"cafebook/config"
	"cafebook/di"
	"cafebook/shared/logger"
)

const closeTimeout = 10 * time.Second

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	app := di.InitializeApp()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return app.HTTP.Serve(groupCtx)
	})

	group.Go(func() error {
		return app.Reminders.Run(groupCtx)
	})

	err := group.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	if closeErr := app.Close(closeCtx); closeErr != nil {
		log.Warn().Err(closeErr).Msg("Failed to release resources cleanly")
	}

	if err != nil {
		log.Fatal().Err(err).Msg("Service stopped with error")
	}
}
