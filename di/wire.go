//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"cafebook/config"
	"cafebook/infras/amqp"
	"cafebook/infras/jwt"
	"cafebook/infras/kafka"
	"cafebook/infras/otel"
	"cafebook/infras/redis"
	reminderService "cafebook/internal/domains/reminder/service"
	reservationRepository "cafebook/internal/domains/reservation/repository"
	reservationService "cafebook/internal/domains/reservation/service"
	reminderHandler "cafebook/internal/handlers/reminder"
	reservationHandler "cafebook/internal/handlers/reservation"
	"cafebook/internal/notifier"
	"cafebook/shared/cache"
	"cafebook/transport/http"
	"cafebook/transport/http/middleware"
	"cafebook/transport/http/router"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	amqp.New,
	ProvideRowStore,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	notifier.New,
)

var reservationDomain = wire.NewSet(
	reservationRepository.New,
	reservationService.New,
)

var reminderDomain = wire.NewSet(
	reminderService.New,
)

var domains = wire.NewSet(
	reservationDomain,
	reminderDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	reservationHandler.New,
	reminderHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}

func InitializeApp() *App {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
		wire.Struct(new(App), "*"),
	)

	return &App{}
}
