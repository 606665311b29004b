package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cafebook/internal/handlers/reminder"
	"cafebook/internal/handlers/reservation"
	"cafebook/transport/http/middleware"
)

type DomainHandlers struct {
	Reservation reservation.Handler
	Reminder    reminder.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	App            middleware.AppMiddleware
	Auth           middleware.Auth
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Use(r.App.RequestID, r.App.Tracing, r.App.CORS())

	router.Handle("/metrics", promhttp.Handler())

	router.Route("/v1", func(routerGroup chi.Router) {
		routerGroup.Use(r.Auth.APIKey, r.App.RateLimit(), r.Auth.Auth)

		r.DomainHandlers.Reservation.Router(routerGroup)
		r.DomainHandlers.Reminder.Router(routerGroup, r.Auth.Internal)
	})
}

func New(domainHandlers DomainHandlers, app middleware.AppMiddleware, auth middleware.Auth) Router {
	return Router{
		DomainHandlers: domainHandlers,
		App:            app,
		Auth:           auth,
	}
}
