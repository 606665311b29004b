package reminder

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"cafebook/infras/otel"
	"cafebook/internal/domains/reminder/service"
	"cafebook/shared/constant"
	"cafebook/transport/http/response"
)

type Handler struct {
	service service.Reminder
	otel    otel.Otel
}

func New(service service.Reminder, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

// Router mounts the routes behind guard, which must admit internal callers only.
func (handler *Handler) Router(router chi.Router, guard func(http.Handler) http.Handler) {
	router.Route("/reminders", func(routerGroup chi.Router) {
		routerGroup.With(guard).Post("/run", handler.Run)
	})
}

// Run performs one scheduler tick on demand.
// @Summary Run a reminder tick
// @Tags Reminder
// @Produce json
// @Success 200 {object} response.Data[service.TickResult]
// @Failure 403 {object} response.Error
// @Router /v1/reminders/run [post]
// @Security ApiKeyAuth
func (handler *Handler) Run(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RunReminders")
	defer scope.End()

	res, err := handler.service.Tick(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to run reminder tick")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}
