package reservation

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"cafebook/infras/otel"
	"cafebook/internal/domains/reservation/model/dto"
	"cafebook/internal/domains/reservation/service"
	"cafebook/shared"
	"cafebook/shared/constant"
	"cafebook/shared/failure"
	"cafebook/shared/validator"
	"cafebook/transport/http/response"
)

type Handler struct {
	service service.Reservation
	otel    otel.Otel
}

func New(service service.Reservation, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/reservations", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.Reserve)
		routerGroup.Get("/", handler.FindReservations)
		routerGroup.Delete("/", handler.Cancel)
		routerGroup.Post("/availability", handler.CheckAvailability)
		routerGroup.Get("/mine", handler.GetMyReservations)
		routerGroup.Get("/recent", handler.GetRecentReservations)
		routerGroup.Put("/participants", handler.UpdateParticipants)
	})
}

func callerID(request *http.Request) string {
	userID, _ := request.Context().Value(constant.ContextKeyUserID).(string)

	return userID
}

// CheckAvailability reports which candidate resources are free for a window.
// @Summary Check availability
// @Tags Reservation
// @Accept json
// @Produce json
// @Param request body dto.AvailabilityRequest true "Availability Request"
// @Success 200 {object} response.Data[dto.AvailabilityResponse]
// @Failure 400 {object} response.Error
// @Failure 503 {object} response.Error
// @Router /v1/reservations/availability [post]
// @Security BearerAuth
func (handler *Handler) CheckAvailability(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CheckAvailability")
	defer scope.End()

	req := dto.AvailabilityRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.CheckAvailability(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to check availability")

		response.WithError(writer, err)

		return
	}

	response.WithJSON(writer, http.StatusOK, res)
}

// Reserve creates a reservation owned by the caller.
// @Summary Create a reservation
// @Tags Reservation
// @Accept json
// @Produce json
// @Param request body dto.ReserveRequest true "Reserve Request"
// @Success 201 {object} response.Data[dto.ReservationResponse]
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/reservations [post]
// @Security BearerAuth
func (handler *Handler) Reserve(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Reserve")
	defer scope.End()

	req := dto.ReserveRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	reservation, err := handler.service.Reserve(ctx, req, callerID(request))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to reserve")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Reservation created for " + reservation.ResourceName)

	res := dto.ReservationResponse{}
	res.FromModel(reservation)

	response.WithJSON(writer, http.StatusCreated, res)
}

// FindReservations lists reservations matching the query filters.
// @Summary Find reservations
// @Tags Reservation
// @Produce json
// @Param owner_id query string false "Owner id"
// @Param date query string false "Date (YYYY/MM/DD)"
// @Param resource query string false "Resource name"
// @Param active query bool false "Hide ended reservations"
// @Success 200 {object} response.Data[dto.GetReservationsResponse]
// @Failure 400 {object} response.Error
// @Router /v1/reservations [get]
// @Security BearerAuth
func (handler *Handler) FindReservations(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()

	req := dto.FindRequest{
		OwnerID:      query.Get(constant.RequestParamOwnerID),
		Date:         query.Get(constant.RequestParamDate),
		ResourceName: query.Get(constant.RequestParamResource),
	}

	if active := shared.ConvertStringToBool(query.Get(constant.RequestParamActive)); active != nil {
		req.ActiveOnly = *active
	}

	handler.find(writer, request, req, "FindReservations")
}

// GetMyReservations lists the caller's reservations that have not ended.
// @Summary Get my reservations
// @Tags Reservation
// @Produce json
// @Success 200 {object} response.Data[dto.GetReservationsResponse]
// @Failure 401 {object} response.Error
// @Router /v1/reservations/mine [get]
// @Security BearerAuth
func (handler *Handler) GetMyReservations(writer http.ResponseWriter, request *http.Request) {
	userID := callerID(request)
	if userID == "" {
		response.WithError(writer, failure.Unauthorized("caller is unknown"))

		return
	}

	handler.find(writer, request, dto.FindRequest{OwnerID: userID, ActiveOnly: true}, "GetMyReservations")
}

func (handler *Handler) find(writer http.ResponseWriter, request *http.Request, req dto.FindRequest, name string) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+"."+name)
	defer scope.End()

	reservations, err := handler.service.FindReservations(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to find reservations")

		response.WithError(writer, err)

		return
	}

	res := dto.GetReservationsResponse{}
	res.FromModels(reservations)

	response.WithJSON(writer, http.StatusOK, res)
}

// GetRecentReservations lists the newest reservations first.
// @Summary Recent reservations
// @Tags Reservation
// @Produce json
// @Param limit query int false "Maximum rows (default 10, max 100)"
// @Success 200 {object} response.Data[dto.GetReservationsResponse]
// @Router /v1/reservations/recent [get]
// @Security BearerAuth
func (handler *Handler) GetRecentReservations(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRecentReservations")
	defer scope.End()

	limit := shared.ParseLimit(request.URL.Query().Get(constant.RequestParamLimit), 0, constant.MaxRecentLimit)

	reservations, err := handler.service.RecentReservations(ctx, limit)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to list recent reservations")

		response.WithError(writer, err)

		return
	}

	res := dto.GetReservationsResponse{}
	res.FromModels(reservations)

	response.WithJSON(writer, http.StatusOK, res)
}

// UpdateParticipants replaces the participant list of the caller's reservation.
// @Summary Set participants
// @Tags Reservation
// @Accept json
// @Produce json
// @Param request body dto.ParticipantsRequest true "Participants Request"
// @Success 200 {object} response.Data[dto.ReservationResponse]
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/reservations/participants [put]
// @Security BearerAuth
func (handler *Handler) UpdateParticipants(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateParticipants")
	defer scope.End()

	req := dto.ParticipantsRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	reservation, err := handler.service.AddParticipants(ctx, req, callerID(request))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update participants")

		response.WithError(writer, err)

		return
	}

	res := dto.ReservationResponse{}
	res.FromModel(reservation)

	response.WithJSON(writer, http.StatusOK, res)
}

// Cancel deletes the caller's reservation of the given slot.
// @Summary Cancel a reservation
// @Tags Reservation
// @Accept json
// @Produce json
// @Param request body dto.SlotRequest true "Slot"
// @Success 200 {object} response.Data[dto.ReservationResponse]
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Router /v1/reservations [delete]
// @Security BearerAuth
func (handler *Handler) Cancel(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Cancel")
	defer scope.End()

	req := dto.SlotRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	userID := callerID(request)
	if userID == "" {
		response.WithError(writer, failure.Unauthorized("caller is unknown"))

		return
	}

	reservation, err := handler.service.Cancel(ctx, req, userID)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to cancel reservation")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Reservation cancelled by user " + userID)

	res := dto.ReservationResponse{}
	res.FromModel(reservation)

	response.WithJSON(writer, http.StatusOK, res)
}
