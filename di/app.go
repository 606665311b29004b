package di

import (
	"context"
	"errors"

	"cafebook/infras/amqp"
	"cafebook/infras/jwt"
	"cafebook/infras/kafka"
	"cafebook/infras/otel"
	reminderService "cafebook/internal/domains/reminder/service"
	reservationService "cafebook/internal/domains/reservation/service"
	"cafebook/transport/http"
)

// App is the fully wired process: the HTTP front end, the scheduler and the
// engine they share.
type App struct {
	HTTP         *http.HTTP
	Reservations reservationService.Reservation
	Reminders    reminderService.Reminder
	JWT          jwt.JWT
	Otel         otel.Otel
	Kafka        kafka.Client
	AMQP         amqp.Publisher
}

// Close releases the notifier transports and flushes traces.
func (a *App) Close(ctx context.Context) error {
	return errors.Join(a.Kafka.Close(), a.AMQP.Close(), a.Otel.Shutdown(ctx))
}
