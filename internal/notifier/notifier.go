// Package notifier delivers text messages to a named channel through the
// configured transport. Chat front ends consume the messages and post them.
package notifier

//go:generate go run go.uber.org/mock/mockgen -source=./notifier.go -destination=./mocks/notifier_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"cafebook/config"
	"cafebook/infras/amqp"
	"cafebook/infras/kafka"
	"cafebook/infras/otel"
	"cafebook/shared/constant"
	"cafebook/shared/timezone"
)

var ErrNoChannel = errors.New("notification channel is required")

// Notification is the payload published on the bus.
type Notification struct {
	Channel string    `json:"channel"`
	Text    string    `json:"text"`
	SentAt  time.Time `json:"sent_at"`
}

type Notifier interface {
	Send(ctx context.Context, channel, text string) error
}

// New picks the driver named by NOTIFIER_DRIVER; unknown names fall back to log.
func New(cfg *config.Config, kafkaClient kafka.Client, publisher amqp.Publisher, ot otel.Otel) Notifier {
	var driver Notifier

	switch cfg.Notifier.Driver {
	case constant.NotifierDriverKafka:
		driver = &kafkaNotifier{client: kafkaClient, topic: cfg.Notifier.Kafka.Topic}
	case constant.NotifierDriverAMQP:
		driver = &amqpNotifier{publisher: publisher, queue: cfg.Notifier.AMQP.Queue}
	case constant.NotifierDriverLog, constant.Empty:
		driver = &logNotifier{}
	default:
		log.Warn().Str("driver", cfg.Notifier.Driver).Msg("Unknown notifier driver, using log")

		driver = &logNotifier{}
	}

	return &tracedNotifier{next: driver, otel: ot, driver: cfg.Notifier.Driver}
}

type tracedNotifier struct {
	next   Notifier
	otel   otel.Otel
	driver string
}

func (t *tracedNotifier) Send(ctx context.Context, channel, text string) (err error) {
	ctx, scope := t.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelExternalScopeName+".Notify")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttributes(map[string]any{
		"notify.driver":  t.driver,
		"notify.channel": channel,
	})

	if channel == "" {
		return ErrNoChannel
	}

	return t.next.Send(ctx, channel, text)
}

type kafkaNotifier struct {
	client kafka.Client
	topic  string
}

func (k *kafkaNotifier) Send(ctx context.Context, channel, text string) error {
	err := k.client.SendMessages(ctx, k.topic, kafka.Message{
		Key:   channel,
		Value: Notification{Channel: channel, Text: text, SentAt: timezone.Now()},
	})
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	return nil
}

type amqpNotifier struct {
	publisher amqp.Publisher
	queue     string
}

func (a *amqpNotifier) Send(ctx context.Context, channel, text string) error {
	body, err := json.Marshal(Notification{Channel: channel, Text: text, SentAt: timezone.Now()})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err = a.publisher.Publish(ctx, a.queue, body); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	return nil
}

type logNotifier struct{}

func (logNotifier) Send(_ context.Context, channel, text string) error {
	log.Info().Str("component", "notifier").Str("channel", channel).Str("text", text).Msg("notification")

	return nil
}
