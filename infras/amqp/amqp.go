// Package amqp publishes JSON messages to RabbitMQ queues. The connection is
// dialed on first publish and dialed again after the broker closes it.
package amqp

//go:generate go run go.uber.org/mock/mockgen -source=./amqp.go -destination=./mocks/amqp_mock.go -package=mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp091 "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"cafebook/config"
	"cafebook/shared/constant"
)

type Publisher interface {
	Publish(ctx context.Context, queue string, body []byte) error
	Close() error
}

type publisherImpl struct {
	url string

	mu       sync.Mutex
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	declared map[string]bool
}

func New(config *config.Config) Publisher {
	return &publisherImpl{
		url:      config.Notifier.AMQP.URL,
		declared: map[string]bool{},
	}
}

// ensureChannel returns an open channel, redialing as needed. Caller holds mu.
func (p *publisherImpl) ensureChannel() (*amqp091.Channel, error) {
	if p.conn == nil || p.conn.IsClosed() {
		conn, err := amqp091.Dial(p.url)
		if err != nil {
			log.Error().Err(err).Msg("rabbitmq: dial failed")

			return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
		}

		p.conn = conn
		p.channel = nil
		p.declared = map[string]bool{}

		log.Info().Msg("Connected to RabbitMQ")
	}

	if p.channel == nil || p.channel.IsClosed() {
		ch, err := p.conn.Channel()
		if err != nil {
			log.Error().Err(err).Msg("rabbitmq: channel open failed")

			return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
		}

		p.channel = ch
		p.declared = map[string]bool{}
	}

	return p.channel, nil
}

func (p *publisherImpl) Publish(ctx context.Context, queue string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.ensureChannel()
	if err != nil {
		return err
	}

	if !p.declared[queue] {
		if _, err = ch.QueueDeclare(
			queue,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,
		); err != nil {
			log.Error().Err(err).Str("queue", queue).Msg("rabbitmq: queue declare failed")

			return fmt.Errorf("failed to declare queue %s: %w", queue, err)
		}

		p.declared[queue] = true
	}

	err = ch.PublishWithContext(ctx, "", queue, false, false, amqp091.Publishing{
		ContentType:  constant.ContentTypeJSON,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("rabbitmq: publish failed")

		return fmt.Errorf("failed to publish to %s: %w", queue, err)
	}

	return nil
}

func (p *publisherImpl) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}

	if err := p.conn.Close(); err != nil {
		return fmt.Errorf("failed to close rabbitmq connection: %w", err)
	}

	return nil
}
