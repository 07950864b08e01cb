package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"prompt-server/internal/interfaces"
	"prompt-server/internal/models"
)

// Compile-time check to ensure RabbitMQRotationPublisher implements RotationEventPublisher
var _ interfaces.RotationEventPublisher = (*RabbitMQRotationPublisher)(nil)

// RabbitMQRotationPublisher publishes rotation events to a fanout exchange.
type RabbitMQRotationPublisher struct {
	conn     *amqp091.Connection
	ch       *amqp091.Channel
	exchange string
}

// NewRabbitMQRotationPublisher creates a publisher on an established
// connection. Reconnect handling belongs to the code owning the connection.
func NewRabbitMQRotationPublisher(conn *amqp091.Connection, exchange string) (*RabbitMQRotationPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}

	ch, err := conn.Channel()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open a channel")
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// Durable fanout exchange so it survives broker restarts. Declaring an
	// existing exchange is a no-op.
	err = ch.ExchangeDeclare(
		exchange, // name
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		_ = ch.Close()
		log.Error().Err(err).Str("exchange", exchange).Msg("Failed to declare exchange")
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchange, err)
	}

	log.Info().Str("exchange", exchange).Msg("Rotation event exchange declared successfully")

	return &RabbitMQRotationPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// PublishRotationEvent publishes a rotation event.
func (p *RabbitMQRotationPublisher) PublishRotationEvent(ctx context.Context, event models.RotationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Interface("event", event).Msg("Failed to marshal rotation event")
		return fmt.Errorf("failed to marshal rotation event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		p.exchange, // exchange
		"",         // routing key (unused for fanout)
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   time.Now(),
		},
	)
	if err != nil {
		log.Error().Err(err).Interface("event", event).Msg("Failed to publish rotation event")
		return fmt.Errorf("failed to publish rotation event: %w", err)
	}

	log.Debug().Interface("event", event).Msg("Rotation event published")
	return nil
}

// Close closes the RabbitMQ channel.
func (p *RabbitMQRotationPublisher) Close() error {
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}
