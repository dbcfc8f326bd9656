// Package notify hands lifecycle events to the outbound notification system.
// Delivery to users happens downstream of the exchange.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ConsultationBooked    = "consultation.booked"
	ConsultationConfirmed = "consultation.confirmed"
	ConsultationCompleted = "consultation.completed"
	ConsultationCancelled = "consultation.cancelled"
	EnrollmentCreated     = "enrollment.created"
	EnrollmentActivated   = "enrollment.activated"
	EnrollmentCancelled   = "enrollment.cancelled"
)

type Publisher interface {
	Publish(ctx context.Context, key string, v any) error
}

type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         b,
	})
}

func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

type nop struct{}

func (nop) Publish(context.Context, string, any) error { return nil }

// Nop is used when no broker is configured.
func Nop() Publisher { return nop{} }

// Send publishes and only logs failures.
func Send(ctx context.Context, p Publisher, log *slog.Logger, key string, v any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, key, v); err != nil && log != nil {
		log.Warn("notification publish failed", "key", key, "error", err)
	}
}
