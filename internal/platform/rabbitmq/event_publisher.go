package rabbitmq

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"

	"rizz-social/internal/metrics"
	"rizz-social/internal/model"
)

// EventPublisher writes content events to a durable queue, one channel per
// publish.
type EventPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewEventPublisher(conn *amqp.Connection, queueName string) *EventPublisher {
	return &EventPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *EventPublisher) Publish(ctx context.Context, event model.ContentEvent) error {
	if err := p.publish(ctx, event); err != nil {
		metrics.ContentEventsPublished.WithLabelValues(event.Type, "error").Inc()
		return err
	}
	metrics.ContentEventsPublished.WithLabelValues(event.Type, "ok").Inc()
	return nil
}

// newPublishing encodes event as a persistent JSON message.
func newPublishing(event model.ContentEvent) (amqp.Publishing, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event payload failed: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		Type:         event.Type,
		Timestamp:    event.OccurredAt,
		Body:         payload,
		DeliveryMode: amqp.Persistent,
	}, nil
}

func (p *EventPublisher) publish(ctx context.Context, event model.ContentEvent) error {
	msg, err := newPublishing(event)
	if err != nil {
		return err
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := DeclareQueue(ch, p.queueName); err != nil {
		return err
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		msg,
	); err != nil {
		return fmt.Errorf("publish %s event failed: %w", event.Type, err)
	}
	return nil
}
