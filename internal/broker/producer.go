package broker

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iamprecieee/distributed-notification-system/metrics"
)

// Producer publishes persistent messages to the notifications exchange:
// one long-lived writer with Publish/Close methods.
type Producer struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewProducer(url string) (*Producer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := DeclareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare topology: %w", err)
	}
	return &Producer{conn: conn, ch: ch}, nil
}

// Publish sends a persistent message with routingKey against the
// notifications exchange. The channel is not in confirm mode, so Publish
// returns once the message is written to the channel; no broker
// acknowledgement is awaited.
func (p *Producer) Publish(ctx context.Context, routingKey string, body []byte, headers amqp.Table) error {
	err := p.ch.PublishWithContext(ctx, NotificationsExchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Headers:      headers,
	})
	if err != nil {
		metrics.BrokerPublishFailureTotal.WithLabelValues(routingKey).Inc()
	}
	return err
}

// PublishDLQ sends directly to the failed queue via the DLX exchange,
// used by the worker runtime when retries are exhausted.
func (p *Producer) PublishDLQ(ctx context.Context, body []byte) error {
	err := p.ch.PublishWithContext(ctx, DLXExchange, RoutingKeyFailed, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		metrics.BrokerPublishFailureTotal.WithLabelValues(RoutingKeyFailed).Inc()
	}
	return err
}

func (p *Producer) Close() error {
	if err := p.ch.Close(); err != nil {
		return err
	}
	return p.conn.Close()
}
