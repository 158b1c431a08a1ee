// Package broker wraps RabbitMQ (AMQP 0-9-1): one exchange for live
// traffic, durable per-channel queues, and a dead-letter exchange for
// exhausted retries.
package broker

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	NotificationsExchange = "notifications.direct"
	DLXExchange           = "dlx.exchange"

	EmailQueue  = "email.queue"
	PushQueue   = "push.queue"
	FailedQueue = "failed.queue"

	RoutingKeyEmail          = "email"
	RoutingKeyPush           = "push"
	RoutingKeyFailed         = "failed"
	RoutingKeyTemplateUpdate = "template.updated"

	queueTTLMillis = int32(3_600_000)
)

// DeclareTopology declares the exchange/queue/DLX wiring. Idempotent:
// safe to call from every binary at startup.
func DeclareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(NotificationsExchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.ExchangeDeclare(DLXExchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(FailedQueue, true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.QueueBind(FailedQueue, RoutingKeyFailed, DLXExchange, false, nil); err != nil {
		return err
	}

	for queue, routingKey := range map[string]string{
		EmailQueue: RoutingKeyEmail,
		PushQueue:  RoutingKeyPush,
	} {
		args := amqp.Table{
			"x-dead-letter-exchange":    DLXExchange,
			"x-dead-letter-routing-key": RoutingKeyFailed,
			"x-message-ttl":             queueTTLMillis,
		}
		if _, err := ch.QueueDeclare(queue, true, false, false, false, args); err != nil {
			return err
		}
		if err := ch.QueueBind(queue, routingKey, NotificationsExchange, false, nil); err != nil {
			return err
		}
	}

	return nil
}

// QueueForType maps a notification type to its target queue and
// routing key. Unknown types are the caller's 400.
func QueueForType(notificationType string) (queue, routingKey string, ok bool) {
	switch notificationType {
	case "email":
		return EmailQueue, RoutingKeyEmail, true
	case "push":
		return PushQueue, RoutingKeyPush, true
	default:
		return "", "", false
	}
}
