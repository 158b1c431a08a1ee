package worker

import (
	"context"
	"errors"

	"github.com/iamprecieee/distributed-notification-system/internal/notification"
	"github.com/iamprecieee/distributed-notification-system/internal/transport"
	"github.com/iamprecieee/distributed-notification-system/internal/transport/mailer"
	"github.com/iamprecieee/distributed-notification-system/internal/transport/push"
)

var errMissingRecipient = errors.New("worker: envelope carries no recipient for this transport")

// Delivery is what the runtime hands to a Transport once a template has
// been resolved and rendered: the rendered content fields (subject/text/
// html for email, title/body for push) plus the envelope the fields were
// rendered for.
type Delivery struct {
	Envelope notification.Envelope
	Rendered map[string]string
}

// Transport is the one seam that makes the runtime below usable for both
// queues. Resource names the breaker resource it calls through.
type Transport interface {
	Resource() string
	Deliver(ctx context.Context, d Delivery) error
}

// mailTransport adapts a mailer.Mailer to Transport: one Send method
// taking an already-built message.
type mailTransport struct {
	mailer mailer.Mailer
	from   string
}

func NewMailTransport(m mailer.Mailer, from string) Transport {
	return &mailTransport{mailer: m, from: from}
}

func (t *mailTransport) Resource() string { return "smtp" }

func (t *mailTransport) Deliver(ctx context.Context, d Delivery) error {
	if d.Envelope.Email == "" {
		return transport.NonRetryable(errMissingRecipient)
	}
	return t.mailer.Send(ctx, mailer.Email{
		From:    t.from,
		To:      []string{d.Envelope.Email},
		Subject: d.Rendered["subject"],
		Text:    d.Rendered["text"],
		HTML:    d.Rendered["html"],
	})
}

// pushTransport adapts a push.Pusher to Transport.
type pushTransport struct {
	pusher push.Pusher
}

func NewPushTransport(p push.Pusher) Transport {
	return &pushTransport{pusher: p}
}

func (t *pushTransport) Resource() string { return "fcm" }

func (t *pushTransport) Deliver(ctx context.Context, d Delivery) error {
	if d.Envelope.PushToken == "" {
		return transport.NonRetryable(errMissingRecipient)
	}
	data := make(map[string]string, len(d.Rendered))
	for k, v := range d.Rendered {
		if k == "title" || k == "body" {
			continue
		}
		data[k] = v
	}
	return t.pusher.Send(ctx, push.Push{
		DeviceToken: d.Envelope.PushToken,
		Title:       d.Rendered["title"],
		Body:        d.Rendered["body"],
		Data:        data,
	})
}
