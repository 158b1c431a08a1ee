package worker

import (
	"context"
	"testing"

	"github.com/iamprecieee/distributed-notification-system/internal/notification"
	"github.com/iamprecieee/distributed-notification-system/internal/transport"
	"github.com/iamprecieee/distributed-notification-system/internal/transport/mailer"
	"github.com/iamprecieee/distributed-notification-system/internal/transport/push"
)

type fakeMailer struct {
	sent mailer.Email
	err  error
}

func (f *fakeMailer) Send(_ context.Context, email mailer.Email) error {
	f.sent = email
	return f.err
}

type fakePusher struct {
	sent push.Push
	err  error
}

func (f *fakePusher) Send(_ context.Context, p push.Push) error {
	f.sent = p
	return f.err
}

func TestMailTransportResource(t *testing.T) {
	tr := NewMailTransport(&fakeMailer{}, "noreply@example.com")
	if tr.Resource() != "smtp" {
		t.Errorf("Resource() = %q, want smtp", tr.Resource())
	}
}

func TestMailTransportDeliverRejectsMissingEmail(t *testing.T) {
	tr := NewMailTransport(&fakeMailer{}, "noreply@example.com")
	err := tr.Deliver(context.Background(), Delivery{Envelope: notification.Envelope{}})
	if err == nil {
		t.Fatal("expected error for missing email recipient")
	}
	if transport.IsRetryable(err) {
		t.Error("expected missing-recipient error to be non-retryable")
	}
}

func TestMailTransportDeliverSendsRenderedContent(t *testing.T) {
	m := &fakeMailer{}
	tr := NewMailTransport(m, "noreply@example.com")
	d := Delivery{
		Envelope: notification.Envelope{Email: "user@example.com"},
		Rendered: map[string]string{"subject": "Hi", "text": "body text", "html": "<p>body</p>"},
	}
	if err := tr.Deliver(context.Background(), d); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if m.sent.To[0] != "user@example.com" || m.sent.Subject != "Hi" || m.sent.From != "noreply@example.com" {
		t.Errorf("got %+v", m.sent)
	}
}

func TestPushTransportResource(t *testing.T) {
	tr := NewPushTransport(&fakePusher{})
	if tr.Resource() != "fcm" {
		t.Errorf("Resource() = %q, want fcm", tr.Resource())
	}
}

func TestPushTransportDeliverRejectsMissingToken(t *testing.T) {
	tr := NewPushTransport(&fakePusher{})
	err := tr.Deliver(context.Background(), Delivery{Envelope: notification.Envelope{}})
	if err == nil {
		t.Fatal("expected error for missing push token")
	}
	if transport.IsRetryable(err) {
		t.Error("expected missing-token error to be non-retryable")
	}
}

func TestPushTransportDeliverExcludesTitleAndBodyFromData(t *testing.T) {
	p := &fakePusher{}
	tr := NewPushTransport(p)
	d := Delivery{
		Envelope: notification.Envelope{PushToken: "token-1"},
		Rendered: map[string]string{"title": "Hi", "body": "body text", "extra": "value"},
	}
	if err := tr.Deliver(context.Background(), d); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if p.sent.Title != "Hi" || p.sent.Body != "body text" {
		t.Errorf("got title=%q body=%q", p.sent.Title, p.sent.Body)
	}
	if _, ok := p.sent.Data["title"]; ok {
		t.Error("expected title to be excluded from Data")
	}
	if _, ok := p.sent.Data["body"]; ok {
		t.Error("expected body to be excluded from Data")
	}
	if p.sent.Data["extra"] != "value" {
		t.Error("expected non-title/body fields to pass through to Data")
	}
}
