package mailer

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/iamprecieee/distributed-notification-system/internal/transport"
)

const sendgridSendURL = "https://api.sendgrid.com/v3/mail/send"

// SendGridMailer uses the v3 mail helper to build the request body and
// sends it with a raw http.Client.Do — see package doc for why there is
// no per-send idempotency-key header.
type SendGridMailer struct {
	apiKey   string
	fromName string
	client   *http.Client
}

func NewSendGridMailer(apiKey, fromName string) *SendGridMailer {
	return &SendGridMailer{apiKey: apiKey, fromName: fromName, client: &http.Client{Timeout: 10 * time.Second}}
}

func (s *SendGridMailer) Send(ctx context.Context, e Email) error {
	from := mail.NewEmail(s.fromName, e.From)

	message := mail.NewV3Mail()
	message.SetFrom(from)
	message.Subject = e.Subject

	p := mail.NewPersonalization()
	for _, to := range e.To {
		p.AddTos(mail.NewEmail("", to))
	}
	message.AddPersonalizations(p)

	if e.Text != "" {
		message.AddContent(mail.NewContent("text/plain", e.Text))
	}
	if e.HTML != "" {
		message.AddContent(mail.NewContent("text/html", e.HTML))
	}

	body := mail.GetRequestBody(message)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sendgridSendURL, bytes.NewReader(body))
	if err != nil {
		return transport.NonRetryable(err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return transport.Retryable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return transport.FromStatusCode(resp.StatusCode, string(respBody))
	}
	return nil
}
