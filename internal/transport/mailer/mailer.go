// Package mailer implements the email leg of the worker's transport
// call. Idempotency lives in Redis, not in provider headers, so the
// Mailer interface carries no idempotency-key plumbing; internal/config's
// EmailProvider switch picks the concrete implementation.
package mailer

import "context"

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

type Email struct {
	From    string
	To      []string
	Subject string
	Text    string
	HTML    string
}
