package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/iamprecieee/distributed-notification-system/internal/transport"
)

// SMTPMailer assembles headers by hand and dials net/smtp directly.
// See DESIGN.md for why this stays on the standard library.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	useAuth  bool
}

func NewSMTPMailer(host string, port int, username, password string) *SMTPMailer {
	return &SMTPMailer{Host: host, Port: port, Username: username, Password: password, useAuth: username != ""}
}

func (m *SMTPMailer) tlsConfig() *tls.Config {
	return &tls.Config{ServerName: m.Host}
}

func (m *SMTPMailer) Send(ctx context.Context, email Email) error {
	headers := map[string]string{
		"From":    email.From,
		"To":      strings.Join(email.To, ","),
		"Subject": email.Subject,
		"MIME-Version": "1.0",
	}
	if email.HTML != "" {
		headers["Content-Type"] = `text/html; charset="UTF-8"`
	} else {
		headers["Content-Type"] = `text/plain; charset="UTF-8"`
	}

	var msg strings.Builder
	for k, v := range headers {
		fmt.Fprintf(&msg, "%s: %s\r\n", k, v)
	}
	if email.HTML != "" {
		msg.WriteString("\r\n" + email.HTML)
	} else {
		msg.WriteString("\r\n" + email.Text)
	}

	smtpAddr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	var auth smtp.Auth
	if m.useAuth {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}

	done := make(chan error, 1)
	go func() {
		if m.Port == 465 {
			done <- m.sendTLS(smtpAddr, auth, email, msg.String())
			return
		}
		done <- smtp.SendMail(smtpAddr, auth, email.From, email.To, []byte(msg.String()))
	}()

	select {
	case <-ctx.Done():
		return transport.Retryable(ctx.Err())
	case err := <-done:
		if err == nil {
			return nil
		}
		return transport.Retryable(err)
	}
}

func (m *SMTPMailer) sendTLS(addr string, auth smtp.Auth, email Email, body string) error {
	conn, err := tls.Dial("tcp", addr, m.tlsConfig())
	if err != nil {
		return err
	}
	c, err := smtp.NewClient(conn, m.Host)
	if err != nil {
		return err
	}
	defer c.Close()

	if auth != nil {
		if err := c.Auth(auth); err != nil {
			return err
		}
	}
	if err := c.Mail(email.From); err != nil {
		return err
	}
	for _, recipient := range email.To {
		if err := c.Rcpt(recipient); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(body)); err != nil {
		return err
	}
	return w.Close()
}
