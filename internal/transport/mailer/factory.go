package mailer

import "github.com/iamprecieee/distributed-notification-system/internal/config"

// New selects the mailer implementation per config.EmailProvider.
func New(cfg *config.Config) Mailer {
	if cfg.EmailProvider == "sendgrid" {
		return NewSendGridMailer(cfg.SendGridAPIKey, cfg.SMTPFrom)
	}
	return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
}
