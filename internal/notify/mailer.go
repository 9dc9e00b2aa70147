package notify

import (
	"fmt"
	"net/smtp"

	"github.com/forge-workshop/backend/config"
)

// Mailer sends a plain-text email.
type Mailer interface {
	Send(to, subject, body string) error
}

type smtpMailer struct {
	cfg config.EmailConfig
}

// NewSMTPMailer creates a Mailer backed by a plain SMTP relay.
func NewSMTPMailer(cfg config.EmailConfig) Mailer {
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) Send(to, subject, body string) error {
	from := m.cfg.FromAddress
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.FromAddress)
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", from, to, subject, body)
	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)

	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	}
	return smtp.SendMail(addr, auth, m.cfg.FromAddress, []string{to}, []byte(msg))
}
