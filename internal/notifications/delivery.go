package notifications

import (
	"bytes"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"tutor-school/crm-portal/crm-portal-backend/internal/config"
)

// EmailSender delivers notifications over SMTP.
type EmailSender struct {
	config config.EmailConfig
	logger *zap.Logger
}

// NewEmailSender creates an SMTP email sender.
func NewEmailSender(cfg config.EmailConfig, logger *zap.Logger) *EmailSender {
	return &EmailSender{config: cfg, logger: logger}
}

// Send delivers a plain-text email to one recipient.
func (s *EmailSender) Send(to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("no recipient specified")
	}

	msg := s.buildMessage(to, subject, body)
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)

	if err := smtp.SendMail(addr, auth, s.config.FromAddress, []string{to}, msg); err != nil {
		s.logger.Error("Failed to send email",
			zap.String("to", to),
			zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (s *EmailSender) buildMessage(to, subject, body string) []byte {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.FromAddress))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.Bytes()
}
