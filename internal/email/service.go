package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/google/uuid"

	"github.com/helpdeskgo/helpdesk-api/internal/logging"
)

type Service struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	fromEmail    string
}

func NewService(smtpHost, smtpPort, smtpUser, smtpPassword string) *Service {
	return &Service{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUser:     smtpUser,
		smtpPassword: smtpPassword,
		fromEmail:    smtpUser,
	}
}

// SendTicketReceivedEmail confirms to the requester that their ticket exists.
// This method is designed to be called in a goroutine.
func (s *Service) SendTicketReceivedEmail(ctx context.Context, toEmail, name string, ticketID uuid.UUID) error {
	logger := logging.GetLoggerFromContext(ctx)

	subject := "We received your ticket"
	body, err := s.renderTicketReceivedTemplate(name, ticketID)
	if err != nil {
		logger.Error("failed to render email template", "error", err)
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(toEmail, subject, body); err != nil {
		logger.Error("failed to send ticket confirmation", "email", toEmail, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("ticket confirmation sent", "email", toEmail, "ticket_id", ticketID)
	return nil
}

const ticketReceivedTemplate = `
<html>
<body style="font-family: sans-serif; color: #1f2937;">
  <h2>Hi {{.Name}},</h2>
  <p>Thanks for reaching out. Your ticket has been received and will be picked
  up by the next available engineer.</p>
  <p>Reference: <strong>{{.TicketID}}</strong></p>
  <p>You will hear from us by email as soon as the ticket is assigned.</p>
</body>
</html>
`

func (s *Service) renderTicketReceivedTemplate(name string, ticketID uuid.UUID) (string, error) {
	tmpl, err := template.New("ticket_received").Parse(ticketReceivedTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, struct {
		Name     string
		TicketID uuid.UUID
	}{
		Name:     name,
		TicketID: ticketID,
	})
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *Service) sendEmail(toEmail, subject, htmlBody string) error {
	if s.smtpHost == "" {
		// Email is optional in development; drop silently
		return nil
	}

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	auth := smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)

	msg := bytes.Buffer{}
	msg.WriteString(fmt.Sprintf("From: %s\r\n", s.fromEmail))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", toEmail))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	return smtp.SendMail(addr, auth, s.fromEmail, []string{toEmail}, msg.Bytes())
}
