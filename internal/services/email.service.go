package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	"cronify/config"
	"cronify/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const sendGridSendEndpoint = "/v3/mail/send"

type PartnerInviteEmail struct {
	To        string
	OwnerName string
	Role      string
}

type EncouragementEmail struct {
	To          string
	OwnerName   string
	SenderEmail string
	HabitTitle  string
	Message     string
}

// Mailer sends the partner notifications. Delivery failures are reported but
// never roll back the change that triggered them.
type Mailer interface {
	SendPartnerInvite(ctx context.Context, email PartnerInviteEmail) error
	SendEncouragement(ctx context.Context, email EncouragementEmail) error
}

// NewMailer returns a SendGrid mailer, or a mailer that only logs when no API
// key is configured.
func NewMailer(cfg config.Config) Mailer {
	if cfg.SendGridAPIKey == "" {
		return &noopMailer{log: logger.New("mailer")}
	}
	return NewSendGridMailer(cfg, "")
}

type SendGridMailer struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	appURL    string
	log       logger.Logger
}

// NewSendGridMailer talks to host, or to the public SendGrid API when host is
// empty.
func NewSendGridMailer(cfg config.Config, host string) *SendGridMailer {
	client := sendgrid.NewSendClient(cfg.SendGridAPIKey)
	if host != "" {
		client = &sendgrid.Client{Request: sendgrid.GetRequest(cfg.SendGridAPIKey, sendGridSendEndpoint, host)}
		client.Method = "POST"
	}

	return &SendGridMailer{
		client:    client,
		fromEmail: cfg.SendGridFromEmail,
		fromName:  cfg.SendGridFromName,
		appURL:    strings.TrimRight(cfg.AppURL, "/"),
		log:       logger.New("sendGridMailer"),
	}
}

func (s *SendGridMailer) SendPartnerInvite(ctx context.Context, email PartnerInviteEmail) error {
	subject := fmt.Sprintf("%s invited you to follow their habits on Cronify", email.OwnerName)
	plain := fmt.Sprintf(
		"%s added you as a %s on Cronify. Sign in with this address to accept: %s",
		email.OwnerName, email.Role, s.link("/partners"),
	)
	body := fmt.Sprintf(
		"<p><strong>%s</strong> added you as a %s on Cronify.</p><p><a href=\"%s\">Sign in with this address to accept</a></p>",
		html.EscapeString(email.OwnerName), html.EscapeString(email.Role), s.link("/partners"),
	)

	return s.send(ctx, "SendPartnerInvite", email.To, "", subject, plain, body)
}

func (s *SendGridMailer) SendEncouragement(ctx context.Context, email EncouragementEmail) error {
	subject := fmt.Sprintf("New encouragement for %s", email.HabitTitle)
	plain := fmt.Sprintf("%s wrote about %s: %s", email.SenderEmail, email.HabitTitle, email.Message)
	body := fmt.Sprintf(
		"<p>%s wrote about <strong>%s</strong>:</p><blockquote>%s</blockquote>",
		html.EscapeString(email.SenderEmail),
		html.EscapeString(email.HabitTitle),
		html.EscapeString(email.Message),
	)

	return s.send(ctx, "SendEncouragement", email.To, email.OwnerName, subject, plain, body)
}

func (s *SendGridMailer) send(
	ctx context.Context,
	function, toEmail, toName, subject, plain, body string,
) error {
	log := s.log.TraceFromContext(ctx).Function(function)

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plain, body)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return log.Err("failed to send email", err, "to", toEmail)
	}
	if response.StatusCode >= 400 {
		return log.Error("email rejected", "to", toEmail, "status", response.StatusCode, "body", response.Body)
	}

	log.Info("email sent", "to", toEmail, "status", response.StatusCode)
	return nil
}

func (s *SendGridMailer) link(path string) string {
	return s.appURL + path
}

type noopMailer struct {
	log logger.Logger
}

func (n *noopMailer) SendPartnerInvite(ctx context.Context, email PartnerInviteEmail) error {
	n.log.TraceFromContext(ctx).Function("SendPartnerInvite").
		Debug("email disabled, skipping partner invite", "to", email.To)
	return nil
}

func (n *noopMailer) SendEncouragement(ctx context.Context, email EncouragementEmail) error {
	n.log.TraceFromContext(ctx).Function("SendEncouragement").
		Debug("email disabled, skipping encouragement", "to", email.To)
	return nil
}
