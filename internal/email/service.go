package email

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/optica-admin/internal/model"
)

type Config struct {
	Host     string `envconfig:"SMTP_HOST" default:"localhost"`
	Port     int    `envconfig:"SMTP_PORT" default:"1025"`
	Username string `envconfig:"SMTP_USERNAME"`
	Password string `envconfig:"SMTP_PASSWORD"`
	From     string `envconfig:"SMTP_FROM" default:"Optica Admin <no-reply@optica.local>"`
}

// Sender delivers composed messages. *gomail.Dialer implements it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Service interface {
	SendCustom(ctx context.Context, to string, subject string, content string) error
	NotifyDecision(ctx context.Context, d model.DiscountDecision) error
}

type service struct {
	sender Sender
	from   string
	logger zerolog.Logger
}

func NewDialer(cfg Config) *gomail.Dialer {
	return gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
}

func NewService(sender Sender, from string, logger zerolog.Logger) Service {
	return &service{sender: sender, from: from, logger: logger}
}

func (s *service) SendCustom(ctx context.Context, to string, subject string, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("no recipient for %q", subject)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", content)

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	s.logger.Debug().Str("to", to).Str("subject", subject).Msg("Mail sent")
	return nil
}

var decisionBody = template.Must(template.New("decision").Parse(
	`Hello,

The discount request #{{.ID}} for {{.PatientName}} ({{.Percentage}}%) has been {{.Status}} by {{.DecidedBy}}.
{{- if .RejectionReason}}

Reason: {{.RejectionReason}}
{{- end}}

Optica Admin
`))

// NotifyDecision tells the requester the outcome of their discount request.
func (s *service) NotifyDecision(ctx context.Context, d model.DiscountDecision) error {
	var body bytes.Buffer
	view := struct {
		model.DiscountDecision
		RejectionReason string
	}{DiscountDecision: d}
	if d.RejectionReason != nil {
		view.RejectionReason = *d.RejectionReason
	}
	if err := decisionBody.Execute(&body, view); err != nil {
		return err
	}

	subject := fmt.Sprintf("Discount request #%d %s", d.ID, d.Status)
	return s.SendCustom(ctx, d.RequestedBy, subject, body.String())
}
