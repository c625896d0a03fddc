// Package notify delivers the email messages the service queues on Kafka.
package notify

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"fabrication-service/internal/producer"

	gopkgmail "gopkg.in/gomail.v2"
)

//go:embed templates/*
var templateFS embed.FS

var ErrUnknownTemplate = errors.New("unknown email template")

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	SSL      bool
}

// Dialer sends composed messages. *gomail.Dialer satisfies it.
type Dialer interface {
	DialAndSend(m ...*gopkgmail.Message) error
}

type EmailSender struct {
	from   string
	dialer Dialer
	html   *htmltemplate.Template
	plain  *texttemplate.Template
}

func NewEmailSender(cfg SMTPConfig) (*EmailSender, error) {
	d := gopkgmail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.SSL = cfg.SSL
	return NewEmailSenderWithDialer(cfg.From, d)
}

func NewEmailSenderWithDialer(from string, d Dialer) (*EmailSender, error) {
	html, err := htmltemplate.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse html templates: %w", err)
	}
	plain, err := texttemplate.ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("parse text templates: %w", err)
	}
	return &EmailSender{from: from, dialer: d, html: html, plain: plain}, nil
}

func (s *EmailSender) Send(msg producer.EmailMessage) error {
	m, err := s.compose(msg)
	if err != nil {
		return err
	}
	return s.dialer.DialAndSend(m)
}

func (s *EmailSender) compose(msg producer.EmailMessage) (*gopkgmail.Message, error) {
	htmlT := s.html.Lookup(msg.Template + ".html")
	plainT := s.plain.Lookup(msg.Template + ".txt")
	if htmlT == nil || plainT == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, msg.Template)
	}

	var htmlBody, plainBody bytes.Buffer
	if err := htmlT.Execute(&htmlBody, msg.Data); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	if err := plainT.Execute(&plainBody, msg.Data); err != nil {
		return nil, fmt.Errorf("render plain: %w", err)
	}

	m := gopkgmail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", plainBody.String())
	m.AddAlternative("text/html", htmlBody.String())
	return m, nil
}
