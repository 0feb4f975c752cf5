// Package mail sends the verification mails members receive.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/a-h/templ"
	"github.com/mailgun/mailgun-go/v4"
)

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// MailgunMailer delivers through the Mailgun HTTP API.
type MailgunMailer struct {
	mg   mailgun.Mailgun
	from string
}

// NewMailgunMailer sends as "senderName <hanlove@domain>".
func NewMailgunMailer(domain, apiKey, senderName string) *MailgunMailer {
	return &MailgunMailer{
		mg:   mailgun.NewMailgun(domain, apiKey),
		from: fmt.Sprintf("%s <hanlove@%s>", senderName, domain),
	}
}

func (m *MailgunMailer) Send(ctx context.Context, msg Message) error {
	message := m.mg.NewMessage(m.from, msg.Subject, msg.Text, msg.To)
	if msg.HTML != "" {
		message.SetHtml(msg.HTML)
	}
	resp, id, err := m.mg.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("mailgun send to %s: %w", msg.To, err)
	}
	slog.Info("mail sent", "to", msg.To, "id", id, "response", resp)
	return nil
}

// LogMailer writes mails to the log instead of sending them. Used when no
// Mailgun key is configured.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) Send(ctx context.Context, msg Message) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "mail not sent, no mail provider configured",
		"to", msg.To,
		"subject", msg.Subject,
		"text", msg.Text,
	)
	return nil
}

// Recorder keeps every message in memory.
type Recorder struct {
	Sent []Message
}

func (r *Recorder) Send(ctx context.Context, msg Message) error {
	r.Sent = append(r.Sent, msg)
	return nil
}

// Last returns the most recent message, or the zero Message.
func (r *Recorder) Last() Message {
	if len(r.Sent) == 0 {
		return Message{}
	}
	return r.Sent[len(r.Sent)-1]
}

func render(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
