// Package mail sends outgoing email for the relay endpoint and the
// notification consumer. Delivery is never correctness-critical here;
// callers treat failures as non-fatal.
package mail

import (
	"context"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message is one outgoing email. HTML is optional; Text is used when
// it is empty.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Result reports a successful delivery. PreviewURL is only set by
// transports that expose one.
type Result struct {
	MessageID  string
	PreviewURL string
}

// Mailer delivers messages. NewMailer picks the implementation from
// the configured credentials.
type Mailer interface {
	Send(ctx context.Context, m Message) (Result, error)
}

// NewMailer returns a sendgrid-backed mailer when an API key is
// configured and the logging fallback otherwise. Missing credentials
// degrade, they never crash the process.
func NewMailer(apiKey, from string) Mailer {
	if apiKey == "" {
		return &LogMailer{}
	}
	return &SendgridMailer{APIKey: apiKey, From: from}
}

// SendgridMailer delivers through the SendGrid HTTP API.
type SendgridMailer struct {
	APIKey string
	From   string
}

func (s *SendgridMailer) Send(ctx context.Context, m Message) (Result, error) {
	from := sgmail.NewEmail("Ganpati Mandal App", s.From)
	to := sgmail.NewEmail("", m.To)
	html := m.HTML
	if html == "" {
		html = m.Text
	}
	msg := sgmail.NewSingleEmail(from, m.Subject, to, m.Text, html)

	client := sendgrid.NewSendClient(s.APIKey)
	resp, err := client.SendWithContext(ctx, msg)
	if err != nil {
		return Result{}, err
	}
	if resp.StatusCode >= 400 {
		return Result{}, fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	id := ""
	if v, ok := resp.Headers["X-Message-Id"]; ok && len(v) > 0 {
		id = v[0]
	}
	return Result{MessageID: id}, nil
}

// LogMailer is the no-credentials fallback: it writes the message to
// the log and reports success, mirroring a test transport.
type LogMailer struct{}

func (l *LogMailer) Send(_ context.Context, m Message) (Result, error) {
	log.Printf("mail: dropping message to=%s subject=%q (no mail credentials configured)", m.To, m.Subject)
	return Result{MessageID: "logged"}, nil
}
