package mailer

import (
	"context"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Mailgun wraps Mailgun client configuration.
type Mailgun struct {
	Domain  string
	APIKey  string
	Sender  string
	APIBase string // overrides the Mailgun endpoint, e.g. the EU region
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{Domain: domain, APIKey: apiKey, Sender: sender}
}

// Send renders job and delivers it synchronously.
func (m *Mailgun) Send(ctx context.Context, job EmailJob) error {
	if err := job.Render(); err != nil {
		return err
	}
	return m.Deliver(ctx, job.To, job.Subject, job.Text, job.HTML)
}

// Deliver sends one message. html is optional; if provided it will be used as HTML body.
func (m *Mailgun) Deliver(ctx context.Context, to, subject, text, html string) error {
	client := mg.NewMailgun(m.Domain, m.APIKey)
	if m.APIBase != "" {
		client.SetAPIBase(m.APIBase)
	}
	msg := client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := client.Send(c, msg)
	return err
}
