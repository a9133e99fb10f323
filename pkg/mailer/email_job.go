package mailer

import (
	"context"

	"github.com/oksasatya/bootcamp-directory/pkg/mailer/templates"
)

// EmailJob is one outgoing email. It is the JSON payload put on the RabbitMQ
// queue. Either Template+Data or Subject with Text/HTML must be set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "reset_password"
	Data     map[string]any `json:"data,omitempty"`
}

// Sender delivers an EmailJob, possibly asynchronously.
type Sender interface {
	Send(ctx context.Context, job EmailJob) error
}

// Render fills Subject, Text and HTML from Template when one is named.
func (j *EmailJob) Render() error {
	if j.Template == "" {
		return nil
	}
	subject, text, html, err := templates.Render(j.Template, j.Data)
	if err != nil {
		return err
	}
	if j.Subject == "" {
		j.Subject = subject
	}
	j.Text, j.HTML = text, html
	return nil
}
