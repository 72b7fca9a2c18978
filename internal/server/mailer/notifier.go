// Package mailer delivers templated e-mails. SMTPNotifier sends them through
// an SMTP relay; LogNotifier only writes them to the log for development.
package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
)

// Template names.
const (
	TemplateEmailConfirm  = "email_confirm.html"
	TemplatePasswordReset = "password_reset.html"
)

// Notifier sends an e-mail rendered from a named template. Callers treat
// delivery as best effort.
type Notifier interface {
	SendEmail(ctx context.Context, recipient, subject, tmpl string, data map[string]any) error
}

//go:embed templates/*.html
var templatesFS embed.FS

// Renderer executes the embedded HTML templates.
type Renderer struct {
	t *template.Template
}

func NewRenderer() (*Renderer, error) {
	t, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{t: t}, nil
}

func (r *Renderer) Render(name string, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
