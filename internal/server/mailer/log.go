package mailer

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// LogNotifier renders messages and logs them instead of sending.
type LogNotifier struct {
	renderer *Renderer
	log      logging.Logger
}

func NewLogNotifier(renderer *Renderer, log logging.Logger) *LogNotifier {
	return &LogNotifier{renderer: renderer, log: log.With("module", "mailer")}
}

func (n *LogNotifier) SendEmail(ctx context.Context, recipient, subject, tmpl string, data map[string]any) error {
	body, err := n.renderer.Render(tmpl, data)
	if err != nil {
		return err
	}
	n.log.Info(ctx, "email not sent, smtp is not configured",
		"to", recipient, "subject", subject, "template", tmpl, "url", data["url"], "body", body)
	return nil
}
