package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/config"
	mail "github.com/wneessen/go-mail"
)

// SMTPConfig describes the outgoing relay.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	StartTLS bool
}

// SMTPConfigFromConfig extracts the relay settings. From defaults to the
// SMTP user.
func SMTPConfigFromConfig(cfg *config.Config) SMTPConfig {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return SMTPConfig{
		Host:     cfg.SMTPServer,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     from,
		StartTLS: cfg.SMTPUseTLS,
	}
}

type sendFunc func(ctx context.Context, cfg SMTPConfig, msg *mail.Msg) error

// SMTPNotifier renders a template and delivers it as an HTML message.
type SMTPNotifier struct {
	cfg      SMTPConfig
	renderer *Renderer
	send     sendFunc
	now      func() time.Time
}

func NewSMTPNotifier(cfg SMTPConfig, renderer *Renderer) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, renderer: renderer, send: deliver, now: time.Now}
}

func (n *SMTPNotifier) SendEmail(ctx context.Context, recipient, subject, tmpl string, data map[string]any) error {
	body, err := n.renderer.Render(tmpl, data)
	if err != nil {
		return err
	}

	msg, err := buildMessage(n.cfg.From, recipient, subject, body, n.now())
	if err != nil {
		return err
	}
	if err := n.send(ctx, n.cfg, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", recipient, err)
	}
	return nil
}

func buildMessage(from, to, subject, htmlBody string, date time.Time) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("sender %q: %w", from, err)
	}
	if err := m.To(to); err != nil {
		return nil, fmt.Errorf("recipient %q: %w", to, err)
	}
	m.Subject(subject)
	m.SetDateWithValue(date)
	m.SetMessageID()
	m.SetBodyString(mail.TypeTextHTML, htmlBody)
	return m, nil
}

func clientOptions(cfg SMTPConfig) []mail.Option {
	opts := []mail.Option{mail.WithPort(cfg.Port), mail.WithTLSPolicy(mail.NoTLS)}
	if cfg.StartTLS {
		opts[1] = mail.WithTLSPolicy(mail.TLSMandatory)
	}
	if cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password),
		)
	}
	return opts
}

// deliver runs one SMTP session for a single message.
func deliver(ctx context.Context, cfg SMTPConfig, msg *mail.Msg) error {
	c, err := mail.NewClient(cfg.Host, clientOptions(cfg)...)
	if err != nil {
		return err
	}
	return c.DialAndSendWithContext(ctx, msg)
}
