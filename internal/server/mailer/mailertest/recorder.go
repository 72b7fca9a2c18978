// Package mailertest records e-mails instead of sending them.
package mailertest

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/server/mailer"
)

// Sent is one recorded SendEmail call.
type Sent struct {
	Recipient string
	Subject   string
	Template  string
	Data      map[string]any
}

// Recorder is a mailer.Notifier that keeps every message. Err, when set, is
// returned after recording.
type Recorder struct {
	mu   sync.Mutex
	sent []Sent
	Err  error
}

var _ mailer.Notifier = (*Recorder)(nil)

func (r *Recorder) SendEmail(ctx context.Context, recipient, subject, tmpl string, data map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, Sent{Recipient: recipient, Subject: subject, Template: tmpl, Data: data})
	return r.Err
}

func (r *Recorder) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sent(nil), r.sent...)
}
