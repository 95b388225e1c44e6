// Package worker consumes registration events and delivers the verification
// link by email. It is the out-of-band half of the verification workflow: the
// account service never blocks on mail delivery.
package worker

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/SnehashisOrg/webapp/internal/notify"
)

type Worker struct {
	nc     *nats.Conn
	mailer Mailer
	logger *slog.Logger
	sub    *nats.Subscription
}

func New(nc *nats.Conn, mailer Mailer, logger *slog.Logger) *Worker {
	return &Worker{nc: nc, mailer: mailer, logger: logger}
}

func (w *Worker) Start() error {
	sub, err := w.nc.Subscribe(notify.SubjectUserRegistered, w.handleUserRegistered)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", notify.SubjectUserRegistered, err)
	}
	w.sub = sub

	return nil
}

func (w *Worker) Stop() {
	if w.sub != nil {
		_ = w.sub.Drain()
	}
}

func (w *Worker) handleUserRegistered(msg *nats.Msg) {
	var event notify.VerificationEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		w.logger.Error("unmarshal verification event", "error", err)
		return
	}

	subject, body := RenderVerificationMail(event)

	if err := w.mailer.Send(event.Email, subject, body); err != nil {
		// no built-in retry; the user can re-register to get a fresh token
		w.logger.Error("verification mail delivery failed", "email", event.Email, "error", err)
		return
	}

	w.logger.Info("verification mail sent", "email", event.Email)
}

// RenderVerificationMail builds the subject and HTML body for a verification
// event. The raw token appears only inside the link.
func RenderVerificationMail(event notify.VerificationEvent) (subject, body string) {
	subject = "Verify your email address"
	body = fmt.Sprintf(
		`<p>Hi %s,</p>
<p>Please verify your email address by clicking the link below. The link expires at %s.</p>
<p><a href="%s">Verify email</a></p>`,
		event.FirstName,
		event.ExpiresAt.UTC().Format("15:04 MST, Jan 2 2006"),
		event.Link,
	)
	return subject, body
}
