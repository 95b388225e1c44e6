// Package notify carries verification-email events from the account service
// to the notification worker over NATS. Delivery is out-of-band: a publish
// failure never fails the registration that triggered it.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

const SubjectUserRegistered = "user.registered"

type VerificationEvent struct {
	FirstName string    `json:"first_name"`
	Email     string    `json:"email"`
	Link      string    `json:"link"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Publisher struct {
	nc      *nats.Conn
	timeout time.Duration
}

func NewPublisher(nc *nats.Conn, timeout time.Duration) *Publisher {
	return &Publisher{nc: nc, timeout: timeout}
}

func (p *Publisher) PublishVerification(ctx context.Context, event VerificationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal verification event: %w", err)
	}

	if err := p.nc.Publish(SubjectUserRegistered, data); err != nil {
		return fmt.Errorf("publish verification event: %w", err)
	}
	if err := p.nc.FlushTimeout(p.timeout); err != nil {
		return fmt.Errorf("flush verification event: %w", err)
	}

	return nil
}
