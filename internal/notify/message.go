// Package notify turns booking and login events into administrator messages
// and delivers them through an ordered list of senders: NATS, a webhook and
// finally the store-backed outbox.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/study-scheduler/internal/application"
)

// ErrNoSenders is returned by a Chain configured without senders.
var ErrNoSenders = errors.New("notify: no senders configured")

// Message is one composed notification. The JSON form is the webhook payload.
type Message struct {
	Kind       application.EventKind `json:"kind"`
	To         string                `json:"to_email"`
	Subject    string                `json:"subject"`
	Body       string                `json:"message"`
	Username   string                `json:"username"`
	UserEmail  string                `json:"user_email"`
	SessionID  string                `json:"session_id,omitempty"`
	OccurredAt time.Time             `json:"occurred_at"`
}

// Sender delivers a single message.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Chain implements application.Notifier. Each message goes to the first
// sender that accepts it; later senders are only tried after a failure.
type Chain struct {
	adminEmail    string
	senders       []Sender
	confirmOwners bool
	logger        *slog.Logger
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithLogger sets the logger for per-sender failures.
func WithLogger(logger *slog.Logger) ChainOption {
	return func(c *Chain) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithOwnerConfirmation also sends a booking confirmation to the owner's address.
func WithOwnerConfirmation(enabled bool) ChainOption {
	return func(c *Chain) { c.confirmOwners = enabled }
}

// NewChain delivers administrator messages to adminEmail through senders in order.
func NewChain(adminEmail string, senders []Sender, opts ...ChainOption) *Chain {
	chain := &Chain{
		adminEmail: adminEmail,
		senders:    append([]Sender(nil), senders...),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(chain)
	}
	return chain
}

// Notify implements application.Notifier.
func (c *Chain) Notify(ctx context.Context, notification application.Notification) error {
	messages := []Message{Compose(notification, c.adminEmail)}
	if c.confirmOwners {
		if confirmation, ok := ComposeConfirmation(notification); ok {
			messages = append(messages, confirmation)
		}
	}

	var errs []error
	for _, msg := range messages {
		if err := c.deliver(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Chain) deliver(ctx context.Context, msg Message) error {
	if len(c.senders) == 0 {
		return ErrNoSenders
	}
	var errs []error
	for _, sender := range c.senders {
		err := sender.Send(ctx, msg)
		if err == nil {
			c.logger.DebugContext(ctx, "notification delivered", "sender", sender.Name(), "to", msg.To, "kind", msg.Kind)
			return nil
		}
		c.logger.WarnContext(ctx, "notification sender failed", "sender", sender.Name(), "to", msg.To, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", sender.Name(), err))
	}
	return errors.Join(errs...)
}
