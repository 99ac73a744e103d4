package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/example/study-scheduler/internal/application"
)

const defaultFlushTimeout = 2 * time.Second

//go:generate mockgen -destination=mocks/publisher_mock.go -package=mocks . Publisher

// Publisher is the subset of *nats.Conn used to emit events.
type Publisher interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
}

// NATSSender publishes messages as JSON on "{prefix}.booking.created" or
// "{prefix}.user.login".
type NATSSender struct {
	publisher Publisher
	prefix    string
}

// NewNATSSender publishes through publisher. An empty prefix means "booking".
func NewNATSSender(publisher Publisher, subjectPrefix string) *NATSSender {
	subjectPrefix = strings.Trim(strings.TrimSpace(subjectPrefix), ".")
	if subjectPrefix == "" {
		subjectPrefix = "booking"
	}
	return &NATSSender{publisher: publisher, prefix: subjectPrefix}
}

// Name implements Sender.
func (s *NATSSender) Name() string { return "nats" }

// Subject returns the subject a message of kind is published on.
func (s *NATSSender) Subject(kind application.EventKind) string {
	if kind == application.EventLogin {
		return s.prefix + ".user.login"
	}
	return s.prefix + ".booking.created"
}

// Send publishes msg and waits for the server to acknowledge the flush.
func (s *NATSSender) Send(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode nats payload: %w", err)
	}
	subject := s.Subject(msg.Kind)
	if err := s.publisher.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultFlushTimeout)
		defer cancel()
	}
	if err := s.publisher.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush %s: %w", subject, err)
	}
	return nil
}

// ConnectNATS dials url and logs disconnects and reconnects.
func ConnectNATS(url, clientName string, logger *slog.Logger) (*nats.Conn, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := nats.Connect(url,
		nats.Name(clientName),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return conn, nil
}
