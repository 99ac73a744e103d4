package notify_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/example/study-scheduler/internal/application"
	"github.com/example/study-scheduler/internal/notify"
)

type stubSender struct {
	name string
	err  error
	sent []notify.Message
}

func (s *stubSender) Name() string { return s.name }

func (s *stubSender) Send(_ context.Context, msg notify.Message) error {
	s.sent = append(s.sent, msg)
	return s.err
}

func TestChainStopsAtFirstSuccess(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	failing := &stubSender{name: "nats", err: errors.New("no responders")}
	webhook := &stubSender{name: "webhook"}
	outbox := &stubSender{name: "outbox"}
	chain := notify.NewChain("admin@example.com", []notify.Sender{failing, webhook, outbox}, notify.WithLogger(logger))

	if err := chain.Notify(context.Background(), bookingNotification()); err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	if len(failing.sent) != 1 || len(webhook.sent) != 1 {
		t.Fatalf("expected nats then webhook attempts, got %d and %d", len(failing.sent), len(webhook.sent))
	}
	if len(outbox.sent) != 0 {
		t.Fatalf("outbox should not be used after webhook success, got %d", len(outbox.sent))
	}
	if !strings.Contains(logs.String(), "sender=nats") {
		t.Fatalf("expected failed sender to be logged, got %q", logs.String())
	}
}

func TestChainJoinsErrorsWhenAllFail(t *testing.T) {
	t.Parallel()

	errA := errors.New("a down")
	errB := errors.New("b down")
	chain := notify.NewChain("admin@example.com", []notify.Sender{
		&stubSender{name: "a", err: errA},
		&stubSender{name: "b", err: errB},
	}, notify.WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))

	err := chain.Notify(context.Background(), bookingNotification())
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("expected both sender errors, got %v", err)
	}
}

func TestChainWithoutSenders(t *testing.T) {
	t.Parallel()

	err := notify.NewChain("admin@example.com", nil).Notify(context.Background(), bookingNotification())
	if !errors.Is(err, notify.ErrNoSenders) {
		t.Fatalf("expected ErrNoSenders, got %v", err)
	}
}

func TestChainSendsOwnerConfirmation(t *testing.T) {
	t.Parallel()

	sender := &stubSender{name: "webhook"}
	chain := notify.NewChain("admin@example.com", []notify.Sender{sender}, notify.WithOwnerConfirmation(true))

	if err := chain.Notify(context.Background(), bookingNotification()); err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected admin message and confirmation, got %d", len(sender.sent))
	}
	if sender.sent[0].To != "admin@example.com" || sender.sent[1].To != "amina@example.com" {
		t.Fatalf("unexpected recipients %q and %q", sender.sent[0].To, sender.sent[1].To)
	}

	sender.sent = nil
	login := application.Notification{Kind: application.EventLogin, Owner: application.Owner{Username: "amina", Email: "amina@example.com"}}
	if err := chain.Notify(context.Background(), login); err != nil {
		t.Fatalf("Notify login returned error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected only the admin login message, got %d", len(sender.sent))
	}
}
