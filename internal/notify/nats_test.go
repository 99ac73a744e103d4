package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/example/study-scheduler/internal/application"
	"github.com/example/study-scheduler/internal/notify"
	"github.com/example/study-scheduler/internal/notify/mocks"
)

func TestNATSSenderPublishesBooking(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	publisher := mocks.NewMockPublisher(ctrl)

	var payload []byte
	publisher.EXPECT().
		Publish("scheduler.booking.created", gomock.Any()).
		DoAndReturn(func(_ string, data []byte) error {
			payload = data
			return nil
		})
	publisher.EXPECT().
		FlushWithContext(gomock.Any()).
		DoAndReturn(func(ctx context.Context) error {
			if _, ok := ctx.Deadline(); !ok {
				t.Errorf("expected flush context to carry a deadline")
			}
			return nil
		})

	sender := notify.NewNATSSender(publisher, "scheduler.")
	msg := notify.Compose(bookingNotification(), "admin@example.com")
	if err := sender.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if decoded["to_email"] != "admin@example.com" || decoded["kind"] != "booking" || decoded["session_id"] != "b-2" {
		t.Fatalf("unexpected payload %v", decoded)
	}
}

func TestNATSSenderSubjects(t *testing.T) {
	t.Parallel()

	sender := notify.NewNATSSender(nil, "")
	if got := sender.Subject(application.EventBooking); got != "booking.booking.created" {
		t.Fatalf("unexpected booking subject %q", got)
	}
	if got := sender.Subject(application.EventLogin); got != "booking.user.login" {
		t.Fatalf("unexpected login subject %q", got)
	}
}

func TestNATSSenderPublishError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	publisher := mocks.NewMockPublisher(ctrl)
	boom := errors.New("connection closed")
	publisher.EXPECT().Publish("events.user.login", gomock.Any()).Return(boom)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := notify.NewNATSSender(publisher, "events").Send(ctx, notify.Message{Kind: application.EventLogin})
	if !errors.Is(err, boom) {
		t.Fatalf("expected publish error, got %v", err)
	}
}
