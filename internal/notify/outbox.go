package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/study-scheduler/internal/persistence"
)

// Outbox appends undelivered messages to the booking_notifications
// collection, where administrators can read and clear them.
type Outbox struct {
	store       persistence.RecordStore
	idGenerator func() string
	now         func() time.Time

	mu sync.Mutex
}

// NewOutbox writes to store. Nil generators default to UUIDs and time.Now.
func NewOutbox(store persistence.RecordStore, idGenerator func() string, now func() time.Time) *Outbox {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	return &Outbox{store: store, idGenerator: idGenerator, now: now}
}

// Name implements Sender.
func (o *Outbox) Name() string { return "outbox" }

// Send implements Sender.
func (o *Outbox) Send(ctx context.Context, msg Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	records, err := o.store.Load(ctx, persistence.CollectionNotifications, persistence.SharedOwnerKey)
	if err != nil {
		return fmt.Errorf("load outbox: %w", err)
	}
	records = append(records, persistence.Record{
		"id":          o.idGenerator(),
		"to_email":    msg.To,
		"subject":     msg.Subject,
		"message":     msg.Body,
		"username":    msg.Username,
		"user_email":  msg.UserEmail,
		"received_at": o.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		"sent":        false,
	})
	if err := o.store.Save(ctx, persistence.CollectionNotifications, persistence.SharedOwnerKey, records); err != nil {
		return fmt.Errorf("save outbox: %w", err)
	}
	return nil
}
