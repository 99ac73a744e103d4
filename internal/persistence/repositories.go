package persistence

import (
	"context"
	"fmt"
	"strings"
)

// Collection names used by the booking service.
const (
	// CollectionTimetables holds one record set per owner for alone-mode sessions.
	CollectionTimetables = "timetables"
	// CollectionBookings holds the shared companion/group booking list under SharedOwnerKey.
	CollectionBookings = "bookings"
	// CollectionNotifications holds undelivered notifications under SharedOwnerKey.
	CollectionNotifications = "booking_notifications"
)

// SharedOwnerKey addresses collections that are not partitioned by owner.
const SharedOwnerKey = ""

// RecordStore persists whole collections of records. Load returns an empty set
// for collections that were never saved. Save replaces the stored set, so
// repeating an identical Save leaves the store unchanged. Stores keep every
// key of every record, including keys the caller does not interpret.
type RecordStore interface {
	Load(ctx context.Context, collection, ownerKey string) (RecordSet, error)
	Save(ctx context.Context, collection, ownerKey string, records RecordSet) error
}

// ValidateCollection rejects blank collection names and names containing the
// key separator used by the stores.
func ValidateCollection(collection string) error {
	if strings.TrimSpace(collection) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidCollection)
	}
	if strings.Contains(collection, ":") {
		return fmt.Errorf("%w: %q contains ':'", ErrInvalidCollection, collection)
	}
	return nil
}

// OwnerIndex is implemented by stores that can enumerate the owner keys saved
// under a collection. Administrative listings use it when available.
type OwnerIndex interface {
	Owners(ctx context.Context, collection string) ([]string, error)
}
