package testfixtures

import (
	"io"
	"log/slog"
	"time"

	"github.com/example/study-scheduler/internal/application"
	"github.com/example/study-scheduler/internal/persistence"
	"github.com/example/study-scheduler/internal/venue"
)

// ServiceFactory builds booking services with deterministic ids and time.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Catalog     *venue.Catalog
	Logger      *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory uses ReferenceTime, "session-N" ids, the built-in venue
// catalog and a discarding logger unless overridden.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("session")
	}
	if factory.Catalog == nil {
		factory.Catalog = venue.Default()
	}
	if factory.Logger == nil {
		factory.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return factory
}

// WithClock overrides the clock.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) { factory.Clock = clock }
}

// WithIDGenerator overrides the id generator.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) { factory.IDGenerator = generator }
}

// WithCatalog overrides the venue catalog.
func WithCatalog(catalog *venue.Catalog) ServiceFactoryOption {
	return func(factory *ServiceFactory) { factory.Catalog = catalog }
}

// WithLogger overrides the logger handed to services.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) { factory.Logger = logger }
}

// NewBookingService wires a booking service over store. notifier may be nil.
func (f *ServiceFactory) NewBookingService(store persistence.RecordStore, notifier application.Notifier, opts ...application.BookingOption) *application.BookingService {
	all := append([]application.BookingOption{application.WithLogger(f.Logger)}, opts...)
	return application.NewBookingService(store, f.Catalog, notifier, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), all...)
}
