package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/alchemorsel/foodgram/pkg/healthcheck"
)

// Recorder counts delivered events
type Recorder interface {
	RecordDomainEvent(name string)
}

// CountEvents subscribes recorder to every topic
func CountEvents(bus *Bus, recorder Recorder) {
	bus.Subscribe("event-counter", Topics, func(_ context.Context, envelope Envelope) error {
		recorder.RecordDomainEvent(envelope.Name)
		return nil
	})
}

// AuditLog writes every event to the audit logger
func AuditLog(bus *Bus, logger *zap.Logger) {
	audit := logger.Named("audit")
	bus.Subscribe("audit-log", Topics, func(_ context.Context, envelope Envelope) error {
		audit.Info("Domain event",
			zap.String("event", envelope.Name),
			zap.Time("occurred_at", envelope.OccurredAt),
			zap.ByteString("payload", envelope.Payload),
		)
		return nil
	})
}

// NewHealthChecker reports the bus as degraded while its handlers are not
// running. Publishing still succeeds then, but subscribers miss events.
func NewHealthChecker(bus *Bus) *healthcheck.CustomChecker {
	return healthcheck.NewCustomChecker("event_bus", func(context.Context) (healthcheck.Status, string, interface{}) {
		if bus.IsRunning() {
			return healthcheck.StatusHealthy, "event handlers running", nil
		}
		return healthcheck.StatusDegraded, "event handlers are not running", nil
	})
}
