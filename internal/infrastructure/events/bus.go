// Package events delivers domain events to in-process subscribers over a
// watermill go-channel pub/sub.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/alchemorsel/foodgram/internal/domain/shared"
	"github.com/alchemorsel/foodgram/internal/ports/outbound"
)

// Topics carrying the domain events
var Topics = []string{
	"recipe.created",
	"recipe.updated",
	"recipe.deleted",
	"relation.added",
	"relation.removed",
	"user.registered",
}

const metadataEventName = "event_name"

// Envelope is the wire form of a domain event
type Envelope struct {
	Name       string          `json:"name"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// HandlerFunc consumes one delivered event. Returning an error triggers a retry.
type HandlerFunc func(ctx context.Context, envelope Envelope) error

// Config tunes delivery
type Config struct {
	BufferSize   int64
	MaxRetries   int
	RetryBackoff time.Duration
	CloseTimeout time.Duration
}

// DefaultConfig returns the delivery settings used by the API server
func DefaultConfig() Config {
	return Config{
		BufferSize:   256,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		CloseTimeout: 5 * time.Second,
	}
}

// Bus publishes domain events and runs subscriber handlers
type Bus struct {
	pubsub *gochannel.GoChannel
	router *message.Router
	logger *zap.Logger
}

var _ outbound.EventPublisher = (*Bus)(nil)

// NewBus creates a bus. Subscribers must be added before Run.
func NewBus(cfg Config, logger *zap.Logger) (*Bus, error) {
	logger = logger.Named("events")
	adapter := NewLoggerAdapter(logger)

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.BufferSize,
	}, adapter)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, adapter)
	if err != nil {
		return nil, fmt.Errorf("create event router: %w", err)
	}
	router.AddMiddleware(
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      cfg.MaxRetries,
			InitialInterval: cfg.RetryBackoff,
			Logger:          adapter,
		}.Middleware,
	)

	return &Bus{pubsub: pubsub, router: router, logger: logger}, nil
}

// Publish encodes each event and publishes it on the topic named after it.
// Delivery failures are logged; the caller's operation has already committed.
func (b *Bus) Publish(ctx context.Context, events ...shared.DomainEvent) {
	for _, event := range events {
		msg, err := encode(event)
		if err != nil {
			b.logger.Error("Failed to encode event", zap.String("event", event.EventName()), zap.Error(err))
			continue
		}
		msg.SetContext(ctx)
		if err := b.pubsub.Publish(event.EventName(), msg); err != nil {
			b.logger.Error("Failed to publish event", zap.String("event", event.EventName()), zap.Error(err))
		}
	}
}

// Subscribe registers handler for every topic in topics
func (b *Bus) Subscribe(name string, topics []string, handler HandlerFunc) {
	for _, topic := range topics {
		b.router.AddConsumerHandler(name+"."+topic, topic, b.pubsub, func(msg *message.Message) error {
			var envelope Envelope
			if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
				// A malformed message never decodes; retrying is pointless.
				b.logger.Error("Dropping undecodable event",
					zap.String("message_uuid", msg.UUID),
					zap.Error(err),
				)
				return nil
			}
			return handler(msg.Context(), envelope)
		})
	}
}

// Run starts the subscriber handlers and blocks until ctx is done or Close is called
func (b *Bus) Run(ctx context.Context) error {
	return b.router.Run(ctx)
}

// Running is closed once the handlers are subscribed
func (b *Bus) Running() chan struct{} {
	return b.router.Running()
}

// IsRunning reports whether the handlers are subscribed and the router has
// not been closed
func (b *Bus) IsRunning() bool {
	select {
	case <-b.router.Running():
		return !b.router.IsClosed()
	default:
		return false
	}
}

// Close stops the handlers and the pub/sub
func (b *Bus) Close() error {
	if err := b.router.Close(); err != nil {
		return err
	}
	return b.pubsub.Close()
}

func encode(event shared.DomainEvent) (*message.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(Envelope{
		Name:       event.EventName(),
		OccurredAt: event.OccurredAt(),
		Payload:    payload,
	})
	if err != nil {
		return nil, err
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.Metadata.Set(metadataEventName, event.EventName())
	return msg, nil
}
