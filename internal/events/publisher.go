package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// EventPublisher publishes domain events. Publishing is best effort for
// callers: a failed publish never rolls back committed state.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// WatermillEventPublisher sends events through any watermill publisher,
// one topic per event type.
type WatermillEventPublisher struct {
	publisher   message.Publisher
	topicPrefix string
	logger      *slog.Logger
}

func NewWatermillEventPublisher(publisher message.Publisher, topicPrefix string, logger *slog.Logger) *WatermillEventPublisher {
	return &WatermillEventPublisher{
		publisher:   publisher,
		topicPrefix: topicPrefix,
		logger:      logger,
	}
}

// NewKafkaEventPublisher publishes to Kafka brokers.
func NewKafkaEventPublisher(brokers []string, topicPrefix string, logger *slog.Logger) (*WatermillEventPublisher, error) {
	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:   brokers,
			Marshaler: kafka.DefaultMarshaler{},
		},
		watermill.NewSlogLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	return NewWatermillEventPublisher(publisher, topicPrefix, logger), nil
}

// NewInMemoryEventPublisher publishes to an in-process channel. The returned
// GoChannel can be used to subscribe to the same topics.
func NewInMemoryEventPublisher(topicPrefix string, logger *slog.Logger) (*WatermillEventPublisher, *gochannel.GoChannel) {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewSlogLogger(logger),
	)
	return NewWatermillEventPublisher(pubSub, topicPrefix, logger), pubSub
}

// Topic returns the topic an event type is published on.
func (p *WatermillEventPublisher) Topic(eventType string) string {
	if p.topicPrefix == "" {
		return eventType
	}
	return p.topicPrefix + "." + eventType
}

func (p *WatermillEventPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", event.Type)
	msg.Metadata.Set("source", event.Source)
	msg.SetContext(ctx)

	topic := p.Topic(event.Type)
	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	p.logger.Debug("Event published", "event_id", event.ID, "event_type", event.Type, "topic", topic)
	return nil
}

func (p *WatermillEventPublisher) Close() error {
	return p.publisher.Close()
}

// PublishSafe publishes and logs failures instead of returning them.
func PublishSafe(ctx context.Context, publisher EventPublisher, logger *slog.Logger, event Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "event_type", event.Type, "error", err)
	}
}
