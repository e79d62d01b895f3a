package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Handler receives every valid event read from the channel.
type Handler func(ctx context.Context, event Event)

type Subscriber struct {
	logger  *slog.Logger
	client  *redis.Client
	topic   string
	handler Handler
}

func NewSubscriber(logger *slog.Logger, client *redis.Client, topic string, handler Handler) *Subscriber {
	return &Subscriber{
		logger:  logger,
		client:  client,
		topic:   topic,
		handler: handler,
	}
}

func (s *Subscriber) Start(ctx context.Context) error {
	s.logger.Info("Redis subscriber is running", "topic", s.topic)
	pubsub := s.client.Subscribe(ctx, s.topic)
	defer func() {
		if err := pubsub.Close(); err != nil {
			s.logger.Warn("failed to close pubsub", "error", err)
		}
	}()

	msgCh := pubsub.Channel()

	for {
		select {
		case msg, ok := <-msgCh:
			if !ok {
				s.logger.Warn("pubsub channel closed by Redis")
				return nil
			}
			if err := s.handleMessage(ctx, msg.Payload); err != nil {
				s.logger.Error("error handling message", "error", err)
			}
		case <-ctx.Done():
			s.logger.Info("shutting down Redis subscriber")
			return nil
		}
	}
}

func (s *Subscriber) handleMessage(ctx context.Context, payload string) error {
	var event Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return fmt.Errorf("unmarshalling event: %w", err)
	}
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}
	s.logger.Debug("received event", "sessionID", event.SessionID, "action", event.Action)
	s.handler(ctx, event)
	return nil
}
