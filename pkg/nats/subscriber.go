package nats

import (
	"context"
	"fmt"

	"storefront-admin/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EventHandler is a function that processes an event.
type EventHandler func(ctx context.Context, event events.Event) error

// Subscriber reads events back from the stream.
type Subscriber struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewSubscriber(url string) (*Subscriber, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}
	return &Subscriber{nc: nc, js: js}, nil
}

// Follow streams events matching subject to handler until ctx ends. With
// replay set, stored events are delivered first.
func (s *Subscriber) Follow(ctx context.Context, subject string, replay bool, handler EventHandler) error {
	policy := jetstream.DeliverNewPolicy
	if replay {
		policy = jetstream.DeliverAllPolicy
	}

	consumer, err := s.js.OrderedConsumer(ctx, StreamName, jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{subject},
		DeliverPolicy:  policy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	errs := make(chan error, 1)
	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		event, err := events.Unmarshal(msg.Data())
		if err != nil {
			return
		}
		if err := handler(ctx, event); err != nil {
			select {
			case errs <- err:
			default:
			}
		}
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	defer cc.Stop()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errs:
		return err
	}
}

// Close closes the connection.
func (s *Subscriber) Close() {
	if s.nc != nil {
		s.nc.Close()
	}
}
