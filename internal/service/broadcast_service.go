package service

import (
	"context"

	"storefront-admin/internal/pkg/logger"
	"storefront-admin/internal/session"
	"storefront-admin/pkg/events"
	"storefront-admin/pkg/query"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	RealtimeModule = "REALTIME"
	DashboardTopic = "dashboard.events"
)

// LiveFeed is where dashboard events end up (the websocket hub).
type LiveFeed interface {
	Broadcast(data []byte)
	DisconnectAll()
}

// NewDashboardBus builds the in-process bus for dashboard events. Publish
// waits for the consumer's ack, so the feed sees transitions in the order
// they happened.
func NewDashboardBus(log watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            64,
		BlockPublishUntilSubscriberAck: true,
	}, log)
}

type IBroadcastService interface {
	Start(ctx context.Context) error
	Stop()
}

// broadcastService turns cache and session transitions into events on the
// in-process bus and forwards them to the live feed. Listeners publish and
// return at once; delivery happens on the consumer goroutine.
type broadcastService struct {
	pubSub   *gochannel.GoChannel
	cache    *query.Cache
	sessions *session.Store
	feed     LiveFeed
	logger   logger.ILogger

	unsubscribe []func()
}

func NewBroadcastService(
	pubSub *gochannel.GoChannel,
	cache *query.Cache,
	sessions *session.Store,
	feed LiveFeed,
	log logger.ILogger,
) IBroadcastService {
	return &broadcastService{
		pubSub:   pubSub,
		cache:    cache,
		sessions: sessions,
		feed:     feed,
		logger:   log,
	}
}

func (s *broadcastService) Start(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, DashboardTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.forward(msg)
		}
	}()

	s.unsubscribe = append(s.unsubscribe,
		s.cache.SubscribeAll(s.onQueryEvent),
		s.sessions.Subscribe(s.onSessionChange),
	)
	return nil
}

func (s *broadcastService) Stop() {
	for _, unsub := range s.unsubscribe {
		unsub()
	}
	s.unsubscribe = nil
}

func (s *broadcastService) forward(msg *message.Message) {
	defer msg.Ack()

	evt, err := events.Unmarshal(msg.Payload)
	if err != nil {
		s.logger.Warn(RealtimeModule, "Dropping malformed dashboard event", map[string]interface{}{"error": err.Error()})
		return
	}
	s.feed.Broadcast(msg.Payload)

	// Live views belong to the operator who just left
	if evt.Type == events.TypeSessionCleared {
		s.feed.DisconnectAll()
	}
}

func (s *broadcastService) onQueryEvent(ev query.Event) {
	var eventType string
	switch ev.Type {
	case query.EventUpdated:
		eventType = events.TypeQueryUpdated
	case query.EventInvalidated:
		eventType = events.TypeQueryInvalidated
	case query.EventRemoved:
		eventType = events.TypeQueryRemoved
	default:
		return
	}

	snap := ev.Snapshot
	s.publish(events.New(eventType, map[string]interface{}{
		"key":      []string(snap.Key),
		"entity":   snap.Key.Entity(),
		"status":   snap.Status.String(),
		"stale":    snap.Stale,
		"fetching": snap.Fetching,
		"hasError": snap.Err != nil,
	}))
}

func (s *broadcastService) onSessionChange(sess *session.Session) {
	if sess == nil {
		s.publish(events.New(events.TypeSessionCleared, map[string]interface{}{}))
		return
	}
	s.publish(events.New(events.TypeSessionStarted, map[string]interface{}{
		"userId": sess.UserID,
	}))
}

func (s *broadcastService) publish(evt events.BaseEvent) {
	payload, err := events.Marshal(evt)
	if err != nil {
		return
	}
	if err := s.pubSub.Publish(DashboardTopic, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		s.logger.Warn(RealtimeModule, "Failed to publish dashboard event", map[string]interface{}{
			"type":  evt.Type,
			"error": err.Error(),
		})
	}
}
