package events

import (
	"context"

	"storefront-admin/internal/pkg/logger"
	"storefront-admin/internal/session"
	pkgEvents "storefront-admin/pkg/events"
	pktNats "storefront-admin/pkg/nats"
	"storefront-admin/pkg/query"
)

const ModuleName = "AUDIT"

type eventPublisher interface {
	Publish(ctx context.Context, event pkgEvents.Event) error
}

// Publisher records admin writes on the audit stream.
type Publisher interface {
	PublishMutation(ctx context.Context, req query.MutationRequest)
}

// NatsPublisher implements Publisher using NATS. A nil NATS publisher makes
// every call a no-op.
type NatsPublisher struct {
	publisher eventPublisher
	logger    logger.ILogger
}

func NewNatsPublisher(publisher *pktNats.Publisher, logger logger.ILogger) *NatsPublisher {
	p := &NatsPublisher{logger: logger}
	if publisher != nil {
		p.publisher = publisher
	}
	return p
}

// PublishMutation emits ADMIN_MUTATION_<OP> with the operator taken from ctx.
// Failures are logged and never reach the caller.
func (p *NatsPublisher) PublishMutation(ctx context.Context, req query.MutationRequest) {
	if p.publisher == nil {
		return
	}

	data := map[string]interface{}{
		"entity":    req.Entity,
		"operation": string(req.Operation),
		"target_id": req.TargetID,
	}
	if req.Payload != nil {
		data["payload"] = req.Payload
	}
	if sess, ok := session.FromContext(ctx); ok {
		data["operator_id"] = sess.UserID
	}

	evt := pkgEvents.New(pkgEvents.AdminMutationType(string(req.Operation)), data)
	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error(ModuleName, "Failed to publish mutation event", map[string]interface{}{
			"type":  evt.Type,
			"error": err.Error(),
		})
	}
}

// Hook adapts the publisher to the query cache's mutation hooks.
func (p *NatsPublisher) Hook() query.MutationHook {
	return func(ctx context.Context, req query.MutationRequest, _ any) {
		p.PublishMutation(ctx, req)
	}
}
