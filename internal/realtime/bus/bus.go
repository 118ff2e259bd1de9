package bus

import (
	"context"

	"github.com/yungbote/learnit-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}

type localBus struct {
	hub *realtime.SSEHub
}

// NewLocal delivers straight to hub; used when no redis is configured.
func NewLocal(hub *realtime.SSEHub) Bus {
	return &localBus{hub: hub}
}

func (b *localBus) Publish(_ context.Context, msg realtime.SSEMessage) error {
	b.hub.Broadcast(msg)
	return nil
}

func (b *localBus) StartForwarder(context.Context, func(realtime.SSEMessage)) error { return nil }

func (b *localBus) Close() error { return nil }
