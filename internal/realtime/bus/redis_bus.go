package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/learnit-backend/internal/platform/logger"
	"github.com/yungbote/learnit-backend/internal/realtime"
)

const DefaultChannel = "learnit:notifications"

const (
	resubscribeMin = time.Second
	resubscribeMax = 30 * time.Second
)

var errNoChannel = errors.New("message has no channel")

type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string

	mu     sync.Mutex
	sub    *goredis.PubSub
	closed bool
}

// NewRedisBus fans notifications out across API instances over one pub/sub
// channel. Every instance, the publisher included, receives each message
// once through its forwarder. The client is owned by the caller.
func NewRedisBus(rdb *goredis.Client, channel string, baseLog *logger.Logger) (Bus, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if baseLog == nil {
		return nil, fmt.Errorf("logger required")
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = DefaultChannel
	}
	return &redisBus{
		log:     baseLog.With("component", "RedisBus", "channel", channel),
		rdb:     rdb,
		channel: channel,
	}, nil
}

func (b *redisBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	raw, err := encodePayload(msg)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

// StartForwarder subscribes before returning so no message published after
// the call is missed. A dropped subscription is re-established with backoff
// until ctx ends or Close is called.
func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	sub, err := b.subscribe(ctx)
	if err != nil {
		return err
	}
	go b.forward(ctx, sub, onMsg)
	return nil
}

func (b *redisBus) subscribe(ctx context.Context) (*goredis.PubSub, error) {
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		_ = sub.Close()
		return nil, fmt.Errorf("redis bus closed")
	}
	b.sub = sub
	return sub, nil
}

func (b *redisBus) forward(ctx context.Context, sub *goredis.PubSub, onMsg func(realtime.SSEMessage)) {
	backoff := resubscribeMin
	for {
		b.drain(ctx, sub, onMsg)
		_ = sub.Close()
		if ctx.Err() != nil || b.isClosed() {
			return
		}

		b.log.Warn("redis subscription dropped, resubscribing", "backoff", backoff.String())
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			next, err := b.subscribe(ctx)
			if err == nil {
				sub = next
				backoff = resubscribeMin
				break
			}
			if b.isClosed() {
				return
			}
			b.log.Warn("redis resubscribe failed", "error", err)
			backoff = min(backoff*2, resubscribeMax)
		}
	}
}

func (b *redisBus) drain(ctx context.Context, sub *goredis.PubSub, onMsg func(realtime.SSEMessage)) {
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok || m == nil {
				return
			}
			msg, err := decodePayload(m.Payload)
			if err != nil {
				b.log.Warn("bad redis bus payload", "error", err)
				continue
			}
			onMsg(msg)
		}
	}
}

func (b *redisBus) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *redisBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if b.sub != nil {
		return b.sub.Close()
	}
	return nil
}

func encodePayload(msg realtime.SSEMessage) ([]byte, error) {
	if msg.Channel == "" {
		return nil, errNoChannel
	}
	return json.Marshal(msg)
}

func decodePayload(payload string) (realtime.SSEMessage, error) {
	var msg realtime.SSEMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return realtime.SSEMessage{}, err
	}
	if msg.Channel == "" {
		return realtime.SSEMessage{}, errNoChannel
	}
	return msg, nil
}
