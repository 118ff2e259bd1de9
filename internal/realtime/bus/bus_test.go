package bus

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/learnit-backend/internal/platform/logger"
	"github.com/yungbote/learnit-backend/internal/realtime"
)

func TestLocalBusPublishesToHub(t *testing.T) {
	hub := realtime.NewSSEHub(logger.Nop())
	b := NewLocal(hub)
	defer b.Close()

	userID := uuid.New()
	c := hub.NewSSEClient(userID)
	hub.AddChannel(c, realtime.UserChannel(userID))

	if err := b.StartForwarder(context.Background(), func(realtime.SSEMessage) {}); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}
	msg := realtime.SSEMessage{Channel: realtime.UserChannel(userID), Event: realtime.SSEEventNotification}
	if err := b.Publish(context.Background(), msg); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	select {
	case got := <-c.Outbound:
		if got.Event != realtime.SSEEventNotification {
			t.Fatalf("event: got=%s", got.Event)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out")
	}
}

func TestNewRedisBusRequiresClient(t *testing.T) {
	if _, err := NewRedisBus(nil, "", logger.Nop()); err == nil {
		t.Fatalf("expected error without client")
	}
}

func TestPayloadRoundTripRequiresChannel(t *testing.T) {
	if _, err := encodePayload(realtime.SSEMessage{Event: realtime.SSEEventNotification}); err == nil {
		t.Fatalf("expected error for empty channel")
	}

	raw, err := encodePayload(realtime.SSEMessage{
		Channel: "user:abc",
		Event:   realtime.SSEEventNotification,
		Data:    map[string]any{"title": "Lesson Completed!"},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	msg, err := decodePayload(string(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Channel != "user:abc" || msg.Event != realtime.SSEEventNotification {
		t.Fatalf("unexpected message: %+v", msg)
	}

	if _, err := decodePayload(`{"event":"notification"}`); err == nil {
		t.Fatalf("expected error for payload without channel")
	}
	if _, err := decodePayload(`not json`); err == nil {
		t.Fatalf("expected error for bad json")
	}
}
