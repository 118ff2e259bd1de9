package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/learnit-backend/internal/domain/engagement"
	"github.com/yungbote/learnit-backend/internal/platform/apierr"
	"github.com/yungbote/learnit-backend/internal/realtime"
)

func TestNotificationPublishedToUserChannel(t *testing.T) {
	e := newTestEnv(t)
	u := e.user(t, "alice", "")
	client := e.hub.NewSSEClient(u.ID)
	e.hub.AddChannel(client, realtime.UserChannel(u.ID))
	t.Cleanup(func() { e.hub.RemoveClient(client) })

	n := e.notifications.Create(e.ctx, u.ID, NotificationInput{
		Type:     engagement.NotifyLessonComplete,
		Title:    "Lesson Completed",
		Message:  "Nice work",
		Metadata: map[string]any{"lessonId": "l1"},
	})
	require.NotNil(t, n)
	assert.JSONEq(t, `{"lessonId":"l1"}`, string(n.Metadata))

	select {
	case msg := <-client.Outbound:
		assert.Equal(t, realtime.SSEEventNotification, msg.Event)
		assert.Equal(t, realtime.UserChannel(u.ID), msg.Channel)
	case <-time.After(time.Second):
		t.Fatal("notification was not published")
	}
}

func TestNotificationReadState(t *testing.T) {
	e := newTestEnv(t)
	alice := e.user(t, "alice", "")
	bob := e.user(t, "bob", "")

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		n := e.notifications.Create(e.ctx, alice.ID, NotificationInput{Type: engagement.NotifyAchievement, Title: "t"})
		require.NotNil(t, n)
		ids = append(ids, n.ID)
	}

	list, err := e.notifications.List(e.ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, list.Notifications, 3)
	assert.Equal(t, int64(3), list.UnreadCount)

	err = e.notifications.MarkRead(e.ctx, bob.ID, ids[0])
	assert.Equal(t, apierr.CodeNotFound, apierr.CodeOf(err))

	require.NoError(t, e.notifications.MarkRead(e.ctx, alice.ID, ids[0]))
	n, err := e.notifications.MarkAllRead(e.ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	list, err = e.notifications.List(e.ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, list.UnreadCount)

	empty, err := e.notifications.List(e.ctx, bob.ID)
	require.NoError(t, err)
	assert.NotNil(t, empty.Notifications)
}
