package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(userID, sessionID string) *Client {
	return &Client{
		SessionID: sessionID,
		UserID:    userID,
		Send:      make(chan []byte, 16),
	}
}

func startManager(t *testing.T) *Manager {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	m := NewManager()
	m.Start(ctx)
	return m
}

func register(t *testing.T, m *Manager, client *Client) {
	t.Helper()

	m.Register <- client
	require.Eventually(t, func() bool {
		for _, id := range m.ConnectedUserIDs() {
			if id == client.UserID {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
}

func receive(t *testing.T, client *Client) ChangeEvent {
	t.Helper()

	select {
	case raw := <-client.Send:
		var event ChangeEvent
		require.NoError(t, json.Unmarshal(raw, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return ChangeEvent{}
	}
}

func TestSendToUserReachesAllSessions(t *testing.T) {
	m := startManager(t)

	tab1 := newTestClient("user-1", "session-1")
	tab2 := newTestClient("user-1", "session-2")
	register(t, m, tab1)
	register(t, m, tab2)

	m.SendToUser("user-1", NewEvent(EventUnreadSync, "", UnreadSyncPayload{TotalUnread: 4}))

	for _, client := range []*Client{tab1, tab2} {
		event := receive(t, client)
		assert.Equal(t, EventUnreadSync, event.Type)
	}
}

func TestJoinConversationSwitchesRooms(t *testing.T) {
	m := startManager(t)

	client := newTestClient("user-1", "session-1")
	register(t, m, client)

	m.JoinConversation(client, "conv-a")
	m.JoinConversation(client, "conv-b")

	// Joining conv-b left conv-a, so only conv-b events arrive.
	m.SendToConversation("conv-a", NewEvent(EventMessageInserted, "conv-a", nil), "")
	m.SendToConversation("conv-b", NewEvent(EventMessageInserted, "conv-b", nil), "")

	event := receive(t, client)
	assert.Equal(t, "conv-b", event.ConversationID)
	assert.Empty(t, client.Send)
}

func TestSendToConversationExcludesOnlyOriginatingSession(t *testing.T) {
	m := startManager(t)

	senderTab1 := newTestClient("user-1", "session-1")
	senderTab2 := newTestClient("user-1", "session-2")
	viewer := newTestClient("user-2", "session-3")
	register(t, m, senderTab1)
	register(t, m, senderTab2)
	register(t, m, viewer)

	m.JoinConversation(senderTab1, "conv-a")
	m.JoinConversation(senderTab2, "conv-a")
	m.JoinConversation(viewer, "conv-a")

	m.SendToConversation("conv-a", NewEvent(EventMessageInserted, "conv-a", nil), "session-1")

	// The originator's other tab still converges via push, not the poll.
	for _, client := range []*Client{senderTab2, viewer} {
		event := receive(t, client)
		assert.Equal(t, EventMessageInserted, event.Type)
	}
	assert.Empty(t, senderTab1.Send)
}

func TestLeaveConversationStopsDelivery(t *testing.T) {
	m := startManager(t)

	client := newTestClient("user-1", "session-1")
	register(t, m, client)

	m.JoinConversation(client, "conv-a")
	m.LeaveConversation(client, "conv-a")
	assert.Empty(t, client.ActiveConversation)

	m.SendToConversation("conv-a", NewEvent(EventMessageInserted, "conv-a", nil), "")
	assert.Empty(t, client.Send)
}

func TestUnregisterRemovesSessionAndClosesSend(t *testing.T) {
	m := startManager(t)

	client := newTestClient("user-1", "session-1")
	register(t, m, client)
	m.JoinConversation(client, "conv-a")

	m.Unregister <- client
	require.Eventually(t, func() bool {
		return len(m.ConnectedUserIDs()) == 0
	}, time.Second, 5*time.Millisecond)

	_, open := <-client.Send
	assert.False(t, open)

	// Delivery to the dead room is a no-op, not a panic.
	m.SendToConversation("conv-a", NewEvent(EventMessageInserted, "conv-a", nil), "")
}

func TestUnregisterKeepsOtherSessionsAlive(t *testing.T) {
	m := startManager(t)

	tab1 := newTestClient("user-1", "session-1")
	tab2 := newTestClient("user-1", "session-2")
	register(t, m, tab1)
	register(t, m, tab2)

	m.Unregister <- tab1
	require.Eventually(t, func() bool {
		m.SendToUser("user-1", NewEvent(EventPong, "", nil))
		return len(tab2.Send) > 0
	}, time.Second, 5*time.Millisecond)

	assert.Contains(t, m.ConnectedUserIDs(), "user-1")
}

type staticCounter struct {
	total int
}

func (c *staticCounter) TotalFor(ctx context.Context, userID string) (int, error) {
	return c.total, nil
}

func TestReconcilerSyncUserPushesTotal(t *testing.T) {
	m := startManager(t)

	client := newTestClient("user-1", "session-1")
	register(t, m, client)

	r := NewReconciler(m, &staticCounter{total: 7}, time.Minute)
	r.SyncUser(context.Background(), "user-1")

	event := receive(t, client)
	assert.Equal(t, EventUnreadSync, event.Type)

	payload, err := json.Marshal(event.Payload)
	require.NoError(t, err)
	var sync UnreadSyncPayload
	require.NoError(t, json.Unmarshal(payload, &sync))
	assert.Equal(t, 7, sync.TotalUnread)
}

func TestReconcilerPeriodicTick(t *testing.T) {
	m := startManager(t)

	client := newTestClient("user-1", "session-1")
	register(t, m, client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := NewReconciler(m, &staticCounter{total: 2}, 10*time.Millisecond)
	r.Start(ctx)

	// The safety net repairs missed pushes without any client action.
	event := receive(t, client)
	assert.Equal(t, EventUnreadSync, event.Type)
}
