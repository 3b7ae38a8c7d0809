package websocket

import (
	"encoding/json"
	"time"

	"otomart/pkg/logger"
)

// Server-to-client event types. Events are advisory: delivery is
// at-least-once, subscribers treat them as re-fetch triggers and must
// tolerate duplicates and gaps.
const (
	EventMessageInserted  = "message_inserted"
	EventMessageUpdated   = "message_updated"
	EventPresenceUpserted = "presence_upserted"
	EventBlockChanged     = "block_changed"
	EventUnreadSync       = "unread_sync"
	EventPong             = "pong"
	EventError            = "error"
)

// Client-to-server message types.
const (
	ClientMessagePing      = "ping"
	ClientMessageJoin      = "join_conversation"
	ClientMessageLeave     = "leave_conversation"
	ClientMessageMarkRead  = "mark_read"
	ClientMessageHeartbeat = "heartbeat"
)

type ChangeEvent struct {
	Type           string      `json:"type"`
	ConversationID string      `json:"conversation_id,omitempty"`
	Payload        interface{} `json:"payload,omitempty"`
	Timestamp      string      `json:"timestamp"`
}

// ClientMessage is the envelope for everything a connected session sends up.
type ClientMessage struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
	IsOnline       *bool  `json:"is_online,omitempty"`
}

type UnreadSyncPayload struct {
	TotalUnread int `json:"total_unread"`
}

type BlockChangedPayload struct {
	BlockerID string `json:"blocker_id"`
	BlockedID string `json:"blocked_id"`
	Blocked   bool   `json:"blocked"`
}

func NewEvent(eventType, conversationID string, payload interface{}) ChangeEvent {
	return ChangeEvent{
		Type:           eventType,
		ConversationID: conversationID,
		Payload:        payload,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}
}

// Encode marshals an event for the wire; a marshal failure returns nil and
// the caller drops the event.
func Encode(event ChangeEvent) []byte {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal %s event: %v", event.Type, err)
		return nil
	}
	return data
}
