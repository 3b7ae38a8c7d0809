package entity

import "time"

const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeFile  = "file"
)

// Message is one entry in a conversation's append-only log. Content and
// attachment fields are immutable; IsDelivered and IsRead only ever move
// from false to true. Ordering key is (CreatedAt, ID) ascending — the ID
// tiebreak matters because concurrent sends can share a timestamp.
type Message struct {
	ID             string    `json:"id" firestore:"id"`
	ConversationID string    `json:"conversation_id" firestore:"conversationId"`
	SenderID       string    `json:"sender_id" firestore:"senderId"`
	Content        string    `json:"content" firestore:"content"`
	Type           string    `json:"type" firestore:"type"` // "text", "image", "file"
	AttachmentURL  string    `json:"attachment_url,omitempty" firestore:"attachmentUrl,omitempty"`
	FileName       string    `json:"file_name,omitempty" firestore:"fileName,omitempty"` // file attachments only
	IsDelivered    bool      `json:"is_delivered" firestore:"isDelivered"`
	IsRead         bool      `json:"is_read" firestore:"isRead"`
	CreatedAt      time.Time `json:"created_at" firestore:"createdAt"`
}

// Before reports whether m sorts ahead of other in the conversation log.
func (m *Message) Before(other *Message) bool {
	if m.CreatedAt.Equal(other.CreatedAt) {
		return m.ID < other.ID
	}
	return m.CreatedAt.Before(other.CreatedAt)
}
