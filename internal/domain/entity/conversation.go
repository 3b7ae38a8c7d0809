package entity

import "time"

// Conversation is a two-party thread between a buyer and a seller, scoped to
// a single listing. One conversation exists per (buyer, seller, listing)
// triple; everything except LastMessageAt is immutable after creation.
type Conversation struct {
	ID            string    `json:"id" firestore:"id"`
	BuyerID       string    `json:"buyer_id" firestore:"buyerId"`
	SellerID      string    `json:"seller_id" firestore:"sellerId"`
	ListingID     string    `json:"listing_id" firestore:"listingId"`
	CreatedAt     time.Time `json:"created_at" firestore:"createdAt"`
	LastMessageAt time.Time `json:"last_message_at" firestore:"lastMessageAt"`
}

func (c *Conversation) HasParticipant(userID string) bool {
	return userID == c.BuyerID || userID == c.SellerID
}

// OtherParticipant returns the counterpart of userID, or "" when userID is
// not a participant.
func (c *Conversation) OtherParticipant(userID string) string {
	switch userID {
	case c.BuyerID:
		return c.SellerID
	case c.SellerID:
		return c.BuyerID
	}
	return ""
}
