package entity

import "time"

// BlockRelation is a directional "blocker blocks blocked" row, owned by the
// blocker. Messaging checks it symmetrically: a row in either direction
// disables sends both ways.
type BlockRelation struct {
	BlockerID string    `json:"blocker_id" firestore:"blockerId"`
	BlockedID string    `json:"blocked_id" firestore:"blockedId"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}
