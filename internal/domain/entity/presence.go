package entity

import "time"

// PresenceRecord is a user's last self-reported online state. The stored
// IsOnline flag alone is not authoritative: readers must also check that
// LastSeenAt is within the staleness window, since an ungraceful disconnect
// leaves a stale "online" row behind.
type PresenceRecord struct {
	UserID     string    `json:"user_id" firestore:"userId"`
	IsOnline   bool      `json:"is_online" firestore:"isOnline"`
	LastSeenAt time.Time `json:"last_seen_at" firestore:"lastSeenAt"`
}
