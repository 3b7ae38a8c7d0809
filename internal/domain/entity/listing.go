package entity

import "time"

// Listing is the car advertisement a conversation is scoped to. Listing CRUD
// lives outside this service; messaging only reads it to validate the seller
// and to decorate conversation summaries.
type Listing struct {
	ID        string    `json:"id" firestore:"id"`
	SellerID  string    `json:"seller_id" firestore:"sellerId"`
	Title     string    `json:"title" firestore:"title"`
	Brand     string    `json:"brand" firestore:"brand"`
	Model     string    `json:"model" firestore:"model"`
	Year      int       `json:"year" firestore:"year"`
	Price     float64   `json:"price" firestore:"price"`
	Status    string    `json:"status" firestore:"status"` // "active", "sold", "archived"
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}
