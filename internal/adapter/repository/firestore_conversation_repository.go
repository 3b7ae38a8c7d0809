package repository

import (
	"context"
	"encoding/base64"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"otomart/internal/domain/entity"
	"otomart/internal/domain/repository"
	"otomart/pkg/errors"
)

type firestoreConversationRepository struct {
	client *firestore.Client
}

func NewFirestoreConversationRepository(client *firestore.Client) repository.ConversationRepository {
	return &firestoreConversationRepository{
		client: client,
	}
}

// conversationKey is the deterministic document ID for a (buyer, seller,
// listing) triple. Using the triple as the key is what makes GetOrCreate
// race-free: two tabs creating the same conversation target the same
// document, and the transaction turns check-then-insert into one atomic step.
// Components are base64url-encoded before joining; "." is outside that
// alphabet, so IDs containing the separator character cannot produce
// colliding keys.
func conversationKey(buyerID, sellerID, listingID string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(buyerID)) + "." + enc.EncodeToString([]byte(sellerID)) + "." + enc.EncodeToString([]byte(listingID))
}

func (r *firestoreConversationRepository) GetOrCreate(ctx context.Context, conv *entity.Conversation) (*entity.Conversation, bool, error) {
	docRef := r.client.Collection("conversations").Doc(conversationKey(conv.BuyerID, conv.SellerID, conv.ListingID))

	var result entity.Conversation
	created := false

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err == nil {
			created = false
			return doc.DataTo(&result)
		}
		if status.Code(err) != codes.NotFound {
			return err
		}

		now := time.Now()
		result = entity.Conversation{
			ID:            docRef.ID,
			BuyerID:       conv.BuyerID,
			SellerID:      conv.SellerID,
			ListingID:     conv.ListingID,
			CreatedAt:     now,
			LastMessageAt: now,
		}
		created = true
		return tx.Create(docRef, &result)
	})
	if err != nil {
		return nil, false, errors.Internal("Failed to get or create conversation", err)
	}

	return &result, created, nil
}

func (r *firestoreConversationRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	doc, err := r.client.Collection("conversations").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Conversation", err)
		}
		return nil, errors.Internal("Failed to get conversation", err)
	}

	var conv entity.Conversation
	if err := doc.DataTo(&conv); err != nil {
		return nil, errors.Internal("Failed to parse conversation data", err)
	}

	return &conv, nil
}

func (r *firestoreConversationRepository) ListByUserID(ctx context.Context, userID string) ([]*entity.Conversation, error) {
	var conversations []*entity.Conversation

	// A user can appear on either side, and Firestore has no OR queries on
	// two fields; run both queries and merge.
	for _, field := range []string{"buyerId", "sellerId"} {
		docs, err := r.client.Collection("conversations").Where(field, "==", userID).Documents(ctx).GetAll()
		if err != nil {
			return nil, errors.Internal("Failed to fetch conversations", err)
		}

		for _, doc := range docs {
			var conv entity.Conversation
			if err := doc.DataTo(&conv); err != nil {
				return nil, errors.Internal("Failed to parse conversation data", err)
			}
			conversations = append(conversations, &conv)
		}
	}

	return conversations, nil
}

func (r *firestoreConversationRepository) Touch(ctx context.Context, id string, at time.Time) error {
	docRef := r.client.Collection("conversations").Doc(id)

	// Transactional so concurrent sends never move lastMessageAt backwards.
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			return err
		}

		var conv entity.Conversation
		if err := doc.DataTo(&conv); err != nil {
			return err
		}
		if !at.After(conv.LastMessageAt) {
			return nil
		}

		return tx.Update(docRef, []firestore.Update{
			{Path: "lastMessageAt", Value: at},
		})
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Conversation", err)
		}
		return errors.Internal("Failed to update conversation activity", err)
	}

	return nil
}

func (r *firestoreConversationRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection("conversations").Doc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete conversation", err)
	}

	return nil
}
