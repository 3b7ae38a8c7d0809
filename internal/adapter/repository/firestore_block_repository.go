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

type firestoreBlockRepository struct {
	client *firestore.Client
}

func NewFirestoreBlockRepository(client *firestore.Client) repository.BlockRepository {
	return &firestoreBlockRepository{
		client: client,
	}
}

// blockKey keys the directional pair, so repeated blocks collapse onto one
// document instead of accumulating rows. Components are base64url-encoded
// before joining, keeping keys injective for arbitrary user IDs.
func blockKey(blockerID, blockedID string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(blockerID)) + "." + enc.EncodeToString([]byte(blockedID))
}

func (r *firestoreBlockRepository) Upsert(ctx context.Context, relation *entity.BlockRelation) error {
	if relation.CreatedAt.IsZero() {
		relation.CreatedAt = time.Now()
	}

	docRef := r.client.Collection("blocks").Doc(blockKey(relation.BlockerID, relation.BlockedID))

	// Keep the original CreatedAt when the row already exists.
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(docRef)
		if err == nil {
			return nil
		}
		if status.Code(err) != codes.NotFound {
			return err
		}
		return tx.Create(docRef, relation)
	})
	if err != nil {
		return errors.Internal("Failed to create block relation", err)
	}

	return nil
}

func (r *firestoreBlockRepository) Delete(ctx context.Context, blockerID, blockedID string) error {
	_, err := r.client.Collection("blocks").Doc(blockKey(blockerID, blockedID)).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete block relation", err)
	}

	return nil
}

func (r *firestoreBlockRepository) GetBetween(ctx context.Context, userA, userB string) (*entity.BlockRelation, error) {
	for _, key := range []string{blockKey(userA, userB), blockKey(userB, userA)} {
		doc, err := r.client.Collection("blocks").Doc(key).Get(ctx)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				continue
			}
			return nil, errors.Internal("Failed to query block relation", err)
		}

		var relation entity.BlockRelation
		if err := doc.DataTo(&relation); err != nil {
			return nil, errors.Internal("Failed to parse block data", err)
		}
		return &relation, nil
	}

	return nil, errors.NotFound("Block relation", nil)
}
