package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"otomart/internal/domain/entity"
	"otomart/internal/domain/repository"
	"otomart/pkg/errors"
)

type firestorePresenceRepository struct {
	client *firestore.Client
}

func NewFirestorePresenceRepository(client *firestore.Client) repository.PresenceRepository {
	return &firestorePresenceRepository{
		client: client,
	}
}

// One document per user, keyed by user ID. Set overwrites whole-document, so
// racing sessions of the same user resolve to the last writer.
func (r *firestorePresenceRepository) Upsert(ctx context.Context, record *entity.PresenceRecord) error {
	_, err := r.client.Collection("presence").Doc(record.UserID).Set(ctx, record)
	if err != nil {
		return errors.Internal("Failed to upsert presence record", err)
	}

	return nil
}

func (r *firestorePresenceRepository) GetByUserID(ctx context.Context, userID string) (*entity.PresenceRecord, error) {
	doc, err := r.client.Collection("presence").Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Presence record", err)
		}
		return nil, errors.Internal("Failed to get presence record", err)
	}

	var record entity.PresenceRecord
	if err := doc.DataTo(&record); err != nil {
		return nil, errors.Internal("Failed to parse presence data", err)
	}

	return &record, nil
}
