package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"otomart/internal/domain/entity"
	"otomart/internal/infrastructure/ratelimit"
	ws "otomart/internal/infrastructure/websocket"
	"otomart/pkg/errors"
)

// In-memory repositories mirroring the Firestore implementations' contracts:
// deterministic conversation keys, atomic get-or-create, (createdAt, id)
// message ordering, monotonic read flags.

type fakeConversationRepo struct {
	mu            sync.Mutex
	conversations map[string]*entity.Conversation
	creates       int
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{conversations: make(map[string]*entity.Conversation)}
}

func (r *fakeConversationRepo) GetOrCreate(ctx context.Context, conv *entity.Conversation) (*entity.Conversation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%s_%s_%s", conv.BuyerID, conv.SellerID, conv.ListingID)
	if existing, ok := r.conversations[key]; ok {
		return existing, false, nil
	}

	now := time.Now()
	created := &entity.Conversation{
		ID:            key,
		BuyerID:       conv.BuyerID,
		SellerID:      conv.SellerID,
		ListingID:     conv.ListingID,
		CreatedAt:     now,
		LastMessageAt: now,
	}
	r.conversations[key] = created
	r.creates++
	return created, true, nil
}

func (r *fakeConversationRepo) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.conversations[id]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}
	return conv, nil
}

func (r *fakeConversationRepo) ListByUserID(ctx context.Context, userID string) ([]*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*entity.Conversation
	for _, conv := range r.conversations {
		if conv.HasParticipant(userID) {
			result = append(result, conv)
		}
	}
	return result, nil
}

func (r *fakeConversationRepo) Touch(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.conversations[id]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}
	if at.After(conv.LastMessageAt) {
		conv.LastMessageAt = at
	}
	return nil
}

func (r *fakeConversationRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conversations, id)
	return nil
}

type fakeMessageRepo struct {
	mu   sync.Mutex
	logs map[string][]*entity.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{logs: make(map[string][]*entity.Message)}
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	log := append(r.logs[message.ConversationID], message)
	sort.Slice(log, func(i, j int) bool { return log[i].Before(log[j]) })
	r.logs[message.ConversationID] = log
	return nil
}

func (r *fakeMessageRepo) ListByConversation(ctx context.Context, conversationID string) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]*entity.Message(nil), r.logs[conversationID]...), nil
}

func (r *fakeMessageRepo) LatestByConversation(ctx context.Context, conversationID string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := r.logs[conversationID]
	if len(log) == 0 {
		return nil, errors.NotFound("Message", nil)
	}
	return log[len(log)-1], nil
}

func (r *fakeMessageRepo) MarkAllRead(ctx context.Context, conversationID, readerID string) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var updated []*entity.Message
	for _, message := range r.logs[conversationID] {
		if message.SenderID == readerID || message.IsRead {
			continue
		}
		message.IsRead = true
		message.IsDelivered = true
		updated = append(updated, message)
	}
	return updated, nil
}

func (r *fakeMessageRepo) CountUnread(ctx context.Context, conversationID, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, message := range r.logs[conversationID] {
		if !message.IsRead && message.SenderID != userID {
			count++
		}
	}
	return count, nil
}

func (r *fakeMessageRepo) DeleteByConversation(ctx context.Context, conversationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.logs, conversationID)
	return nil
}

type fakePresenceRepo struct {
	mu      sync.Mutex
	records map[string]*entity.PresenceRecord
}

func newFakePresenceRepo() *fakePresenceRepo {
	return &fakePresenceRepo{records: make(map[string]*entity.PresenceRecord)}
}

func (r *fakePresenceRepo) Upsert(ctx context.Context, record *entity.PresenceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[record.UserID] = record
	return nil
}

func (r *fakePresenceRepo) GetByUserID(ctx context.Context, userID string) (*entity.PresenceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[userID]
	if !ok {
		return nil, errors.NotFound("Presence", nil)
	}
	return record, nil
}

type fakeBlockRepo struct {
	mu        sync.Mutex
	relations map[string]*entity.BlockRelation
}

func newFakeBlockRepo() *fakeBlockRepo {
	return &fakeBlockRepo{relations: make(map[string]*entity.BlockRelation)}
}

func blockKey(blockerID, blockedID string) string {
	return blockerID + "_" + blockedID
}

func (r *fakeBlockRepo) Upsert(ctx context.Context, relation *entity.BlockRelation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := blockKey(relation.BlockerID, relation.BlockedID)
	if existing, ok := r.relations[key]; ok {
		relation.CreatedAt = existing.CreatedAt
	} else if relation.CreatedAt.IsZero() {
		relation.CreatedAt = time.Now()
	}
	r.relations[key] = relation
	return nil
}

func (r *fakeBlockRepo) Delete(ctx context.Context, blockerID, blockedID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.relations, blockKey(blockerID, blockedID))
	return nil
}

func (r *fakeBlockRepo) GetBetween(ctx context.Context, userA, userB string) (*entity.BlockRelation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if relation, ok := r.relations[blockKey(userA, userB)]; ok {
		return relation, nil
	}
	if relation, ok := r.relations[blockKey(userB, userA)]; ok {
		return relation, nil
	}
	return nil, errors.NotFound("Block relation", nil)
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User)}
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return user, nil
}

func (r *fakeUserRepo) add(id, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[id] = &entity.User{ID: id, Username: username, CreatedAt: time.Now()}
}

type fakeListingRepo struct {
	mu       sync.Mutex
	listings map[string]*entity.Listing
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{listings: make(map[string]*entity.Listing)}
}

func (r *fakeListingRepo) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[id]
	if !ok {
		return nil, errors.NotFound("Listing", nil)
	}
	return listing, nil
}

func (r *fakeListingRepo) add(id, sellerID, title string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.listings[id] = &entity.Listing{
		ID:        id,
		SellerID:  sellerID,
		Title:     title,
		Brand:     "Toyota",
		Model:     "Avanza",
		Year:      2020,
		Price:     150000000,
		Status:    "active",
		CreatedAt: time.Now(),
	}
}

// testEnv wires the usecases against the fakes, with a live manager so
// event publishing paths run even when no session is connected.
type testEnv struct {
	convRepo    *fakeConversationRepo
	msgRepo     *fakeMessageRepo
	presRepo    *fakePresenceRepo
	blockRepo   *fakeBlockRepo
	userRepo    *fakeUserRepo
	listingRepo *fakeListingRepo

	manager       *ws.Manager
	unread        *UnreadUseCase
	conversations *ConversationUseCase
	messages      *MessageUseCase
	presence      *PresenceUseCase
	blocks        *BlockUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		convRepo:    newFakeConversationRepo(),
		msgRepo:     newFakeMessageRepo(),
		presRepo:    newFakePresenceRepo(),
		blockRepo:   newFakeBlockRepo(),
		userRepo:    newFakeUserRepo(),
		listingRepo: newFakeListingRepo(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	env.manager = ws.NewManager()
	env.manager.Start(ctx)

	rateLimiter := ratelimit.NewRateLimiter()

	env.unread = NewUnreadUseCase(env.convRepo, env.msgRepo)
	env.conversations = NewConversationUseCase(env.convRepo, env.msgRepo, env.userRepo, env.listingRepo, env.unread, env.manager, rateLimiter)
	env.messages = NewMessageUseCase(env.msgRepo, env.convRepo, env.blockRepo, env.userRepo, env.unread, env.manager, rateLimiter)
	env.presence = NewPresenceUseCase(env.presRepo, env.convRepo, env.manager, 20*time.Second)
	env.blocks = NewBlockUseCase(env.blockRepo, env.userRepo, env.manager)

	env.userRepo.add("buyer-1", "budi")
	env.userRepo.add("seller-1", "sari")
	env.userRepo.add("outsider-1", "tono")
	env.listingRepo.add("listing-1", "seller-1", "Toyota Avanza 2020")

	return env
}

// startConversation is a shortcut for tests that need an existing thread.
func (env *testEnv) startConversation(t *testing.T) *entity.Conversation {
	t.Helper()

	conv, _, err := env.conversations.GetOrCreate(context.Background(), "buyer-1", CreateConversationInput{ListingID: "listing-1"})
	if err != nil {
		t.Fatalf("failed to start conversation: %v", err)
	}
	return conv
}
