package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otomart/pkg/errors"
)

func TestUnreadCountsPerConversationAndTotal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.userRepo.add("seller-2", "wati")
	env.listingRepo.add("listing-2", "seller-2", "Daihatsu Xenia 2021")

	convA, _, err := env.conversations.GetOrCreate(ctx, "buyer-1", CreateConversationInput{ListingID: "listing-1"})
	require.NoError(t, err)
	convB, _, err := env.conversations.GetOrCreate(ctx, "buyer-1", CreateConversationInput{ListingID: "listing-2"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = env.messages.Send(ctx, "seller-1", SendMessageInput{ConversationID: convA.ID, Content: "halo"})
		require.NoError(t, err)
	}
	_, err = env.messages.Send(ctx, "seller-2", SendMessageInput{ConversationID: convB.ID, Content: "halo"})
	require.NoError(t, err)

	// The buyer's own sends never count against them.
	_, err = env.messages.Send(ctx, "buyer-1", SendMessageInput{ConversationID: convA.ID, Content: "siap"})
	require.NoError(t, err)

	countA, err := env.unread.CountFor(ctx, convA.ID, "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, 2, countA)

	total, err := env.unread.TotalFor(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	// The seller sees the buyer's reply as their one unread.
	sellerTotal, err := env.unread.TotalFor(ctx, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, 1, sellerTotal)
}

func TestUnreadDropsToZeroAfterMarkRead(t *testing.T) {
	env := newTestEnv(t)
	conv := env.startConversation(t)
	ctx := context.Background()

	_, err := env.messages.Send(ctx, "seller-1", SendMessageInput{ConversationID: conv.ID, Content: "halo"})
	require.NoError(t, err)

	require.NoError(t, env.messages.MarkConversationRead(ctx, "buyer-1", conv.ID))

	// Any caller asking right after markRead sees zero.
	count, err := env.unread.CountFor(ctx, conv.ID, "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	total, err := env.unread.TotalFor(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestCountForRequiresParticipant(t *testing.T) {
	env := newTestEnv(t)
	conv := env.startConversation(t)

	_, err := env.unread.CountFor(context.Background(), conv.ID, "outsider-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestTotalForUserWithNoConversations(t *testing.T) {
	env := newTestEnv(t)

	total, err := env.unread.TotalFor(context.Background(), "outsider-1")
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}
