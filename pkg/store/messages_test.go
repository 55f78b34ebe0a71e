package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamforge/calliope/pkg/models"
)

func TestMessageList(t *testing.T) {
	ctx := context.Background()

	t.Run("round-trips messages in order", func(t *testing.T) {
		l := NewMessageList(setupRedis(t))
		created := time.Now().UTC().Truncate(time.Millisecond)

		require.NoError(t, l.Append(ctx, models.Message{
			ID:          "m-1",
			CreatedAt:   created,
			Username:    "NeuralVibes042",
			AvatarColor: "#F472B6",
			Type:        models.MessageNormal,
			Content:     "hello chat",
		}))
		require.NoError(t, l.Append(ctx, models.Message{
			ID:          "m-2",
			CreatedAt:   created,
			Username:    "TokenTide117",
			AvatarColor: "#60A5FA",
			Type:        models.MessageGift,
			Gift:        &models.Gift{GiftKey: "rocket", GiftName: "Attention Rocket", Value: 20, Quantity: 2},
		}))

		messages, err := l.All(ctx)
		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, "m-1", messages[0].ID)
		assert.Equal(t, "hello chat", messages[0].Content)
		assert.Equal(t, created, messages[0].CreatedAt)
		require.NotNil(t, messages[1].Gift)
		assert.Equal(t, "Attention Rocket", messages[1].Gift.GiftName)
		assert.Equal(t, 2, messages[1].Gift.Quantity)

		n, err := l.Len(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
	})

	t.Run("empty list yields no messages", func(t *testing.T) {
		l := NewMessageList(setupRedis(t))

		messages, err := l.All(ctx)

		require.NoError(t, err)
		assert.Empty(t, messages)
	})
}
