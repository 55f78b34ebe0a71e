package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamforge/calliope/pkg/boson"
	"github.com/streamforge/calliope/pkg/models"
	"github.com/streamforge/calliope/pkg/store"
)

// setupMessageService wires a MessageService against miniredis and a fake
// chat-completions endpoint.
func setupMessageService(t *testing.T, handler http.HandlerFunc) *MessageService {
	t.Helper()

	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	if handler == nil {
		handler = func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no completions expected", http.StatusInternalServerError)
		}
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	pool, err := boson.NewPool(srv.URL+"/v1", []string{"test-key"})
	require.NoError(t, err)

	return NewMessageService(store.NewMessageList(client), pool, "chat-model-test")
}

func completionBody(text string) string {
	return fmt.Sprintf(`{"choices":[{"message":{"content":%q}}]}`, text)
}

func TestBuildGift(t *testing.T) {
	t.Run("resolves name and value from the catalog", func(t *testing.T) {
		gift, err := BuildGift("rocket", 2)

		require.NoError(t, err)
		assert.Equal(t, "Attention Rocket", gift.GiftName)
		assert.Equal(t, 20, gift.Value)
		assert.Equal(t, 2, gift.Quantity)
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		_, err := BuildGift("diamond", 1)

		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("rejects non-positive quantities", func(t *testing.T) {
		_, err := BuildGift("spark", 0)

		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})
}

func TestMessageServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a valid superchat", func(t *testing.T) {
		s := setupMessageService(t, nil)

		message, err := s.Create(ctx, CreateMessageInput{
			Username:    "chatGoblin",
			AvatarColor: "#F472B6",
			Type:        "superchat",
			Content:     "take my money",
			Amount:      25,
			Pinned:      true,
		})

		require.NoError(t, err)
		assert.NotEmpty(t, message.ID)
		assert.Equal(t, models.MessageSuperchat, message.Type)
		assert.Equal(t, 25.0, message.Amount)

		stored, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, message.ID, stored[0].ID)
	})

	t.Run("resolves gift payloads against the catalog", func(t *testing.T) {
		s := setupMessageService(t, nil)

		message, err := s.Create(ctx, CreateMessageInput{
			Username:    "gifter",
			AvatarColor: "#60A5FA",
			Type:        "gift",
			Gift:        &GiftInput{Key: "heart", Quantity: 3},
		})

		require.NoError(t, err)
		require.NotNil(t, message.Gift)
		assert.Equal(t, "Neural Heart", message.Gift.GiftName)
		assert.Equal(t, 12, message.Gift.Value)
		assert.Equal(t, 3, message.Gift.Quantity)
	})

	t.Run("rejects missing fields and unknown types", func(t *testing.T) {
		s := setupMessageService(t, nil)

		tests := []struct {
			name  string
			input CreateMessageInput
		}{
			{"missing username", CreateMessageInput{AvatarColor: "#fff", Type: "normal"}},
			{"missing avatar color", CreateMessageInput{Username: "x", Type: "normal"}},
			{"unknown type", CreateMessageInput{Username: "x", AvatarColor: "#fff", Type: "mega"}},
			{"unknown gift key", CreateMessageInput{Username: "x", AvatarColor: "#fff", Type: "gift", Gift: &GiftInput{Key: "nope", Quantity: 1}}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := s.Create(ctx, tt.input)
				require.Error(t, err)
				assert.True(t, IsValidationError(err))
			})
		}
	})
}

func TestMessageServiceList(t *testing.T) {
	ctx := context.Background()

	t.Run("orders by creation time regardless of insertion order", func(t *testing.T) {
		s := setupMessageService(t, nil)
		now := time.Now().UTC()

		// Appended newest-first to prove ordering comes from timestamps.
		require.NoError(t, s.messages.Append(ctx, models.Message{ID: "new", CreatedAt: now, Username: "b", AvatarColor: "#fff", Type: models.MessageNormal}))
		require.NoError(t, s.messages.Append(ctx, models.Message{ID: "old", CreatedAt: now.Add(-time.Hour), Username: "a", AvatarColor: "#fff", Type: models.MessageNormal}))

		messages, err := s.List(ctx)

		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, "old", messages[0].ID)
		assert.Equal(t, "new", messages[1].ID)
	})
}

func TestMessageServiceRevenue(t *testing.T) {
	ctx := context.Background()

	t.Run("sums superchats and gift values", func(t *testing.T) {
		s := setupMessageService(t, nil)

		_, err := s.Create(ctx, CreateMessageInput{Username: "a", AvatarColor: "#fff", Type: "superchat", Amount: 50})
		require.NoError(t, err)
		_, err = s.Create(ctx, CreateMessageInput{Username: "b", AvatarColor: "#fff", Type: "superchat", Amount: 120})
		require.NoError(t, err)
		_, err = s.Create(ctx, CreateMessageInput{Username: "c", AvatarColor: "#fff", Type: "gift", Gift: &GiftInput{Key: "spark", Quantity: 5}})
		require.NoError(t, err)
		_, err = s.Create(ctx, CreateMessageInput{Username: "d", AvatarColor: "#fff", Type: "normal", Content: "free hype"})
		require.NoError(t, err)

		rev, err := s.Revenue(ctx)

		require.NoError(t, err)
		assert.Equal(t, 170.0, rev.Superchat)
		assert.Equal(t, 25.0, rev.Gifts)
		assert.Equal(t, 195.0, rev.Total)
	})

	t.Run("is zero on an empty log", func(t *testing.T) {
		s := setupMessageService(t, nil)

		rev, err := s.Revenue(ctx)

		require.NoError(t, err)
		assert.Zero(t, rev.Total)
	})
}

func TestMessageServiceViewCount(t *testing.T) {
	ctx := context.Background()

	t.Run("grows with chat volume from the base audience", func(t *testing.T) {
		s := setupMessageService(t, nil)

		count, err := s.ViewCount(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1200, count)

		_, err = s.Create(ctx, CreateMessageInput{Username: "a", AvatarColor: "#fff", Type: "normal"})
		require.NoError(t, err)
		_, err = s.Create(ctx, CreateMessageInput{Username: "b", AvatarColor: "#fff", Type: "normal"})
		require.NoError(t, err)

		count, err = s.ViewCount(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1210, count)
	})
}

func TestMessageServiceCreateAIMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the generated line under a synthetic viewer", func(t *testing.T) {
		s := setupMessageService(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, completionBody("Attention mechanisms got me acting unwise!"))
		})

		message, err := s.CreateAIMessage(ctx, "attention is all you need")

		require.NoError(t, err)
		assert.Equal(t, models.MessageNormal, message.Type)
		assert.Equal(t, "Attention mechanisms got me acting unwise!", message.Content)
		assert.NotEmpty(t, message.Username)
		assert.Contains(t, usernameColors, message.AvatarColor)

		stored, err := s.List(ctx)
		require.NoError(t, err)
		assert.Len(t, stored, 1)
	})

	t.Run("falls back to topic hype when the model fails", func(t *testing.T) {
		s := setupMessageService(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model down", http.StatusBadGateway)
		})

		message, err := s.CreateAIMessage(ctx, "transformers")

		require.NoError(t, err)
		assert.Equal(t, "transformers hype!", message.Content)
	})

	t.Run("falls back to generic hype without a topic", func(t *testing.T) {
		s := setupMessageService(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, completionBody(""))
		})

		message, err := s.CreateAIMessage(ctx, "  ")

		require.NoError(t, err)
		assert.Equal(t, "This stream is lit!", message.Content)
	})
}

func TestMessageServiceSeedIfEmpty(t *testing.T) {
	ctx := context.Background()

	t.Run("populates the canned chat once", func(t *testing.T) {
		s := setupMessageService(t, nil)

		require.NoError(t, s.SeedIfEmpty(ctx))

		messages, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, messages, 6)
		assert.Equal(t, "transformerFan", messages[0].Username)
		assert.True(t, messages[0].Pinned)

		// A second seed call must not duplicate anything.
		require.NoError(t, s.SeedIfEmpty(ctx))
		messages, err = s.List(ctx)
		require.NoError(t, err)
		assert.Len(t, messages, 6)

		rev, err := s.Revenue(ctx)
		require.NoError(t, err)
		assert.Equal(t, 170.0, rev.Superchat)
		assert.Equal(t, 25.0, rev.Gifts)
	})

	t.Run("leaves existing chat untouched", func(t *testing.T) {
		s := setupMessageService(t, nil)
		_, err := s.Create(ctx, CreateMessageInput{Username: "early", AvatarColor: "#fff", Type: "normal"})
		require.NoError(t, err)

		require.NoError(t, s.SeedIfEmpty(ctx))

		messages, err := s.List(ctx)
		require.NoError(t, err)
		assert.Len(t, messages, 1)
	})
}
