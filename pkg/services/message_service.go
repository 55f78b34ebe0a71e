package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/streamforge/calliope/pkg/boson"
	"github.com/streamforge/calliope/pkg/models"
	"github.com/streamforge/calliope/pkg/store"
)

const viewerSystemPrompt = "You are an excitable viewer in an AI livestream chat. " +
	"Reply with a single, upbeat line (max 18 words)."

const viewerPromptTemplate = "Livestream topic: %s. Respond with a natural chat message " +
	"reacting to the moment. Avoid emojis unless they feel essential."

// View count is estimated from chat traffic rather than tracked per client.
const (
	baseViewers      = 1200
	viewersPerChat   = 5
	aiMessageTimeout = 15 * time.Second
)

// giftCatalog is the fixed set of purchasable gifts shown in the overlay.
var giftCatalog = map[string]struct {
	name  string
	value int
}{
	"spark":  {"Quantum Spark", 5},
	"heart":  {"Neural Heart", 12},
	"rocket": {"Attention Rocket", 20},
}

// usernameColors is the avatar palette the frontend renders.
var usernameColors = []string{
	"#F472B6",
	"#60A5FA",
	"#34D399",
	"#FBBF24",
	"#A855F7",
	"#F87171",
}

// aiViewerNames seed the generated usernames for AI-authored chat messages.
var aiViewerNames = []string{
	"NeuralVibes",
	"TokenTide",
	"GradientGuru",
	"AttentionAddict",
	"MatrixMuse",
	"PromptPal",
}

// BuildGift resolves a catalog key into a Gift with the given quantity.
// Name and value always come from the catalog so clients cannot inflate them.
func BuildGift(key string, quantity int) (*models.Gift, error) {
	spec, ok := giftCatalog[key]
	if !ok {
		return nil, NewValidationError("gift.giftKey", fmt.Sprintf("unknown gift type: %s", key))
	}
	if quantity < 1 {
		return nil, NewValidationError("gift.quantity", "must be at least 1")
	}
	return &models.Gift{GiftKey: key, GiftName: spec.name, Value: spec.value, Quantity: quantity}, nil
}

// CreateMessageInput contains the domain-level data for a viewer-submitted
// chat message.
type CreateMessageInput struct {
	Username    string
	AvatarColor string
	Type        string
	Content     string
	Amount      float64
	Pinned      bool
	Gift        *GiftInput
}

// GiftInput references a gift catalog entry by key.
type GiftInput struct {
	Key      string
	Quantity int
}

// Revenue is the stream income summary across paid message types.
type Revenue struct {
	Total     float64
	Superchat float64
	Gifts     float64
}

// MessageService manages the viewer chat log next to the stream, including
// revenue rollups and the AI-authored hype messages.
type MessageService struct {
	messages *store.MessageList
	pool     *boson.Pool
	model    string
}

// NewMessageService creates a new MessageService.
func NewMessageService(messages *store.MessageList, pool *boson.Pool, model string) *MessageService {
	if messages == nil {
		panic("NewMessageService: messages must not be nil")
	}
	if pool == nil {
		panic("NewMessageService: pool must not be nil")
	}
	return &MessageService{messages: messages, pool: pool, model: model}
}

// List returns every stored message ordered by creation time.
func (s *MessageService) List(ctx context.Context) ([]models.Message, error) {
	messages, err := s.messages.All(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}

// Create validates and stores a viewer-submitted message, returning the
// stored form with its fresh ID.
func (s *MessageService) Create(ctx context.Context, input CreateMessageInput) (*models.Message, error) {
	if input.Username == "" {
		return nil, NewValidationError("username", "required")
	}
	if input.AvatarColor == "" {
		return nil, NewValidationError("avatarColor", "required")
	}
	msgType := models.MessageType(input.Type)
	if !msgType.Valid() {
		return nil, NewValidationError("type", fmt.Sprintf("must be '%s', '%s', or '%s'",
			models.MessageNormal, models.MessageSuperchat, models.MessageGift))
	}

	var gift *models.Gift
	if input.Gift != nil {
		var err error
		gift, err = BuildGift(input.Gift.Key, input.Gift.Quantity)
		if err != nil {
			return nil, err
		}
	}

	message := models.Message{
		ID:          uuid.New().String(),
		CreatedAt:   time.Now().UTC(),
		Username:    input.Username,
		AvatarColor: input.AvatarColor,
		Type:        msgType,
		Content:     input.Content,
		Amount:      input.Amount,
		Pinned:      input.Pinned,
		Gift:        gift,
	}
	if err := s.messages.Append(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}
	return &message, nil
}

// Revenue sums superchat amounts and gift values across the whole log.
func (s *MessageService) Revenue(ctx context.Context) (Revenue, error) {
	messages, err := s.messages.All(ctx)
	if err != nil {
		return Revenue{}, err
	}
	var rev Revenue
	for _, msg := range messages {
		switch msg.Type {
		case models.MessageSuperchat:
			rev.Superchat += msg.Amount
		case models.MessageGift:
			if msg.Gift != nil {
				rev.Gifts += float64(msg.Gift.Value) * float64(msg.Gift.Quantity)
			}
		}
	}
	rev.Total = rev.Superchat + rev.Gifts
	return rev, nil
}

// ViewCount estimates the audience size from chat traffic.
func (s *MessageService) ViewCount(ctx context.Context) (int64, error) {
	count, err := s.messages.Len(ctx)
	if err != nil {
		return 0, err
	}
	return baseViewers + count*viewersPerChat, nil
}

// CreateAIMessage generates a hype line about the topic under a synthetic
// viewer identity and stores it as a normal chat message. Generation is
// best-effort: a failed or empty completion falls back to canned hype.
func (s *MessageService) CreateAIMessage(ctx context.Context, topic string) (*models.Message, error) {
	topic = strings.TrimSpace(topic)

	content, err := s.generateViewerLine(ctx, topic)
	if err != nil {
		slog.Warn("AI viewer message generation failed, using fallback", "error", err)
		content = ""
	}
	if content == "" {
		if topic != "" {
			content = topic + " hype!"
		} else {
			content = "This stream is lit!"
		}
	}

	message := models.Message{
		ID:          uuid.New().String(),
		CreatedAt:   time.Now().UTC(),
		Username:    fmt.Sprintf("%s%d", aiViewerNames[rand.IntN(len(aiViewerNames))], 100+rand.IntN(900)),
		AvatarColor: usernameColors[rand.IntN(len(usernameColors))],
		Type:        models.MessageNormal,
		Content:     content,
	}
	if err := s.messages.Append(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to store AI message: %w", err)
	}
	return &message, nil
}

// SeedIfEmpty loads the canned opening chat onto a fresh deployment so the
// overlay never starts blank. An already-populated log is left untouched.
func (s *MessageService) SeedIfEmpty(ctx context.Context) error {
	count, err := s.messages.Len(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	slog.Info("Seeding initial chat messages")
	for _, message := range seedMessages(time.Now().UTC()) {
		if err := s.messages.Append(ctx, message); err != nil {
			return fmt.Errorf("failed to seed messages: %w", err)
		}
	}
	return nil
}

func (s *MessageService) generateViewerLine(ctx context.Context, topic string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, aiMessageTimeout)
	defer cancel()

	client := s.pool.Get()
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(viewerSystemPrompt),
			openai.UserMessage(fmt.Sprintf(viewerPromptTemplate, topic)),
		},
		MaxTokens:   param.NewOpt(int64(80)),
		Temperature: param.NewOpt(0.7),
	})
	if err != nil {
		return "", fmt.Errorf("viewer message completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// seedMessages is the canned opening chat, timestamped into the recent past
// so the overlay scrolls naturally.
func seedMessages(now time.Time) []models.Message {
	gift, _ := BuildGift("spark", 5)
	return []models.Message{
		{
			ID:          "m1",
			CreatedAt:   now.Add(-8 * time.Minute),
			Username:    "transformerFan",
			AvatarColor: usernameColors[0],
			Type:        models.MessageSuperchat,
			Amount:      50,
			Pinned:      true,
			Content:     "Hype for the attention deep dive!",
		},
		{
			ID:          "m2",
			CreatedAt:   now.Add(-7 * time.Minute),
			Username:    "grad_descent",
			AvatarColor: usernameColors[1],
			Type:        models.MessageNormal,
			Content:     "Gradient flow is looking smooth tonight.",
		},
		{
			ID:          "m3",
			CreatedAt:   now.Add(-6 * time.Minute),
			Username:    "layer_norm",
			AvatarColor: usernameColors[2],
			Type:        models.MessageGift,
			Gift:        gift,
			Content:     "Layer_norm sent some sparks!",
		},
		{
			ID:          "m4",
			CreatedAt:   now.Add(-5 * time.Minute),
			Username:    "token_talker",
			AvatarColor: usernameColors[3],
			Type:        models.MessageNormal,
			Content:     "Residuals keeping the party alive.",
		},
		{
			ID:          "m5",
			CreatedAt:   now.Add(-3 * time.Minute),
			Username:    "multi_head",
			AvatarColor: usernameColors[4],
			Type:        models.MessageSuperchat,
			Amount:      120,
			Pinned:      true,
			Content:     "Multi-head supremacy!",
		},
		{
			ID:          "m6",
			CreatedAt:   now.Add(-2 * time.Minute),
			Username:    "beamSearch",
			AvatarColor: usernameColors[5],
			Type:        models.MessageNormal,
			Content:     "Who's ready for decoding after party?",
		},
	}
}
