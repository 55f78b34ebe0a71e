package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/streamforge/calliope/pkg/models"
)

// MessageList is the viewer-facing chat log shown next to the stream.
type MessageList struct {
	client *redis.Client
}

// NewMessageList creates a new MessageList.
func NewMessageList(client *redis.Client) *MessageList {
	if client == nil {
		panic("NewMessageList: client must not be nil")
	}
	return &MessageList{client: client}
}

// Append adds a message to the tail of the log.
func (l *MessageList) Append(ctx context.Context, message models.Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}
	if err := l.client.RPush(ctx, messagesKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// All returns every message in insertion order.
func (l *MessageList) All(ctx context.Context) ([]models.Message, error) {
	payloads, err := l.client.LRange(ctx, messagesKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}
	messages := make([]models.Message, 0, len(payloads))
	for _, payload := range payloads {
		var message models.Message
		if err := json.Unmarshal([]byte(payload), &message); err != nil {
			return nil, fmt.Errorf("failed to decode message: %w", err)
		}
		messages = append(messages, message)
	}
	return messages, nil
}

// Len returns the number of stored messages.
func (l *MessageList) Len(ctx context.Context) (int64, error) {
	n, err := l.client.LLen(ctx, messagesKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to measure messages: %w", err)
	}
	return n, nil
}
