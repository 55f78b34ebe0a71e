package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/streamforge/calliope/pkg/models"
)

// ScriptQueue holds the remaining script lines in playback order.
type ScriptQueue struct {
	client *redis.Client
}

// NewScriptQueue creates a new ScriptQueue.
func NewScriptQueue(client *redis.Client) *ScriptQueue {
	if client == nil {
		panic("NewScriptQueue: client must not be nil")
	}
	return &ScriptQueue{client: client}
}

// Replace swaps the whole queue for the lines of text. The text is split on
// newlines, trimmed, and blank lines dropped; each surviving line becomes an
// entry with the given kind and persona. Delete and refill run in one
// transaction so a concurrent reader never sees a half-written script.
func (q *ScriptQueue) Replace(ctx context.Context, text string, kind models.AudioKind, persona string) (int, error) {
	var payloads []any
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		data, err := json.Marshal(models.ScriptEntry{Line: line, Kind: kind, Persona: persona})
		if err != nil {
			return 0, fmt.Errorf("failed to serialize script entry: %w", err)
		}
		payloads = append(payloads, data)
	}

	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, scriptQueueKey)
		if len(payloads) > 0 {
			pipe.RPush(ctx, scriptQueueKey, payloads...)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to replace script queue: %w", err)
	}
	return len(payloads), nil
}

// PopHead removes and returns the next entry, or nil when the queue is
// empty.
func (q *ScriptQueue) PopHead(ctx context.Context) (*models.ScriptEntry, error) {
	payload, err := q.client.LPop(ctx, scriptQueueKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pop script entry: %w", err)
	}
	var entry models.ScriptEntry
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		return nil, fmt.Errorf("failed to decode script entry: %w", err)
	}
	return &entry, nil
}

// SnapshotRemaining returns the pending line texts joined by newlines
// without consuming them.
func (q *ScriptQueue) SnapshotRemaining(ctx context.Context) (string, error) {
	payloads, err := q.client.LRange(ctx, scriptQueueKey, 0, -1).Result()
	if err != nil {
		return "", fmt.Errorf("failed to read script queue: %w", err)
	}
	lines := make([]string, 0, len(payloads))
	for _, payload := range payloads {
		var entry models.ScriptEntry
		if err := json.Unmarshal([]byte(payload), &entry); err != nil {
			return "", fmt.Errorf("failed to decode script entry: %w", err)
		}
		lines = append(lines, entry.Line)
	}
	return strings.Join(lines, "\n"), nil
}

// Len returns the number of pending entries.
func (q *ScriptQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, scriptQueueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to measure script queue: %w", err)
	}
	return n, nil
}
