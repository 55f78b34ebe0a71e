package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/streamforge/calliope/pkg/models"
)

// ErrCorruptChunk indicates a queued audio record that lost one of its
// required fields.
var ErrCorruptChunk = errors.New("corrupt audio chunk")

// AudioQueue buffers synthesized chunks until a player drains them.
type AudioQueue struct {
	client *redis.Client
}

// NewAudioQueue creates a new AudioQueue.
func NewAudioQueue(client *redis.Client) *AudioQueue {
	if client == nil {
		panic("NewAudioQueue: client must not be nil")
	}
	return &AudioQueue{client: client}
}

// Enqueue assigns the next chunk ID from the monotone counter and appends
// the serialized chunk to the queue tail.
func (q *AudioQueue) Enqueue(ctx context.Context, kind models.AudioKind, audioBase64, transcript, speaker string) (string, error) {
	id, err := q.client.Incr(ctx, audioCounterKey).Result()
	if err != nil {
		return "", fmt.Errorf("failed to allocate chunk ID: %w", err)
	}
	chunk := models.AudioChunk{
		ChunkID:     strconv.FormatInt(id, 10),
		Kind:        kind,
		AudioBase64: audioBase64,
		Transcript:  transcript,
		Speaker:     speaker,
	}
	payload, err := json.Marshal(chunk)
	if err != nil {
		return "", fmt.Errorf("failed to serialize audio chunk: %w", err)
	}
	if err := q.client.RPush(ctx, audioQueueKey, payload).Err(); err != nil {
		return "", fmt.Errorf("failed to enqueue audio chunk: %w", err)
	}
	return chunk.ChunkID, nil
}

// Drain pops every pending chunk in insertion order. The read is
// destructive: drained chunks belong to the caller.
func (q *AudioQueue) Drain(ctx context.Context) ([]models.AudioChunk, error) {
	var chunks []models.AudioChunk
	for {
		payload, err := q.client.LPop(ctx, audioQueueKey).Result()
		if errors.Is(err, redis.Nil) {
			return chunks, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to drain audio queue: %w", err)
		}
		var chunk models.AudioChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptChunk, err)
		}
		if chunk.ChunkID == "" || chunk.Transcript == "" || chunk.Speaker == "" {
			return nil, fmt.Errorf("%w: missing required field", ErrCorruptChunk)
		}
		chunks = append(chunks, chunk)
	}
}

// Count returns the queue length without consuming anything.
func (q *AudioQueue) Count(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, audioQueueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count audio chunks: %w", err)
	}
	return n, nil
}

// Reset clears the queue and the chunk counter.
func (q *AudioQueue) Reset(ctx context.Context) error {
	if err := q.client.Del(ctx, audioQueueKey, audioCounterKey).Err(); err != nil {
		return fmt.Errorf("failed to reset audio queue: %w", err)
	}
	return nil
}
