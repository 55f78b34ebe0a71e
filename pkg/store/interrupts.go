package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/streamforge/calliope/pkg/models"
)

// InterruptStore tracks viewer interrupts as an ordered ID list plus an
// ID-to-record hash. The record is written before the ID becomes visible on
// the list, so a popped ID without a record only happens after an external
// wipe and is dropped as an orphan.
type InterruptStore struct {
	client *redis.Client
}

// NewInterruptStore creates a new InterruptStore.
func NewInterruptStore(client *redis.Client) *InterruptStore {
	if client == nil {
		panic("NewInterruptStore: client must not be nil")
	}
	return &InterruptStore{client: client}
}

// Add persists the record and then appends its ID to the queue tail.
func (s *InterruptStore) Add(ctx context.Context, record models.InterruptRecord) error {
	if err := s.put(ctx, record); err != nil {
		return err
	}
	if err := s.client.RPush(ctx, interruptQueueKey, record.InterruptID).Err(); err != nil {
		return fmt.Errorf("failed to enqueue interrupt: %w", err)
	}
	return nil
}

// PopNext pops the next interrupt ID, advances its record to processing, and
// returns the record. Returns nil when the queue is empty. An ID without a
// record is logged and skipped.
func (s *InterruptStore) PopNext(ctx context.Context) (*models.InterruptRecord, error) {
	id, err := s.client.LPop(ctx, interruptQueueKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pop interrupt: %w", err)
	}

	payload, err := s.client.HGet(ctx, interruptDataKey, id).Result()
	if errors.Is(err, redis.Nil) {
		slog.Warn("Dropping orphaned interrupt ID with no stored record", "interrupt_id", id)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load interrupt %s: %w", id, err)
	}

	var record models.InterruptRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("failed to decode interrupt %s: %w", id, err)
	}

	record.Status = models.InterruptProcessing
	record.StartedAt = models.UnixSeconds(time.Now())
	if err := s.put(ctx, record); err != nil {
		return nil, err
	}
	return &record, nil
}

// MarkProcessed records the terminal status and completion time. The queue
// is untouched: the ID was already consumed by PopNext.
func (s *InterruptStore) MarkProcessed(ctx context.Context, id string, status models.InterruptStatus) error {
	payload, err := s.client.HGet(ctx, interruptDataKey, id).Result()
	if err != nil {
		return fmt.Errorf("failed to load interrupt %s: %w", id, err)
	}
	var record models.InterruptRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return fmt.Errorf("failed to decode interrupt %s: %w", id, err)
	}
	record.Status = status
	record.CompletedAt = models.UnixSeconds(time.Now())
	return s.put(ctx, record)
}

// Requeue stamps a retry time on the record and appends the ID back to the
// queue tail for another attempt.
func (s *InterruptStore) Requeue(ctx context.Context, record models.InterruptRecord) error {
	record.Status = models.InterruptQueued
	record.RetryAt = models.UnixSeconds(time.Now())
	if err := s.put(ctx, record); err != nil {
		return err
	}
	if err := s.client.RPush(ctx, interruptQueueKey, record.InterruptID).Err(); err != nil {
		return fmt.Errorf("failed to requeue interrupt: %w", err)
	}
	return nil
}

// Get loads a record by ID, or nil when unknown.
func (s *InterruptStore) Get(ctx context.Context, id string) (*models.InterruptRecord, error) {
	payload, err := s.client.HGet(ctx, interruptDataKey, id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load interrupt %s: %w", id, err)
	}
	var record models.InterruptRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("failed to decode interrupt %s: %w", id, err)
	}
	return &record, nil
}

// PendingCount returns the number of interrupts waiting on the queue.
func (s *InterruptStore) PendingCount(ctx context.Context) (int64, error) {
	n, err := s.client.LLen(ctx, interruptQueueKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to measure interrupt queue: %w", err)
	}
	return n, nil
}

// Reset clears the queue and every stored record.
func (s *InterruptStore) Reset(ctx context.Context) error {
	if err := s.client.Del(ctx, interruptQueueKey, interruptDataKey).Err(); err != nil {
		return fmt.Errorf("failed to reset interrupt state: %w", err)
	}
	return nil
}

func (s *InterruptStore) put(ctx context.Context, record models.InterruptRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to serialize interrupt: %w", err)
	}
	if err := s.client.HSet(ctx, interruptDataKey, record.InterruptID, payload).Err(); err != nil {
		return fmt.Errorf("failed to store interrupt: %w", err)
	}
	return nil
}
