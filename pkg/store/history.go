package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/streamforge/calliope/pkg/models"
)

// HistoryLog is the append-only record of everything spoken on stream.
type HistoryLog struct {
	client *redis.Client
}

// NewHistoryLog creates a new HistoryLog.
func NewHistoryLog(client *redis.Client) *HistoryLog {
	if client == nil {
		panic("NewHistoryLog: client must not be nil")
	}
	return &HistoryLog{client: client}
}

// Append adds a record to the tail of the log.
func (h *HistoryLog) Append(ctx context.Context, record models.HistoryRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to serialize history record: %w", err)
	}
	if err := h.client.RPush(ctx, historyKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to append history record: %w", err)
	}
	return nil
}

// Records returns the last limit records, oldest first.
func (h *HistoryLog) Records(ctx context.Context, limit int64) ([]models.HistoryRecord, error) {
	payloads, err := h.client.LRange(ctx, historyKey, -limit, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	records := make([]models.HistoryRecord, 0, len(payloads))
	for _, payload := range payloads {
		var record models.HistoryRecord
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			return nil, fmt.Errorf("failed to decode history record: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

// Snapshot renders the last limit records as "[persona] text" lines for LLM
// consumption, oldest first.
func (h *HistoryLog) Snapshot(ctx context.Context, limit int64) (string, error) {
	records, err := h.Records(ctx, limit)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, record := range records {
		sb.WriteString(record.String())
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// Len returns the number of records in the log.
func (h *HistoryLog) Len(ctx context.Context) (int64, error) {
	n, err := h.client.LLen(ctx, historyKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to measure history: %w", err)
	}
	return n, nil
}

// Reset clears the log.
func (h *HistoryLog) Reset(ctx context.Context) error {
	if err := h.client.Del(ctx, historyKey).Err(); err != nil {
		return fmt.Errorf("failed to reset history: %w", err)
	}
	return nil
}
