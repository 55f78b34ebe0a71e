// Package store implements the Redis-backed state shared between the HTTP
// surface and the stream processor: the script queue, audio queue, interrupt
// store, history log, and viewer message list.
//
// The processor is the sole writer to script, audio, history, and interrupt
// status; HTTP handlers only append interrupts, drain audio, and read counts.
// That single-writer discipline means plain single-key Redis operations are
// enough, with one transactional pipeline where the script queue is swapped
// wholesale.
package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	scriptQueueKey    = "stream:script:queue"
	historyKey        = "stream:history"
	audioQueueKey     = "stream:audio:queue"
	audioCounterKey   = "stream:audio:next_chunk_id"
	interruptQueueKey = "stream:interrupts:queue"
	interruptDataKey  = "stream:interrupts:data"
	messagesKey       = "stream:messages"
)

// NewClient connects to Redis using a redis:// URL and verifies the
// connection with a ping.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}
