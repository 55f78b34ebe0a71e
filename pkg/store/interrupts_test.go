package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamforge/calliope/pkg/models"
)

func queuedInterrupt(id string, kind models.AudioKind) models.InterruptRecord {
	return models.InterruptRecord{
		InterruptID: id,
		Kind:        kind,
		Persona:     "chinese_trump",
		Message:     "read the paper properly",
		Status:      models.InterruptQueued,
		CreatedAt:   models.UnixSeconds(time.Now()),
	}
}

func TestInterruptStorePopNext(t *testing.T) {
	ctx := context.Background()

	t.Run("returns nil on an empty queue", func(t *testing.T) {
		s := NewInterruptStore(setupRedis(t))

		record, err := s.PopNext(ctx)

		require.NoError(t, err)
		assert.Nil(t, record)
	})

	t.Run("advances the record to processing", func(t *testing.T) {
		s := NewInterruptStore(setupRedis(t))
		require.NoError(t, s.Add(ctx, queuedInterrupt("int-1", models.KindSuperchat)))

		record, err := s.PopNext(ctx)

		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, "int-1", record.InterruptID)
		assert.Equal(t, models.InterruptProcessing, record.Status)
		assert.Greater(t, record.StartedAt, 0.0)

		stored, err := s.Get(ctx, "int-1")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, models.InterruptProcessing, stored.Status)
	})

	t.Run("pops in FIFO order", func(t *testing.T) {
		s := NewInterruptStore(setupRedis(t))
		require.NoError(t, s.Add(ctx, queuedInterrupt("int-1", models.KindSuperchat)))
		require.NoError(t, s.Add(ctx, queuedInterrupt("int-2", models.KindGift)))

		first, err := s.PopNext(ctx)
		require.NoError(t, err)
		second, err := s.PopNext(ctx)
		require.NoError(t, err)

		assert.Equal(t, "int-1", first.InterruptID)
		assert.Equal(t, "int-2", second.InterruptID)
	})

	t.Run("drops orphaned IDs without a record", func(t *testing.T) {
		client := setupRedis(t)
		s := NewInterruptStore(client)
		require.NoError(t, client.RPush(ctx, interruptQueueKey, "ghost").Err())

		record, err := s.PopNext(ctx)

		require.NoError(t, err)
		assert.Nil(t, record)
	})
}

func TestInterruptStoreMarkProcessed(t *testing.T) {
	ctx := context.Background()

	t.Run("records terminal status without touching the queue", func(t *testing.T) {
		s := NewInterruptStore(setupRedis(t))
		require.NoError(t, s.Add(ctx, queuedInterrupt("int-1", models.KindSuperchat)))
		require.NoError(t, s.Add(ctx, queuedInterrupt("int-2", models.KindGift)))

		popped, err := s.PopNext(ctx)
		require.NoError(t, err)
		require.NoError(t, s.MarkProcessed(ctx, popped.InterruptID, models.InterruptProcessed))

		stored, err := s.Get(ctx, "int-1")
		require.NoError(t, err)
		assert.Equal(t, models.InterruptProcessed, stored.Status)
		assert.Greater(t, stored.CompletedAt, 0.0)

		pending, err := s.PendingCount(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, pending)
	})

	t.Run("supports the queued_script terminal status", func(t *testing.T) {
		s := NewInterruptStore(setupRedis(t))
		require.NoError(t, s.Add(ctx, queuedInterrupt("int-1", models.KindGift)))

		_, err := s.PopNext(ctx)
		require.NoError(t, err)
		require.NoError(t, s.MarkProcessed(ctx, "int-1", models.InterruptQueuedScript))

		stored, err := s.Get(ctx, "int-1")
		require.NoError(t, err)
		assert.Equal(t, models.InterruptQueuedScript, stored.Status)
	})

	t.Run("fails for an unknown ID", func(t *testing.T) {
		s := NewInterruptStore(setupRedis(t))

		err := s.MarkProcessed(ctx, "missing", models.InterruptProcessed)

		assert.Error(t, err)
	})
}

func TestInterruptStoreRequeue(t *testing.T) {
	ctx := context.Background()

	t.Run("pushes the ID back to the tail with a retry stamp", func(t *testing.T) {
		s := NewInterruptStore(setupRedis(t))
		original := queuedInterrupt("int-1", models.KindSuperchat)
		require.NoError(t, s.Add(ctx, original))
		require.NoError(t, s.Add(ctx, queuedInterrupt("int-2", models.KindGift)))

		popped, err := s.PopNext(ctx)
		require.NoError(t, err)
		require.NoError(t, s.Requeue(ctx, *popped))

		// int-2 is now ahead of the retried int-1.
		next, err := s.PopNext(ctx)
		require.NoError(t, err)
		assert.Equal(t, "int-2", next.InterruptID)

		retried, err := s.PopNext(ctx)
		require.NoError(t, err)
		require.NotNil(t, retried)
		assert.Equal(t, "int-1", retried.InterruptID)
		assert.Greater(t, retried.RetryAt, 0.0)
		assert.Equal(t, original.CreatedAt, retried.CreatedAt)
	})
}

func TestInterruptStoreReset(t *testing.T) {
	ctx := context.Background()

	t.Run("clears both the queue and the records", func(t *testing.T) {
		s := NewInterruptStore(setupRedis(t))
		require.NoError(t, s.Add(ctx, queuedInterrupt("int-1", models.KindSuperchat)))

		require.NoError(t, s.Reset(ctx))

		pending, err := s.PendingCount(ctx)
		require.NoError(t, err)
		assert.Zero(t, pending)

		record, err := s.Get(ctx, "int-1")
		require.NoError(t, err)
		assert.Nil(t, record)
	})
}
