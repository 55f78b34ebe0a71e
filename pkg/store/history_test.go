package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamforge/calliope/pkg/models"
)

func appendRecord(t *testing.T, log *HistoryLog, persona, text string) {
	t.Helper()
	require.NoError(t, log.Append(context.Background(), models.HistoryRecord{
		Persona: persona,
		Text:    text,
		Kind:    models.KindGeneral,
	}))
}

func TestHistoryLog(t *testing.T) {
	ctx := context.Background()

	t.Run("appends and counts records", func(t *testing.T) {
		log := NewHistoryLog(setupRedis(t))

		n, err := log.Len(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)

		appendRecord(t, log, "speed", "what's good chat")
		appendRecord(t, log, "spongebob", "I'm ready!")

		n, err = log.Len(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
	})

	t.Run("records come back oldest first with fields intact", func(t *testing.T) {
		log := NewHistoryLog(setupRedis(t))
		require.NoError(t, log.Append(ctx, models.HistoryRecord{
			Persona: "speed", Text: "what's good chat", Kind: models.KindGeneral, ChunkID: "1",
		}))
		require.NoError(t, log.Append(ctx, models.HistoryRecord{
			Persona: "spongebob", Text: "I'm ready!", Kind: models.KindSuperchat, ChunkID: "2",
		}))

		records, err := log.Records(ctx, 10)

		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "1", records[0].ChunkID)
		assert.Equal(t, "speed", records[0].Persona)
		assert.Equal(t, "2", records[1].ChunkID)
		assert.Equal(t, models.KindSuperchat, records[1].Kind)
	})

	t.Run("snapshot renders speaker-tagged lines oldest first", func(t *testing.T) {
		log := NewHistoryLog(setupRedis(t))
		appendRecord(t, log, "speed", "first line")
		appendRecord(t, log, "chinese_trump", "second line")

		snapshot, err := log.Snapshot(ctx, 10)

		require.NoError(t, err)
		assert.Equal(t, "[speed] first line\n[chinese_trump] second line\n", snapshot)
	})

	t.Run("snapshot keeps only the newest records within the limit", func(t *testing.T) {
		log := NewHistoryLog(setupRedis(t))
		appendRecord(t, log, "speed", "oldest")
		appendRecord(t, log, "speed", "middle")
		appendRecord(t, log, "speed", "newest")

		snapshot, err := log.Snapshot(ctx, 2)

		require.NoError(t, err)
		assert.NotContains(t, snapshot, "oldest")
		assert.Contains(t, snapshot, "middle")
		assert.Contains(t, snapshot, "newest")
	})

	t.Run("snapshot of an empty log is empty", func(t *testing.T) {
		log := NewHistoryLog(setupRedis(t))

		snapshot, err := log.Snapshot(ctx, 10)

		require.NoError(t, err)
		assert.Empty(t, snapshot)
	})

	t.Run("reset clears the log", func(t *testing.T) {
		log := NewHistoryLog(setupRedis(t))
		appendRecord(t, log, "speed", "gone after reset")

		require.NoError(t, log.Reset(ctx))

		n, err := log.Len(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
