package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamforge/calliope/pkg/models"
)

func TestScriptQueueReplace(t *testing.T) {
	ctx := context.Background()

	t.Run("splits lines, trims, and drops blanks", func(t *testing.T) {
		q := NewScriptQueue(setupRedis(t))

		n, err := q.Replace(ctx, "  [A] one  \n\n\t\n[B] two\n", models.KindGeneral, "speed")

		require.NoError(t, err)
		assert.Equal(t, 2, n)

		first, err := q.PopHead(ctx)
		require.NoError(t, err)
		require.NotNil(t, first)
		assert.Equal(t, "[A] one", first.Line)
		assert.Equal(t, models.KindGeneral, first.Kind)
		assert.Equal(t, "speed", first.Persona)

		second, err := q.PopHead(ctx)
		require.NoError(t, err)
		require.NotNil(t, second)
		assert.Equal(t, "[B] two", second.Line)
	})

	t.Run("discards the previous script", func(t *testing.T) {
		q := NewScriptQueue(setupRedis(t))

		_, err := q.Replace(ctx, "old line one\nold line two", models.KindGeneral, "speed")
		require.NoError(t, err)

		n, err := q.Replace(ctx, "new line", models.KindGift, "speed")
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		entry, err := q.PopHead(ctx)
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, "new line", entry.Line)
		assert.Equal(t, models.KindGift, entry.Kind)

		entry, err = q.PopHead(ctx)
		require.NoError(t, err)
		assert.Nil(t, entry)
	})

	t.Run("empty text leaves an empty queue", func(t *testing.T) {
		q := NewScriptQueue(setupRedis(t))

		_, err := q.Replace(ctx, "stale", models.KindGeneral, "speed")
		require.NoError(t, err)

		n, err := q.Replace(ctx, "   \n \n", models.KindGeneral, "speed")
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		length, err := q.Len(ctx)
		require.NoError(t, err)
		assert.Zero(t, length)
	})
}

func TestScriptQueuePopHead(t *testing.T) {
	ctx := context.Background()

	t.Run("returns nil on an empty queue", func(t *testing.T) {
		q := NewScriptQueue(setupRedis(t))

		entry, err := q.PopHead(ctx)

		require.NoError(t, err)
		assert.Nil(t, entry)
	})

	t.Run("preserves insertion order", func(t *testing.T) {
		q := NewScriptQueue(setupRedis(t))
		_, err := q.Replace(ctx, "a\nb\nc", models.KindGeneral, "speed")
		require.NoError(t, err)

		var lines []string
		for {
			entry, err := q.PopHead(ctx)
			require.NoError(t, err)
			if entry == nil {
				break
			}
			lines = append(lines, entry.Line)
		}
		assert.Equal(t, []string{"a", "b", "c"}, lines)
	})
}

func TestScriptQueueSnapshotRemaining(t *testing.T) {
	ctx := context.Background()

	t.Run("joins pending lines without consuming", func(t *testing.T) {
		q := NewScriptQueue(setupRedis(t))
		_, err := q.Replace(ctx, "first\nsecond", models.KindGeneral, "speed")
		require.NoError(t, err)

		snapshot, err := q.SnapshotRemaining(ctx)
		require.NoError(t, err)
		assert.Equal(t, "first\nsecond", snapshot)

		length, err := q.Len(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, length)
	})

	t.Run("empty queue yields an empty snapshot", func(t *testing.T) {
		q := NewScriptQueue(setupRedis(t))

		snapshot, err := q.SnapshotRemaining(ctx)

		require.NoError(t, err)
		assert.Empty(t, snapshot)
	})
}
