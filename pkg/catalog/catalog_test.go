package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeReferenceFixtures populates a temp dir with one fake voice sample per
// built-in persona and returns the dir.
func writeReferenceFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for key := range references {
		path := filepath.Join(dir, key+"_voice.wav")
		require.NoError(t, os.WriteFile(path, []byte("RIFF-"+key), 0o644))
	}
	return dir
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "chinese_trump", Normalize("Chinese Trump"))
	assert.Equal(t, "speed", Normalize("  SPEED "))
	assert.Equal(t, "peter_griffin", Normalize("peter_griffin"))
}

func TestLoad(t *testing.T) {
	t.Run("loads every built-in persona", func(t *testing.T) {
		dir := writeReferenceFixtures(t)

		cat, err := Load(dir, "speed")

		require.NoError(t, err)
		for key := range references {
			require.True(t, cat.Has(key), "persona %s", key)
			p := cat.Get(key)
			assert.Equal(t, key, p.Key)
			assert.Equal(t, []byte("RIFF-"+key), p.Audio)
			assert.Equal(t, "wav", p.AudioFormat)
			assert.NotEmpty(t, p.Transcript)
			assert.NotContains(t, p.Transcript, "\n\n")
		}
	})

	t.Run("fails when a voice sample is missing", func(t *testing.T) {
		dir := writeReferenceFixtures(t)
		require.NoError(t, os.Remove(filepath.Join(dir, "spongebob_voice.wav")))

		_, err := Load(dir, "speed")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "spongebob")
	})

	t.Run("rejects an unknown default persona", func(t *testing.T) {
		dir := writeReferenceFixtures(t)

		_, err := Load(dir, "nonexistent")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "nonexistent")
	})
}

func TestGet(t *testing.T) {
	dir := writeReferenceFixtures(t)
	cat, err := Load(dir, "speed")
	require.NoError(t, err)

	t.Run("resolves display names", func(t *testing.T) {
		p := cat.Get("Chinese Trump")
		assert.Equal(t, "chinese_trump", p.Key)
		assert.NotEmpty(t, p.SceneDesc)
	})

	t.Run("falls back to the default persona", func(t *testing.T) {
		p := cat.Get("somebody_else")
		assert.Equal(t, "speed", p.Key)
	})

	t.Run("personas without a scene description stay empty", func(t *testing.T) {
		p := cat.Get("peter_griffin")
		assert.Empty(t, p.SceneDesc)
	})
}
