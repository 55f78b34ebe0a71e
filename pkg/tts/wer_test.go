package tts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeWords(t *testing.T) {
	t.Run("lowercases and strips punctuation", func(t *testing.T) {
		assert.Equal(t, []string{"yo", "yo", "we", "are", "live"}, normalizeWords("Yo, yo! We are LIVE!!!"))
	})

	t.Run("collapses whitespace", func(t *testing.T) {
		assert.Equal(t, []string{"hello", "world"}, normalizeWords("  hello \t\n world  "))
	})

	t.Run("empty input yields no words", func(t *testing.T) {
		assert.Empty(t, normalizeWords("  ...  "))
	})
}

func TestWordErrorRate(t *testing.T) {
	t.Run("identical texts score zero", func(t *testing.T) {
		assert.Equal(t, 0.0, wordErrorRate("hello world", "hello world"))
	})

	t.Run("is insensitive to case and punctuation", func(t *testing.T) {
		assert.Equal(t, 0.0, wordErrorRate("Hello, world!", "hello world"))
	})

	t.Run("one deletion out of two reference words is 0.5", func(t *testing.T) {
		assert.Equal(t, 0.5, wordErrorRate("hello world", "hello"))
	})

	t.Run("one substitution out of two reference words is 0.5", func(t *testing.T) {
		assert.Equal(t, 0.5, wordErrorRate("hello world", "hello there"))
	})

	t.Run("insertions count against the reference length", func(t *testing.T) {
		assert.Equal(t, 1.0, wordErrorRate("hello", "hello world"))
	})

	t.Run("empty reference uses a denominator of one", func(t *testing.T) {
		assert.Equal(t, 2.0, wordErrorRate("", "hello world"))
	})

	t.Run("empty hypothesis deletes every reference word", func(t *testing.T) {
		assert.Equal(t, 1.0, wordErrorRate("hello world", ""))
	})
}
