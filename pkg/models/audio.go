// Package models contains the wire and domain records shared across the
// stream pipeline: audio chunks, script entries, interrupts, history, and
// the viewer message board.
package models

import (
	"fmt"
	"time"
)

// AudioKind categorizes audio chunks and script entries.
type AudioKind string

// Audio kind constants.
const (
	KindGeneral   AudioKind = "general"
	KindSuperchat AudioKind = "superchat"
	KindGift      AudioKind = "gift"
)

// Valid reports whether the kind is one of the known categories.
func (k AudioKind) Valid() bool {
	switch k {
	case KindGeneral, KindSuperchat, KindGift:
		return true
	}
	return false
}

// AudioChunk is a single rendered audio payload awaiting client pull.
// ChunkID is a monotonically increasing integer rendered as a string.
type AudioChunk struct {
	ChunkID     string    `json:"chunk_id"`
	Kind        AudioKind `json:"kind"`
	AudioBase64 string    `json:"audio_base64"`
	Transcript  string    `json:"transcript"`
	Speaker     string    `json:"speaker"`
}

// ScriptEntry is one upcoming dialogue line. Line keeps its inline
// "[Speaker]" prefix; Persona is the fallback voice when no tag parses.
type ScriptEntry struct {
	Line    string    `json:"line"`
	Kind    AudioKind `json:"kind"`
	Persona string    `json:"persona"`
}

// HistoryRecord is one line the stream has already spoken.
type HistoryRecord struct {
	Persona   string    `json:"persona"`
	Text      string    `json:"text"`
	Kind      AudioKind `json:"kind"`
	ChunkID   string    `json:"chunk_id"`
	Timestamp float64   `json:"timestamp"`
}

// String renders the record the way the script generator consumes it.
func (r HistoryRecord) String() string {
	return fmt.Sprintf("[%s] %s", r.Persona, r.Text)
}

// UnixSeconds converts a time to the float seconds representation used in
// persisted records.
func UnixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
