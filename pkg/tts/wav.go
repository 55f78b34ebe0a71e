package tts

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Saved audio format: the Boson audio model emits raw 16-bit mono PCM at
// 24 kHz.
const (
	wavSampleRate    = 24000
	wavChannels      = 1
	wavBitsPerSample = 16
)

// cachedBest returns the base64 of a hand-picked take for this line when one
// exists on disk.
func (g *Generator) cachedBest(personaKey string, lineIndex int) (string, bool) {
	if g.bestsDir == "" {
		return "", false
	}
	path := filepath.Join(g.bestsDir, fmt.Sprintf("%s_%d_best.wav", personaKey, lineIndex))
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return base64.StdEncoding.EncodeToString(data), true
}

// save persists one take as a WAV file when saving is enabled. Line-bound
// takes are numbered {persona}_{line}_{seq}.wav; unbound takes use a
// millisecond timestamp. Saving is best-effort and never fails the caller.
func (g *Generator) save(audioB64, personaKey string, lineIndex int) {
	if !g.saveWAV {
		return
	}
	pcm, err := base64.StdEncoding.DecodeString(audioB64)
	if err != nil {
		slog.Warn("Discarding undecodable audio payload", "persona", personaKey, "error", err)
		return
	}
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		slog.Warn("Failed to create output directory", "dir", g.outputDir, "error", err)
		return
	}

	var name string
	if lineIndex < 0 {
		name = fmt.Sprintf("%s_%d.wav", personaKey, time.Now().UnixMilli())
	} else {
		name = fmt.Sprintf("%s_%d_%d.wav", personaKey, lineIndex, g.nextSequence(personaKey, lineIndex))
	}
	path := filepath.Join(g.outputDir, name)
	if err := writeWAV(path, pcm); err != nil {
		slog.Warn("Failed to save audio", "path", path, "error", err)
		return
	}
	slog.Info("Saved audio", "path", path, "line_index", lineIndex)
}

// nextSequence returns one past the highest take number already saved for
// this persona and line.
func (g *Generator) nextSequence(personaKey string, lineIndex int) int {
	prefix := fmt.Sprintf("%s_%d_", personaKey, lineIndex)
	entries, err := os.ReadDir(g.outputDir)
	if err != nil {
		return 0
	}
	next := 0
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".wav") {
			continue
		}
		seq, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".wav"))
		if err != nil {
			continue
		}
		if seq >= next {
			next = seq + 1
		}
	}
	return next
}

// writeWAV wraps raw PCM samples in a minimal 44-byte RIFF/WAVE header and
// writes the file.
func writeWAV(path string, pcm []byte) error {
	const headerLen = 44
	blockAlign := wavChannels * wavBitsPerSample / 8
	header := make([]byte, headerLen)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(headerLen-8+len(pcm)))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16) // PCM chunk size
	binary.LittleEndian.PutUint16(header[20:22], 1)  // PCM format
	binary.LittleEndian.PutUint16(header[22:24], wavChannels)
	binary.LittleEndian.PutUint32(header[24:28], wavSampleRate)
	binary.LittleEndian.PutUint32(header[28:32], uint32(wavSampleRate*blockAlign))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], wavBitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(pcm)))

	return os.WriteFile(path, append(header, pcm...), 0o644)
}
