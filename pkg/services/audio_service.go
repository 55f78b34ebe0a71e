package services

import (
	"context"

	"github.com/streamforge/calliope/pkg/models"
	"github.com/streamforge/calliope/pkg/store"
)

// AudioService exposes the rendered audio queue to the HTTP layer.
type AudioService struct {
	audio *store.AudioQueue
}

// NewAudioService creates a new AudioService.
func NewAudioService(audio *store.AudioQueue) *AudioService {
	if audio == nil {
		panic("NewAudioService: audio must not be nil")
	}
	return &AudioService{audio: audio}
}

// Drain pops and returns every queued chunk in playback order. A second
// drain returns an empty slice until the processor produces more audio.
func (s *AudioService) Drain(ctx context.Context) ([]models.AudioChunk, error) {
	return s.audio.Drain(ctx)
}

// Count reports the number of queued chunks without consuming them.
func (s *AudioService) Count(ctx context.Context) (int64, error) {
	return s.audio.Count(ctx)
}
