package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/streamforge/calliope/pkg/models"
	"github.com/streamforge/calliope/pkg/services"
)

// healthzHandler handles GET /healthz.
func (s *Server) healthzHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// drainAudioHandler handles GET /api/v1/audio.
// Returns every pending chunk in playback order and removes them from the
// queue; the caller owns delivery from here.
func (s *Server) drainAudioHandler(c *gin.Context) {
	chunks, err := s.audioService.Drain(c.Request.Context())
	if err != nil {
		mapServiceError(c, err)
		return
	}
	if chunks == nil {
		chunks = []models.AudioChunk{}
	}
	c.JSON(http.StatusOK, &AudioResponse{Chunks: chunks})
}

// audioCountHandler handles GET /api/v1/count.
func (s *Server) audioCountHandler(c *gin.Context) {
	count, err := s.audioService.Count(c.Request.Context())
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, &CountResponse{Count: count})
}

// registerInterruptHandler handles POST /api/v1/interrupt.
// Queues the interrupt and returns immediately; the stream processor picks
// it up on its next tick.
func (s *Server) registerInterruptHandler(c *gin.Context) {
	var req InterruptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := s.interruptService.Register(c.Request.Context(), services.RegisterInterruptInput{
		Kind:    req.Kind,
		Persona: req.Persona,
		Message: req.Message,
	})
	if err != nil {
		mapServiceError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, &InterruptResponse{
		InterruptID: record.InterruptID,
		Kind:        string(record.Kind),
		Status:      string(record.Status),
	})
}
