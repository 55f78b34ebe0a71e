package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/streamforge/calliope/pkg/models"
	"github.com/streamforge/calliope/pkg/services"
)

// listMessagesHandler handles GET /api/v1/messages.
func (s *Server) listMessagesHandler(c *gin.Context) {
	messages, err := s.messageService.List(c.Request.Context())
	if err != nil {
		mapServiceError(c, err)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	c.JSON(http.StatusOK, messages)
}

// createMessageHandler handles POST /api/v1/messages.
func (s *Server) createMessageHandler(c *gin.Context) {
	var req CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.CreateMessageInput{
		Username:    req.Username,
		AvatarColor: req.AvatarColor,
		Type:        req.Type,
		Content:     req.Content,
		Amount:      req.Amount,
		Pinned:      req.Pinned,
	}
	if req.Gift != nil {
		input.Gift = &services.GiftInput{Key: req.Gift.GiftKey, Quantity: req.Gift.Quantity}
	}

	message, err := s.messageService.Create(c.Request.Context(), input)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

// revenueHandler handles GET /api/v1/revenue.
func (s *Server) revenueHandler(c *gin.Context) {
	rev, err := s.messageService.Revenue(c.Request.Context())
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, &RevenueResponse{
		Total:     rev.Total,
		Breakdown: RevenueBreakdown{Superchat: rev.Superchat, Gifts: rev.Gifts},
	})
}

// viewCountHandler handles GET /api/v1/view-count.
func (s *Server) viewCountHandler(c *gin.Context) {
	count, err := s.messageService.ViewCount(c.Request.Context())
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, &ViewCountResponse{ViewCount: count})
}

// createAIMessageHandler handles POST /api/v1/ai/messages.
// Generates a synthetic viewer reaction to the prompt and appends it to the
// chat log.
func (s *Server) createAIMessageHandler(c *gin.Context) {
	var req AIMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := s.messageService.CreateAIMessage(c.Request.Context(), req.Prompt)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, &AIMessageResponse{Message: message.Content})
}
