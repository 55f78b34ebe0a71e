// Package api exposes the livestream backend over HTTP: the player drains
// rendered audio, viewers submit interrupts and chat messages, and the
// overlay polls revenue and view counts. Handlers never touch the stream
// pipeline directly; everything goes through the service layer and the
// shared store.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/streamforge/calliope/pkg/services"
)

// Server is the HTTP front of the stream backend.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server

	audioService     *services.AudioService
	interruptService *services.InterruptService
	messageService   *services.MessageService
}

// NewServer creates the API server and registers all routes.
func NewServer(audio *services.AudioService, interrupts *services.InterruptService, messages *services.MessageService) *Server {
	if audio == nil {
		panic("NewServer: audio must not be nil")
	}
	if interrupts == nil {
		panic("NewServer: interrupts must not be nil")
	}
	if messages == nil {
		panic("NewServer: messages must not be nil")
	}

	s := &Server{
		audioService:     audio,
		interruptService: interrupts,
		messageService:   messages,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(), corsMiddleware())

	engine.GET("/healthz", s.healthzHandler)

	v1 := engine.Group("/api/v1")
	v1.GET("/audio", s.drainAudioHandler)
	v1.GET("/count", s.audioCountHandler)
	v1.POST("/interrupt", s.registerInterruptHandler)
	v1.GET("/messages", s.listMessagesHandler)
	v1.POST("/messages", s.createMessageHandler)
	v1.GET("/revenue", s.revenueHandler)
	v1.GET("/view-count", s.viewCountHandler)
	v1.POST("/ai/messages", s.createAIMessageHandler)

	s.engine = engine
	return s
}

// Handler returns the underlying HTTP handler, used by tests to serve
// requests without a listener.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start blocks serving HTTP on addr until Shutdown or a listener error.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, letting in-flight requests finish
// within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
