// Package services contains business logic service layer implementations.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/streamforge/calliope/pkg/models"
	"github.com/streamforge/calliope/pkg/store"
)

// RegisterInterruptInput contains the domain-level data for a new interrupt.
// Transformed from the HTTP request by the handler.
type RegisterInterruptInput struct {
	Kind    string
	Persona string
	Message string
}

// InterruptService validates and queues viewer interrupts for the stream
// processor.
type InterruptService struct {
	interrupts *store.InterruptStore
}

// NewInterruptService creates a new InterruptService.
func NewInterruptService(interrupts *store.InterruptStore) *InterruptService {
	if interrupts == nil {
		panic("NewInterruptService: interrupts must not be nil")
	}
	return &InterruptService{interrupts: interrupts}
}

// Register creates a new interrupt in "queued" status and appends it to the
// processing queue. Returns the stored record with its fresh ID.
func (s *InterruptService) Register(ctx context.Context, input RegisterInterruptInput) (*models.InterruptRecord, error) {
	kind := models.AudioKind(input.Kind)
	switch kind {
	case models.KindSuperchat:
		if input.Persona == "" {
			return nil, NewValidationError("persona", "required for superchat interrupts")
		}
		if input.Message == "" {
			return nil, NewValidationError("message", "required for superchat interrupts")
		}
	case models.KindGift:
	default:
		return nil, NewValidationError("kind", fmt.Sprintf("must be '%s' or '%s'", models.KindSuperchat, models.KindGift))
	}

	record := models.InterruptRecord{
		InterruptID: uuid.New().String(),
		Kind:        kind,
		Persona:     input.Persona,
		Message:     input.Message,
		Status:      models.InterruptQueued,
		CreatedAt:   models.UnixSeconds(time.Now()),
	}
	if err := s.interrupts.Add(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to register interrupt: %w", err)
	}
	return &record, nil
}

// Get returns the stored record for an interrupt ID, or nil when unknown.
func (s *InterruptService) Get(ctx context.Context, id string) (*models.InterruptRecord, error) {
	if id == "" {
		return nil, NewValidationError("interrupt_id", "required")
	}
	return s.interrupts.Get(ctx, id)
}
