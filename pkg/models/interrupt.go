package models

// InterruptStatus tracks an interrupt through its lifecycle.
type InterruptStatus string

// Interrupt status constants. Processed and QueuedScript are terminal.
const (
	InterruptQueued       InterruptStatus = "queued"
	InterruptProcessing   InterruptStatus = "processing"
	InterruptProcessed    InterruptStatus = "processed"
	InterruptQueuedScript InterruptStatus = "queued_script"
)

// InterruptRecord is a viewer-triggered event (superchat or gift) persisted
// until the processor reaches a terminal status for it. Timestamps are float
// Unix seconds.
type InterruptRecord struct {
	InterruptID string          `json:"interrupt_id"`
	Kind        AudioKind       `json:"kind"`
	Persona     string          `json:"persona,omitempty"`
	Message     string          `json:"message,omitempty"`
	Status      InterruptStatus `json:"status"`
	CreatedAt   float64         `json:"created_at"`
	StartedAt   float64         `json:"started_at,omitempty"`
	CompletedAt float64         `json:"completed_at,omitempty"`
	RetryAt     float64         `json:"retry_at,omitempty"`
}
