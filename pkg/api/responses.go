package api

import "github.com/streamforge/calliope/pkg/models"

// AudioResponse is returned by GET /api/v1/audio. The chunks are removed
// from the queue by the request that receives them.
type AudioResponse struct {
	Chunks []models.AudioChunk `json:"chunks"`
}

// CountResponse is returned by GET /api/v1/count.
type CountResponse struct {
	Count int64 `json:"count"`
}

// InterruptResponse is returned by POST /api/v1/interrupt.
type InterruptResponse struct {
	InterruptID string `json:"interrupt_id"`
	Kind        string `json:"kind"`
	Status      string `json:"status"`
}

// RevenueResponse is returned by GET /api/v1/revenue.
type RevenueResponse struct {
	Total     float64          `json:"total"`
	Breakdown RevenueBreakdown `json:"breakdown"`
}

// RevenueBreakdown splits revenue by source.
type RevenueBreakdown struct {
	Superchat float64 `json:"superchat"`
	Gifts     float64 `json:"gifts"`
}

// ViewCountResponse is returned by GET /api/v1/view-count.
type ViewCountResponse struct {
	ViewCount int64 `json:"viewCount"`
}

// AIMessageResponse is returned by POST /api/v1/ai/messages.
type AIMessageResponse struct {
	Message string `json:"message"`
}
