package api

// InterruptRequest is the body of POST /api/v1/interrupt.
type InterruptRequest struct {
	Kind    string `json:"kind"`
	Persona string `json:"persona,omitempty"`
	Message string `json:"message,omitempty"`
}

// CreateMessageRequest is the body of POST /api/v1/messages. Field casing
// matches the stream overlay frontend.
type CreateMessageRequest struct {
	Username    string       `json:"username"`
	AvatarColor string       `json:"avatarColor"`
	Type        string       `json:"type"`
	Content     string       `json:"content,omitempty"`
	Amount      float64      `json:"amount,omitempty"`
	Pinned      bool         `json:"pinned,omitempty"`
	Gift        *GiftPayload `json:"gift,omitempty"`
}

// GiftPayload names a gift catalog entry in a message submission. Only the
// key and quantity are honored; name and value come from the catalog.
type GiftPayload struct {
	GiftKey  string `json:"giftKey"`
	Quantity int    `json:"quantity"`
}

// AIMessageRequest is the body of POST /api/v1/ai/messages.
type AIMessageRequest struct {
	Prompt string `json:"prompt"`
}
