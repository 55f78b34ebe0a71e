package models

import "time"

// MessageType enumerates the supported chat message variants.
type MessageType string

// Message type constants.
const (
	MessageNormal    MessageType = "normal"
	MessageSuperchat MessageType = "superchat"
	MessageGift      MessageType = "gift"
)

// Valid reports whether the type is one of the known variants.
func (t MessageType) Valid() bool {
	switch t {
	case MessageNormal, MessageSuperchat, MessageGift:
		return true
	}
	return false
}

// Gift is a catalog purchase attached to a gift message.
// Field names stay camelCase on the wire for the stream overlay frontend.
type Gift struct {
	GiftKey  string `json:"giftKey"`
	GiftName string `json:"giftName"`
	Value    int    `json:"value"`
	Quantity int    `json:"quantity"`
}

// Message is one entry on the viewer message board.
type Message struct {
	ID          string      `json:"id"`
	CreatedAt   time.Time   `json:"createdAt"`
	Username    string      `json:"username"`
	AvatarColor string      `json:"avatarColor"`
	Type        MessageType `json:"type"`
	Content     string      `json:"content,omitempty"`
	Amount      float64     `json:"amount,omitempty"`
	Pinned      bool        `json:"pinned,omitempty"`
	Gift        *Gift       `json:"gift,omitempty"`
}
