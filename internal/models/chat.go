package models

import "time"

// ChatSummary is one entry in the console's chat list. Name falls back
// to the chat id when the gateway has no display name for it, and
// Preview carries the last message body or a placeholder.
type ChatSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Preview string `json:"preview"`
}

// ChatMessage is a message as the console renders it: chronological
// position, sender side, and the presentation width hint for the
// bubble it will be drawn in.
type ChatMessage struct {
	ID          string        `json:"id"`
	Body        string        `json:"body,omitempty"`
	FromMe      bool          `json:"from_me"`
	Type        string        `json:"type"`
	Timestamp   time.Time     `json:"timestamp"`
	Image       *MessageImage `json:"image,omitempty"`
	BubbleWidth int           `json:"bubble_width"`
}

type MessageImage struct {
	Link    string `json:"link,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// SearchHit is one result from the conversation provider's search API.
type SearchHit struct {
	ID          string `json:"id"`
	ContactName string `json:"contact_name,omitempty"`
	LastMessage string `json:"last_message,omitempty"`
}
