package models

import "time"

// Conversation is the single chat thread bound to a match, created lazily
// the first time the matched pair needs to exchange messages.
type Conversation struct {
	ID        int       `db:"id" json:"id"`
	MatchID   int       `db:"match_id" json:"match_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Message is an append-only chat message, ordered by creation time.
type Message struct {
	ID             int       `db:"id" json:"id"`
	ConversationID int       `db:"conversation_id" json:"conversation_id"`
	SenderID       int       `db:"sender_id" json:"sender_id"`
	Text           string    `db:"text" json:"text"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// ChatEvent is broadcast through websockets subscribed to an activity room.
type ChatEvent struct {
	Type    string   `json:"type"`
	Message *Message `json:"message,omitempty"`
}
