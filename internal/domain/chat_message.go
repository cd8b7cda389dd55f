package domain

import "time"

// ChatMessage is one append-only entry in a ticket's conversation.
// SenderName and SenderRole are enriched from the sender record on read
// and on broadcast; they are not stored on the message row.
type ChatMessage struct {
	ID         string
	TicketID   string
	SenderID   string
	SenderName string
	SenderRole Role
	Text       string
	CreatedAt  time.Time
}
