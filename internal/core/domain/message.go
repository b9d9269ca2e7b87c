package domain

import (
	"strings"
	"time"
)

// Message is a single chat message between two accounts.
type Message struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	SenderID   string    `json:"sender_id" bson:"sender_id"`
	ReceiverID string    `json:"receiver_id" bson:"receiver_id"`
	Text       string    `json:"text" bson:"text"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// LastMessage returns the last non-empty line of the message text. It is the
// line shown in the push notification body.
func (m *Message) LastMessage() string {
	lines := strings.Split(m.Text, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
