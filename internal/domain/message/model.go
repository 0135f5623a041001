package message

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	SenderID    uuid.UUID  `db:"sender_id" json:"sender_id"`
	RecipientID uuid.UUID  `db:"recipient_id" json:"recipient_id"`
	Body        string     `db:"body" json:"body"`
	ReadAt      *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// Read reports whether the recipient has seen the message.
func (m *Message) Read() bool {
	return m.ReadAt != nil
}

// UnreadCount is one row of the unread aggregation: how many unseen
// messages a recipient has from one sender.
type UnreadCount struct {
	SenderID uuid.UUID `db:"sender_id" json:"sender_id"`
	Count    int       `db:"count" json:"count"`
}
