package message

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("message not found")

type Repository interface {
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*Message, error)
	// Thread returns messages exchanged between two users, newest
	// first, plus the total count.
	Thread(ctx context.Context, a, b uuid.UUID, limit, offset int) ([]*Message, int, error)
	// UnreadBySender groups a recipient's unread messages by sender.
	UnreadBySender(ctx context.Context, recipientID uuid.UUID) ([]*UnreadCount, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	// MarkThreadRead marks every unread message from sender to
	// recipient as read, returning how many were updated.
	MarkThreadRead(ctx context.Context, recipientID, senderID uuid.UUID) (int, error)
}
