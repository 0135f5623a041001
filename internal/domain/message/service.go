package message

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	messages Repository
}

func NewService(messages Repository) *Service {
	return &Service{messages: messages}
}

func (s *Service) Send(ctx context.Context, senderID, recipientID uuid.UUID, body string) (*Message, error) {
	if recipientID == uuid.Nil {
		return nil, fmt.Errorf("recipient_id is required")
	}
	if senderID == recipientID {
		return nil, fmt.Errorf("cannot message yourself")
	}
	if body == "" {
		return nil, fmt.Errorf("body is required")
	}
	m := &Message{SenderID: senderID, RecipientID: recipientID, Body: body}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Thread returns the conversation between the caller and the other
// user. Only a participant can read it.
func (s *Service) Thread(ctx context.Context, callerID, otherID uuid.UUID, limit, offset int) ([]*Message, int, error) {
	return s.messages.Thread(ctx, callerID, otherID, limit, offset)
}

func (s *Service) UnreadBySender(ctx context.Context, recipientID uuid.UUID) ([]*UnreadCount, error) {
	return s.messages.UnreadBySender(ctx, recipientID)
}

// MarkRead marks one message read. Only the recipient may do this.
func (s *Service) MarkRead(ctx context.Context, id, callerID uuid.UUID) error {
	m, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if m.RecipientID != callerID {
		return ErrNotFound
	}
	if m.Read() {
		return nil
	}
	return s.messages.MarkRead(ctx, id)
}

// MarkThreadRead marks everything the given sender sent to the caller
// as read.
func (s *Service) MarkThreadRead(ctx context.Context, callerID, senderID uuid.UUID) (int, error) {
	return s.messages.MarkThreadRead(ctx, callerID, senderID)
}
