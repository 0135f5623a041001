package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	notifications Repository
}

func NewService(notifications Repository) *Service {
	return &Service{notifications: notifications}
}

// Notify records a notification for a user. Other services call this
// when something the user cares about happens.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, kind, title, body string) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user_id is required")
	}
	if !validKinds[kind] {
		return nil, fmt.Errorf("invalid kind %q", kind)
	}
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	n := &Notification{UserID: userID, Kind: kind, Title: title, Body: body}
	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	return s.notifications.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.notifications.UnreadCount(ctx, userID)
}

// MarkRead marks one notification read. Only its owner may do so; a
// foreign notification reads as missing.
func (s *Service) MarkRead(ctx context.Context, id, callerID uuid.UUID) error {
	n, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != callerID {
		return ErrNotFound
	}
	if n.Read() {
		return nil
	}
	return s.notifications.MarkRead(ctx, id)
}

func (s *Service) MarkAllRead(ctx context.Context, callerID uuid.UUID) (int, error) {
	return s.notifications.MarkAllRead(ctx, callerID)
}
