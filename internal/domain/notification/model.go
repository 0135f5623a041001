package notification

import (
	"time"

	"github.com/google/uuid"
)

const (
	KindAppointment = "appointment"
	KindOrder       = "order"
	KindLabResult   = "lab_result"
	KindMessage     = "message"
	KindSystem      = "system"
)

var validKinds = map[string]bool{
	KindAppointment: true,
	KindOrder:       true,
	KindLabResult:   true,
	KindMessage:     true,
	KindSystem:      true,
}

type Notification struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	Kind      string     `db:"kind" json:"kind"`
	Title     string     `db:"title" json:"title"`
	Body      string     `db:"body" json:"body"`
	ReadAt    *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

func (n *Notification) Read() bool {
	return n.ReadAt != nil
}
