package labtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/clinicore/internal/domain/notification"
)

// -- Mock Repository --

type mockRepo struct {
	tests map[uuid.UUID]*LabTest
}

func newMockRepo() *mockRepo {
	return &mockRepo{tests: make(map[uuid.UUID]*LabTest)}
}

func (m *mockRepo) Create(_ context.Context, t *LabTest) error {
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
	m.tests[t.ID] = t
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*LabTest, error) {
	t, ok := m.tests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

func (m *mockRepo) Update(_ context.Context, t *LabTest) error {
	m.tests[t.ID] = t
	return nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*LabTest, int, error) {
	var result []*LabTest
	for _, t := range m.tests {
		if t.PatientID == patientID {
			result = append(result, t)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) ListByStatus(_ context.Context, status string, limit, offset int) ([]*LabTest, int, error) {
	var result []*LabTest
	for _, t := range m.tests {
		if t.Status == status {
			result = append(result, t)
		}
	}
	return result, len(result), nil
}

// -- Tests --

func newTestService() *Service {
	return NewService(newMockRepo(), nil)
}

func TestOrderTest(t *testing.T) {
	svc := newTestService()
	lt, err := svc.OrderTest(context.Background(), uuid.New(), uuid.New(), "CBC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lt.Status != StatusOrdered {
		t.Errorf("expected ordered, got %s", lt.Status)
	}
}

func TestOrderTest_TypeRequired(t *testing.T) {
	svc := newTestService()
	if _, err := svc.OrderTest(context.Background(), uuid.New(), uuid.New(), ""); err == nil {
		t.Error("expected error for missing test_type")
	}
}

func TestStart(t *testing.T) {
	svc := newTestService()
	lt, _ := svc.OrderTest(context.Background(), uuid.New(), uuid.New(), "CBC")

	updated, err := svc.Start(context.Background(), lt.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusInProgress {
		t.Errorf("expected in-progress, got %s", updated.Status)
	}
}

func TestComplete_RequiresResult(t *testing.T) {
	svc := newTestService()
	lt, _ := svc.OrderTest(context.Background(), uuid.New(), uuid.New(), "CBC")
	svc.Start(context.Background(), lt.ID)

	if _, err := svc.Complete(context.Background(), lt.ID, ""); err == nil {
		t.Error("expected error for missing result")
	}
}

func TestComplete(t *testing.T) {
	svc := newTestService()
	lt, _ := svc.OrderTest(context.Background(), uuid.New(), uuid.New(), "CBC")
	svc.Start(context.Background(), lt.ID)

	updated, err := svc.Complete(context.Background(), lt.ID, "normal")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusCompleted {
		t.Errorf("expected completed, got %s", updated.Status)
	}
	if updated.Result == nil || *updated.Result != "normal" {
		t.Error("expected result recorded")
	}
	if updated.CompletedAt == nil {
		t.Error("expected completed_at set")
	}
}

type failingNotificationRepo struct{}

func (failingNotificationRepo) Create(context.Context, *notification.Notification) error {
	return fmt.Errorf("notification store unavailable")
}
func (failingNotificationRepo) GetByID(context.Context, uuid.UUID) (*notification.Notification, error) {
	return nil, notification.ErrNotFound
}
func (failingNotificationRepo) ListByUser(context.Context, uuid.UUID, int, int) ([]*notification.Notification, int, error) {
	return nil, 0, nil
}
func (failingNotificationRepo) UnreadCount(context.Context, uuid.UUID) (int, error) { return 0, nil }
func (failingNotificationRepo) MarkRead(context.Context, uuid.UUID) error           { return nil }
func (failingNotificationRepo) MarkAllRead(context.Context, uuid.UUID) (int, error) { return 0, nil }

func TestComplete_NotifierFailureDoesNotFailCompletion(t *testing.T) {
	notifier := notification.NewService(failingNotificationRepo{})
	svc := NewService(newMockRepo(), notifier)
	lt, _ := svc.OrderTest(context.Background(), uuid.New(), uuid.New(), "CBC")
	svc.Start(context.Background(), lt.ID)

	updated, err := svc.Complete(context.Background(), lt.ID, "normal")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusCompleted {
		t.Errorf("expected completed, got %s", updated.Status)
	}
}

func TestComplete_FromOrderedRejected(t *testing.T) {
	svc := newTestService()
	lt, _ := svc.OrderTest(context.Background(), uuid.New(), uuid.New(), "CBC")

	if _, err := svc.Complete(context.Background(), lt.ID, "normal"); err == nil {
		t.Error("expected error for ordered -> completed")
	}
}

func TestCancel_TerminalImmutable(t *testing.T) {
	svc := newTestService()
	lt, _ := svc.OrderTest(context.Background(), uuid.New(), uuid.New(), "CBC")
	svc.Cancel(context.Background(), lt.ID)

	if _, err := svc.Start(context.Background(), lt.ID); err == nil {
		t.Error("expected cancelled test to be immutable")
	}
}

func TestListByStatus_Invalid(t *testing.T) {
	svc := newTestService()
	if _, _, err := svc.ListByStatus(context.Background(), "bogus", 10, 0); err == nil {
		t.Error("expected error for invalid status")
	}
}

func TestListByPatient(t *testing.T) {
	svc := newTestService()
	patientID := uuid.New()
	svc.OrderTest(context.Background(), patientID, uuid.New(), "CBC")
	svc.OrderTest(context.Background(), patientID, uuid.New(), "Lipid Panel")

	items, total, err := svc.ListByPatient(context.Background(), patientID, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("expected 2 tests, got %d/%d", len(items), total)
	}
}
