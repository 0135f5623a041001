package labtest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/clinicore/clinicore/internal/domain/notification"
)

type Service struct {
	tests    Repository
	notifier *notification.Service
}

// NewService takes the notifier optionally; passing nil skips the
// patient result notification.
func NewService(tests Repository, notifier *notification.Service) *Service {
	return &Service{tests: tests, notifier: notifier}
}

func (s *Service) OrderTest(ctx context.Context, patientID, orderedByID uuid.UUID, testType string) (*LabTest, error) {
	if patientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if orderedByID == uuid.Nil {
		return nil, fmt.Errorf("ordered_by_id is required")
	}
	if testType == "" {
		return nil, fmt.Errorf("test_type is required")
	}
	t := &LabTest{
		PatientID:   patientID,
		OrderedByID: orderedByID,
		TestType:    testType,
		Status:      StatusOrdered,
	}
	if err := s.tests.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*LabTest, error) {
	return s.tests.GetByID(ctx, id)
}

func (s *Service) Start(ctx context.Context, id uuid.UUID) (*LabTest, error) {
	return s.transition(ctx, id, StatusInProgress)
}

// Complete records the result and terminates the test. A result is
// required; there is no completed-without-result state.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, result string) (*LabTest, error) {
	if result == "" {
		return nil, fmt.Errorf("result is required to complete a test")
	}
	t, err := s.tests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(t.Status, StatusCompleted) {
		return nil, fmt.Errorf("cannot move test from %s to %s", t.Status, StatusCompleted)
	}
	now := time.Now()
	t.Status = StatusCompleted
	t.Result = &result
	t.CompletedAt = &now
	if err := s.tests.Update(ctx, t); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		if _, err := s.notifier.Notify(ctx, t.PatientID, notification.KindLabResult,
			"Lab result ready", fmt.Sprintf("Your %s result is available.", t.TestType)); err != nil {
			log.Warn().Err(err).Str("test_id", t.ID.String()).
				Msg("failed to notify patient of lab result")
		}
	}
	return t, nil
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*LabTest, error) {
	return s.transition(ctx, id, StatusCancelled)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to string) (*LabTest, error) {
	t, err := s.tests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(t.Status, to) {
		return nil, fmt.Errorf("cannot move test from %s to %s", t.Status, to)
	}
	t.Status = to
	if err := s.tests.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*LabTest, int, error) {
	return s.tests.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*LabTest, int, error) {
	if status != StatusOrdered && status != StatusInProgress &&
		status != StatusCompleted && status != StatusCancelled {
		return nil, 0, fmt.Errorf("invalid status %q", status)
	}
	return s.tests.ListByStatus(ctx, status, limit, offset)
}
