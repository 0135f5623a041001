package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/clinicore/clinicore/internal/domain/reception"
	"github.com/clinicore/clinicore/internal/platform/metrics"
)

type Service struct {
	appointments Repository
	workload     *reception.Workload
	metrics      *metrics.Metrics
}

// NewService takes the workload counter optionally; passing nil skips
// receptionist bookkeeping.
func NewService(appointments Repository, workload *reception.Workload, m *metrics.Metrics) *Service {
	return &Service{appointments: appointments, workload: workload, metrics: m}
}

// Book creates a scheduled appointment. When a receptionist books on a
// patient's behalf, bookedBy carries their id and the daily workload
// counter is incremented. A counter failure never fails the booking.
func (s *Service) Book(ctx context.Context, a *Appointment, bookedBy *uuid.UUID) error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if a.ScheduledAt.IsZero() {
		return fmt.Errorf("scheduled_at is required")
	}
	if a.ScheduledAt.Before(time.Now()) {
		return fmt.Errorf("scheduled_at must be in the future")
	}
	a.Status = StatusScheduled
	a.BookedByID = bookedBy
	if err := s.appointments.Create(ctx, a); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.AppointmentsBooked.Inc()
	}
	if bookedBy != nil && s.workload != nil {
		if _, err := s.workload.Increment(ctx, *bookedBy, time.Now()); err != nil {
			log.Warn().Err(err).Str("receptionist_id", bookedBy.String()).
				Msg("failed to bump workload counter")
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// Transition moves an appointment through its lifecycle. Completed and
// cancelled appointments never change again.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, to string) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(a.Status, to) {
		return nil, fmt.Errorf("cannot move appointment from %s to %s", a.Status, to)
	}
	a.Status = to
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.Transition(ctx, id, StatusConfirmed)
}

func (s *Service) Complete(ctx context.Context, id uuid.UUID, notes string) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(a.Status, StatusCompleted) {
		return nil, fmt.Errorf("cannot move appointment from %s to %s", a.Status, StatusCompleted)
	}
	a.Status = StatusCompleted
	if notes != "" {
		a.Notes = &notes
	}
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.Transition(ctx, id, StatusCancelled)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByDoctor(ctx, doctorID, limit, offset)
}
