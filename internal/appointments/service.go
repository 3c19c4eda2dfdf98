package appointments

import (
	"context"
	"time"

	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/masterdata/services"
)

// RepositoryPort is the data access surface used by the service.
type RepositoryPort interface {
	ListAppointments(ctx context.Context, filter ListFilter) ([]Appointment, int, error)
	GetAppointment(ctx context.Context, id int64) (Appointment, error)
	CreateAppointment(ctx context.Context, a Appointment) (Appointment, error)
	UpdateStatus(ctx context.Context, id int64, from, to Status) error
	OverlappingCount(ctx context.Context, employeeID int64, start, end time.Time) (int, error)
}

// CatalogPort resolves treatment prices and durations at booking time.
type CatalogPort interface {
	Get(ctx context.Context, id int64) (services.Service, error)
}

// AvailabilityPort checks employee schedule exceptions.
type AvailabilityPort interface {
	Available(ctx context.Context, employeeID int64, at time.Time) (bool, error)
}

// ReminderEnqueuer schedules the confirmation reminder job.
type ReminderEnqueuer interface {
	EnqueueAppointmentReminder(ctx context.Context, appointmentID int64, startTime time.Time) error
}

type Service struct {
	repo         RepositoryPort
	catalog      CatalogPort
	availability AvailabilityPort
	reminders    ReminderEnqueuer
	now          func() time.Time
}

func NewService(repo RepositoryPort, catalog CatalogPort, availability AvailabilityPort, reminders ReminderEnqueuer) *Service {
	return &Service{
		repo:         repo,
		catalog:      catalog,
		availability: availability,
		reminders:    reminders,
		now:          time.Now,
	}
}

type CreateInput struct {
	ClientID   int64
	EmployeeID int64
	StartTime  time.Time
	ServiceIDs []int64
}

// Create books a new appointment in PENDING state. The total and the end
// time derive from the catalog prices and durations of the requested
// services; the slot must be free of novelties and other appointments.
func (s *Service) Create(ctx context.Context, in CreateInput) (Appointment, error) {
	if len(in.ServiceIDs) == 0 {
		return Appointment{}, ErrNoServices
	}
	if in.StartTime.Before(s.now()) {
		return Appointment{}, ErrPastStart
	}

	var (
		lines    []AppointmentLine
		total    float64
		duration time.Duration
	)
	for _, serviceID := range in.ServiceIDs {
		svc, err := s.catalog.Get(ctx, serviceID)
		if err != nil || !svc.IsActive {
			return Appointment{}, ErrServiceInactive
		}
		lines = append(lines, AppointmentLine{
			ServiceID:   svc.ID,
			ServiceName: svc.Name,
			Price:       svc.Price,
		})
		total += svc.Price
		duration += time.Duration(svc.DurationMinutes) * time.Minute
	}
	end := in.StartTime.Add(duration)

	free, err := s.availability.Available(ctx, in.EmployeeID, in.StartTime)
	if err != nil {
		return Appointment{}, err
	}
	if !free {
		return Appointment{}, ErrEmployeeBusy
	}
	overlapping, err := s.repo.OverlappingCount(ctx, in.EmployeeID, in.StartTime, end)
	if err != nil {
		return Appointment{}, err
	}
	if overlapping > 0 {
		return Appointment{}, ErrEmployeeBusy
	}

	return s.repo.CreateAppointment(ctx, Appointment{
		ClientID:   in.ClientID,
		EmployeeID: in.EmployeeID,
		StartTime:  in.StartTime,
		EndTime:    end,
		Status:     StatusPending,
		Total:      total,
		Lines:      lines,
	})
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Appointment, int, error) {
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.repo.ListAppointments(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id int64) (Appointment, error) {
	return s.repo.GetAppointment(ctx, id)
}

// Confirm moves PENDING to CONFIRMED and schedules the reminder email.
// A reminder enqueue failure does not undo the confirmation; the error
// is returned so callers can log it.
func (s *Service) Confirm(ctx context.Context, id int64) (Appointment, error) {
	a, err := s.transition(ctx, id, StatusConfirmed)
	if err != nil {
		return Appointment{}, err
	}
	if s.reminders != nil {
		if err := s.reminders.EnqueueAppointmentReminder(ctx, a.ID, a.StartTime); err != nil {
			return a, err
		}
	}
	return a, nil
}

func (s *Service) Complete(ctx context.Context, id int64) (Appointment, error) {
	return s.transition(ctx, id, StatusCompleted)
}

func (s *Service) Cancel(ctx context.Context, id int64) (Appointment, error) {
	return s.transition(ctx, id, StatusCancelled)
}

func (s *Service) transition(ctx context.Context, id int64, to Status) (Appointment, error) {
	a, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if !a.Status.CanTransition(to) {
		return Appointment{}, ErrInvalidTransition
	}
	if err := s.repo.UpdateStatus(ctx, id, a.Status, to); err != nil {
		return Appointment{}, err
	}
	a.Status = to
	return a, nil
}
