package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	catalogsvc "github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/masterdata/services"
	mdshared "github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/masterdata/shared"
)

type mockRepository struct {
	appointments map[int64]Appointment
	nextID       int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{appointments: map[int64]Appointment{}, nextID: 1}
}

func (m *mockRepository) ListAppointments(_ context.Context, _ ListFilter) ([]Appointment, int, error) {
	out := make([]Appointment, 0, len(m.appointments))
	for _, a := range m.appointments {
		out = append(out, a)
	}
	return out, len(out), nil
}

func (m *mockRepository) GetAppointment(_ context.Context, id int64) (Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return Appointment{}, ErrNotFound
	}
	return a, nil
}

func (m *mockRepository) CreateAppointment(_ context.Context, a Appointment) (Appointment, error) {
	a.ID = m.nextID
	m.nextID++
	m.appointments[a.ID] = a
	return a, nil
}

func (m *mockRepository) UpdateStatus(_ context.Context, id int64, from, to Status) error {
	a, ok := m.appointments[id]
	if !ok || a.Status != from {
		return ErrInvalidTransition
	}
	a.Status = to
	m.appointments[id] = a
	return nil
}

func (m *mockRepository) OverlappingCount(_ context.Context, employeeID int64, start, end time.Time) (int, error) {
	count := 0
	for _, a := range m.appointments {
		if a.EmployeeID != employeeID || a.Status == StatusCancelled {
			continue
		}
		if a.StartTime.Before(end) && a.EndTime.After(start) {
			count++
		}
	}
	return count, nil
}

type mockCatalog struct {
	services map[int64]catalogsvc.Service
}

func (m *mockCatalog) Get(_ context.Context, id int64) (catalogsvc.Service, error) {
	s, ok := m.services[id]
	if !ok {
		return catalogsvc.Service{}, mdshared.ErrNotFound
	}
	return s, nil
}

type mockAvailability struct {
	busy map[int64]bool
}

func (m *mockAvailability) Available(_ context.Context, employeeID int64, _ time.Time) (bool, error) {
	return !m.busy[employeeID], nil
}

type mockEnqueuer struct {
	enqueued []int64
}

func (m *mockEnqueuer) EnqueueAppointmentReminder(_ context.Context, appointmentID int64, _ time.Time) error {
	m.enqueued = append(m.enqueued, appointmentID)
	return nil
}

func newTestService() (*Service, *mockRepository, *mockEnqueuer) {
	repo := newMockRepository()
	catalog := &mockCatalog{services: map[int64]catalogsvc.Service{
		1: {ID: 1, Name: "Corte", Price: 30000, DurationMinutes: 45, IsActive: true},
		2: {ID: 2, Name: "Tinte", Price: 80000, DurationMinutes: 90, IsActive: true},
		3: {ID: 3, Name: "Retirado", Price: 10000, DurationMinutes: 30, IsActive: false},
	}}
	availability := &mockAvailability{busy: map[int64]bool{}}
	enqueuer := &mockEnqueuer{}
	svc := NewService(repo, catalog, availability, enqueuer)
	svc.now = func() time.Time { return time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC) }
	return svc, repo, enqueuer
}

func futureSlot() time.Time {
	return time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)
}

func TestCreateComputesTotalAndEnd(t *testing.T) {
	svc, _, _ := newTestService()

	a, err := svc.Create(context.Background(), CreateInput{
		ClientID:   1,
		EmployeeID: 1,
		StartTime:  futureSlot(),
		ServiceIDs: []int64{1, 2},
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, a.Status)
	require.Equal(t, float64(110000), a.Total)
	require.Equal(t, futureSlot().Add(135*time.Minute), a.EndTime)
	require.Len(t, a.Lines, 2)
}

func TestCreateRejectsInactiveService(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateInput{
		ClientID:   1,
		EmployeeID: 1,
		StartTime:  futureSlot(),
		ServiceIDs: []int64{3},
	})
	require.ErrorIs(t, err, ErrServiceInactive)
}

func TestCreateRejectsEmptyServices(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateInput{ClientID: 1, EmployeeID: 1, StartTime: futureSlot()})
	require.ErrorIs(t, err, ErrNoServices)
}

func TestCreateRejectsPastStart(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateInput{
		ClientID:   1,
		EmployeeID: 1,
		StartTime:  time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
		ServiceIDs: []int64{1},
	})
	require.ErrorIs(t, err, ErrPastStart)
}

func TestCreateRejectsDoubleBooking(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateInput{
		ClientID:   1,
		EmployeeID: 1,
		StartTime:  futureSlot(),
		ServiceIDs: []int64{2},
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInput{
		ClientID:   2,
		EmployeeID: 1,
		StartTime:  futureSlot().Add(30 * time.Minute),
		ServiceIDs: []int64{1},
	})
	require.ErrorIs(t, err, ErrEmployeeBusy)
}

func TestConfirmEnqueuesReminder(t *testing.T) {
	svc, _, enqueuer := newTestService()

	a, err := svc.Create(context.Background(), CreateInput{
		ClientID:   1,
		EmployeeID: 1,
		StartTime:  futureSlot(),
		ServiceIDs: []int64{1},
	})
	require.NoError(t, err)

	confirmed, err := svc.Confirm(context.Background(), a.ID)
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, confirmed.Status)
	require.Equal(t, []int64{a.ID}, enqueuer.enqueued)
}

func TestStatusMachine(t *testing.T) {
	svc, _, _ := newTestService()

	a, err := svc.Create(context.Background(), CreateInput{
		ClientID:   1,
		EmployeeID: 1,
		StartTime:  futureSlot(),
		ServiceIDs: []int64{1},
	})
	require.NoError(t, err)

	// PENDING cannot complete directly.
	_, err = svc.Complete(context.Background(), a.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Confirm(context.Background(), a.ID)
	require.NoError(t, err)

	completed, err := svc.Complete(context.Background(), a.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, completed.Status)

	// Terminal state rejects further moves.
	_, err = svc.Cancel(context.Background(), a.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelFromPending(t *testing.T) {
	svc, repo, _ := newTestService()

	a, err := svc.Create(context.Background(), CreateInput{
		ClientID:   1,
		EmployeeID: 1,
		StartTime:  futureSlot(),
		ServiceIDs: []int64{1},
	})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), a.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)
	require.Equal(t, StatusCancelled, repo.appointments[a.ID].Status)
}
