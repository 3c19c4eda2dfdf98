package employees

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	employees map[int64]Employee
	novelties map[int64]Novelty
	nextEmpID int64
	nextNovID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		employees: map[int64]Employee{},
		novelties: map[int64]Novelty{},
		nextEmpID: 1,
		nextNovID: 1,
	}
}

func (m *mockRepository) ListEmployees(_ context.Context, _ string, _ *bool, _, _ int) ([]Employee, int, error) {
	out := make([]Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, e)
	}
	return out, len(out), nil
}

func (m *mockRepository) GetEmployee(_ context.Context, id int64) (Employee, error) {
	e, ok := m.employees[id]
	if !ok {
		return Employee{}, ErrNotFound
	}
	return e, nil
}

func (m *mockRepository) CreateEmployee(_ context.Context, e Employee) (Employee, error) {
	e.ID = m.nextEmpID
	m.nextEmpID++
	m.employees[e.ID] = e
	return e, nil
}

func (m *mockRepository) UpdateEmployee(_ context.Context, e Employee) error {
	if _, ok := m.employees[e.ID]; !ok {
		return ErrNotFound
	}
	m.employees[e.ID] = e
	return nil
}

func (m *mockRepository) ListNovelties(_ context.Context, employeeID int64) ([]Novelty, error) {
	var out []Novelty
	for _, n := range m.novelties {
		if n.EmployeeID == employeeID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockRepository) OverlappingNovelties(_ context.Context, employeeID int64, start, end time.Time) ([]Novelty, error) {
	var out []Novelty
	for _, n := range m.novelties {
		if n.EmployeeID != employeeID {
			continue
		}
		if !n.StartDate.After(end) && !n.EndDate.Before(start) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockRepository) CreateNovelty(_ context.Context, n Novelty) (Novelty, error) {
	n.ID = m.nextNovID
	m.nextNovID++
	m.novelties[n.ID] = n
	return n, nil
}

func (m *mockRepository) DeleteNovelty(_ context.Context, id int64) error {
	if _, ok := m.novelties[id]; !ok {
		return ErrNotFound
	}
	delete(m.novelties, id)
	return nil
}

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func seedEmployee(t *testing.T, svc *Service) Employee {
	t.Helper()
	e, err := svc.CreateEmployee(context.Background(), Employee{
		FirstName:      "Laura",
		LastName:       "Mejia",
		DocumentType:   "CC",
		DocumentNumber: "100200300",
		IsActive:       true,
	})
	require.NoError(t, err)
	return e
}

func TestCreateNoveltyRejectsOverlap(t *testing.T) {
	svc := NewService(newMockRepository())
	emp := seedEmployee(t, svc)

	_, err := svc.CreateNovelty(context.Background(), Novelty{
		EmployeeID: emp.ID,
		StartDate:  day("2026-09-01"),
		EndDate:    day("2026-09-05"),
		StartHour:  "09:00",
		EndHour:    "12:00",
	})
	require.NoError(t, err)

	_, err = svc.CreateNovelty(context.Background(), Novelty{
		EmployeeID: emp.ID,
		StartDate:  day("2026-09-04"),
		EndDate:    day("2026-09-06"),
		StartHour:  "11:00",
		EndHour:    "14:00",
	})
	require.ErrorIs(t, err, ErrNoveltyOverlap)
}

func TestCreateNoveltyAllowsDisjointHours(t *testing.T) {
	svc := NewService(newMockRepository())
	emp := seedEmployee(t, svc)

	_, err := svc.CreateNovelty(context.Background(), Novelty{
		EmployeeID: emp.ID,
		StartDate:  day("2026-09-01"),
		EndDate:    day("2026-09-05"),
		StartHour:  "09:00",
		EndHour:    "12:00",
	})
	require.NoError(t, err)

	// Same dates but the hour windows do not intersect.
	_, err = svc.CreateNovelty(context.Background(), Novelty{
		EmployeeID: emp.ID,
		StartDate:  day("2026-09-02"),
		EndDate:    day("2026-09-03"),
		StartHour:  "14:00",
		EndHour:    "16:00",
	})
	require.NoError(t, err)
}

func TestCreateNoveltyValidation(t *testing.T) {
	svc := NewService(newMockRepository())
	emp := seedEmployee(t, svc)

	_, err := svc.CreateNovelty(context.Background(), Novelty{
		EmployeeID: emp.ID,
		StartDate:  day("2026-09-05"),
		EndDate:    day("2026-09-01"),
		StartHour:  "09:00",
		EndHour:    "12:00",
	})
	require.ErrorIs(t, err, ErrInvalidNovelty)

	_, err = svc.CreateNovelty(context.Background(), Novelty{
		EmployeeID: emp.ID,
		StartDate:  day("2026-09-01"),
		EndDate:    day("2026-09-02"),
		StartHour:  "12:00",
		EndHour:    "09:00",
	})
	require.ErrorIs(t, err, ErrInvalidNovelty)
}

func TestCreateNoveltyUnknownEmployee(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.CreateNovelty(context.Background(), Novelty{
		EmployeeID: 99,
		StartDate:  day("2026-09-01"),
		EndDate:    day("2026-09-02"),
		StartHour:  "09:00",
		EndHour:    "12:00",
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAvailableHonorsNovelties(t *testing.T) {
	svc := NewService(newMockRepository())
	emp := seedEmployee(t, svc)

	_, err := svc.CreateNovelty(context.Background(), Novelty{
		EmployeeID: emp.ID,
		StartDate:  day("2026-09-01"),
		EndDate:    day("2026-09-01"),
		StartHour:  "09:00",
		EndHour:    "12:00",
	})
	require.NoError(t, err)

	busy, err := svc.Available(context.Background(), emp.ID, day("2026-09-01").Add(10*time.Hour))
	require.NoError(t, err)
	require.False(t, busy)

	free, err := svc.Available(context.Background(), emp.ID, day("2026-09-01").Add(13*time.Hour))
	require.NoError(t, err)
	require.True(t, free)
}
