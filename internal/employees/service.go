package employees

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RepositoryPort is the data access surface used by the service.
type RepositoryPort interface {
	ListEmployees(ctx context.Context, search string, active *bool, limit, offset int) ([]Employee, int, error)
	GetEmployee(ctx context.Context, id int64) (Employee, error)
	CreateEmployee(ctx context.Context, e Employee) (Employee, error)
	UpdateEmployee(ctx context.Context, e Employee) error
	ListNovelties(ctx context.Context, employeeID int64) ([]Novelty, error)
	OverlappingNovelties(ctx context.Context, employeeID int64, start, end time.Time) ([]Novelty, error)
	CreateNovelty(ctx context.Context, n Novelty) (Novelty, error)
	DeleteNovelty(ctx context.Context, id int64) error
}

type Service struct {
	repo RepositoryPort
}

func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

type ListInput struct {
	Search string
	Active *bool
	Page   int
	Limit  int
}

func (s *Service) ListEmployees(ctx context.Context, in ListInput) ([]Employee, int, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 {
		in.Limit = 10
	}
	if in.Limit > 100 {
		in.Limit = 100
	}
	return s.repo.ListEmployees(ctx, in.Search, in.Active, in.Limit, (in.Page-1)*in.Limit)
}

func (s *Service) GetEmployee(ctx context.Context, id int64) (Employee, error) {
	return s.repo.GetEmployee(ctx, id)
}

func (s *Service) CreateEmployee(ctx context.Context, e Employee) (Employee, error) {
	if err := validateEmployee(e); err != nil {
		return Employee{}, err
	}
	e.Email = strings.ToLower(strings.TrimSpace(e.Email))
	return s.repo.CreateEmployee(ctx, e)
}

func (s *Service) UpdateEmployee(ctx context.Context, e Employee) (Employee, error) {
	if err := validateEmployee(e); err != nil {
		return Employee{}, err
	}
	e.Email = strings.ToLower(strings.TrimSpace(e.Email))
	if err := s.repo.UpdateEmployee(ctx, e); err != nil {
		return Employee{}, err
	}
	return s.repo.GetEmployee(ctx, e.ID)
}

// Deactivate flips the active flag, keeping appointment history intact.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	e, err := s.repo.GetEmployee(ctx, id)
	if err != nil {
		return err
	}
	if !e.IsActive {
		return nil
	}
	e.IsActive = false
	return s.repo.UpdateEmployee(ctx, e)
}

func (s *Service) ListNovelties(ctx context.Context, employeeID int64) ([]Novelty, error) {
	if _, err := s.repo.GetEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.repo.ListNovelties(ctx, employeeID)
}

// CreateNovelty registers a schedule exception. Ranges that intersect an
// existing novelty for the same employee are rejected.
func (s *Service) CreateNovelty(ctx context.Context, n Novelty) (Novelty, error) {
	if err := validateNovelty(n); err != nil {
		return Novelty{}, err
	}
	if _, err := s.repo.GetEmployee(ctx, n.EmployeeID); err != nil {
		return Novelty{}, err
	}
	existing, err := s.repo.OverlappingNovelties(ctx, n.EmployeeID, n.StartDate, n.EndDate)
	if err != nil {
		return Novelty{}, err
	}
	for _, other := range existing {
		if hoursOverlap(n, other) {
			return Novelty{}, ErrNoveltyOverlap
		}
	}
	return s.repo.CreateNovelty(ctx, n)
}

func (s *Service) DeleteNovelty(ctx context.Context, id int64) error {
	return s.repo.DeleteNovelty(ctx, id)
}

// Available reports whether the employee is free at the given moment,
// i.e. no novelty covers the date and hour.
func (s *Service) Available(ctx context.Context, employeeID int64, at time.Time) (bool, error) {
	day := at.Truncate(24 * time.Hour)
	novelties, err := s.repo.OverlappingNovelties(ctx, employeeID, day, day)
	if err != nil {
		return false, err
	}
	hour := at.Format("15:04")
	for _, n := range novelties {
		if hour >= n.StartHour && hour < n.EndHour {
			return false, nil
		}
	}
	return true, nil
}

func validateEmployee(e Employee) error {
	if strings.TrimSpace(e.FirstName) == "" || strings.TrimSpace(e.LastName) == "" {
		return fmt.Errorf("%w: first and last name are required", ErrInvalidEmployee)
	}
	if strings.TrimSpace(e.DocumentNumber) == "" {
		return fmt.Errorf("%w: document number is required", ErrInvalidEmployee)
	}
	return nil
}

func validateNovelty(n Novelty) error {
	if n.EndDate.Before(n.StartDate) {
		return fmt.Errorf("%w: end date precedes start date", ErrInvalidNovelty)
	}
	if !validHour(n.StartHour) || !validHour(n.EndHour) {
		return fmt.Errorf("%w: hours must be HH:MM", ErrInvalidNovelty)
	}
	if n.EndHour <= n.StartHour {
		return fmt.Errorf("%w: end hour must be after start hour", ErrInvalidNovelty)
	}
	return nil
}

func validHour(hour string) bool {
	_, err := time.Parse("15:04", hour)
	return err == nil
}

// hoursOverlap reports whether two novelties with intersecting date
// ranges also intersect on the daily hour window.
func hoursOverlap(a, b Novelty) bool {
	return a.StartHour < b.EndHour && b.StartHour < a.EndHour
}
