package dashboard

import (
	"context"
	"strconv"
	"time"
)

// RepositoryPort runs the aggregate queries behind the dashboard.
type RepositoryPort interface {
	SalesPerMonth(ctx context.Context, months int) ([]MonthlySales, error)
	TopServices(ctx context.Context, since time.Time, limit int) ([]TopService, error)
	CountAppointments(ctx context.Context, since time.Time) (AppointmentCounts, error)
}

// Summary is the aggregate payload the SPA dashboard renders.
type Summary struct {
	SalesPerMonth []MonthlySales    `json:"sales_per_month"`
	TopServices   []TopService      `json:"top_services"`
	Appointments  AppointmentCounts `json:"appointments"`
	GeneratedAt   time.Time         `json:"generated_at"`
}

type Service struct {
	repo  RepositoryPort
	cache *Cache
}

func NewService(repo RepositoryPort, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Summary assembles the dashboard aggregates, served from Redis when
// fresh enough.
func (s *Service) Summary(ctx context.Context, months int) (Summary, error) {
	if months < 1 || months > 24 {
		months = 6
	}
	key, err := s.cache.BuildKey(ctx, "dashboard", "summary", strconv.Itoa(months))
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	err = s.cache.FetchJSON(ctx, key, &summary, func(ctx context.Context) (any, error) {
		since := time.Now().AddDate(0, -months, 0)
		sales, err := s.repo.SalesPerMonth(ctx, months)
		if err != nil {
			return nil, err
		}
		top, err := s.repo.TopServices(ctx, since, 5)
		if err != nil {
			return nil, err
		}
		counts, err := s.repo.CountAppointments(ctx, since)
		if err != nil {
			return nil, err
		}
		if sales == nil {
			sales = []MonthlySales{}
		}
		if top == nil {
			top = []TopService{}
		}
		return Summary{
			SalesPerMonth: sales,
			TopServices:   top,
			Appointments:  counts,
			GeneratedAt:   time.Now().UTC(),
		}, nil
	})
	return summary, err
}

// Invalidate drops cached aggregates, called after sales or appointment
// mutations.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}
