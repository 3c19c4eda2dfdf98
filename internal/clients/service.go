package clients

import (
	"context"
	"fmt"
	"strings"
)

// RepositoryPort is the data access surface used by the service.
type RepositoryPort interface {
	ListClients(ctx context.Context, search string, active *bool, limit, offset int) ([]Client, int, error)
	GetClient(ctx context.Context, id int64) (Client, error)
	CreateClient(ctx context.Context, c Client) (Client, error)
	UpdateClient(ctx context.Context, c Client) error
	DeleteClient(ctx context.Context, id int64) error
}

type Service struct {
	repo RepositoryPort
}

func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListInput bounds page parameters.
type ListInput struct {
	Search string
	Active *bool
	Page   int
	Limit  int
}

func (s *Service) ListClients(ctx context.Context, in ListInput) ([]Client, int, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 {
		in.Limit = 10
	}
	if in.Limit > 100 {
		in.Limit = 100
	}
	return s.repo.ListClients(ctx, in.Search, in.Active, in.Limit, (in.Page-1)*in.Limit)
}

func (s *Service) GetClient(ctx context.Context, id int64) (Client, error) {
	return s.repo.GetClient(ctx, id)
}

func (s *Service) CreateClient(ctx context.Context, c Client) (Client, error) {
	if err := validate(c); err != nil {
		return Client{}, err
	}
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	return s.repo.CreateClient(ctx, c)
}

func (s *Service) UpdateClient(ctx context.Context, c Client) (Client, error) {
	if err := validate(c); err != nil {
		return Client{}, err
	}
	current, err := s.repo.GetClient(ctx, c.ID)
	if err != nil {
		return Client{}, err
	}
	c.UserID = current.UserID
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	if err := s.repo.UpdateClient(ctx, c); err != nil {
		return Client{}, err
	}
	return s.repo.GetClient(ctx, c.ID)
}

// Deactivate flips the active flag instead of deleting, preserving sale
// and appointment history.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	c, err := s.repo.GetClient(ctx, id)
	if err != nil {
		return err
	}
	if !c.IsActive {
		return nil
	}
	c.IsActive = false
	return s.repo.UpdateClient(ctx, c)
}

// DeleteClient removes a client outright. Clients with history fail with
// ErrHasHistory; callers should fall back to Deactivate.
func (s *Service) DeleteClient(ctx context.Context, id int64) error {
	return s.repo.DeleteClient(ctx, id)
}

func validate(c Client) error {
	if strings.TrimSpace(c.FirstName) == "" || strings.TrimSpace(c.LastName) == "" {
		return fmt.Errorf("%w: first and last name are required", ErrInvalidClient)
	}
	if strings.TrimSpace(c.DocumentNumber) == "" {
		return fmt.Errorf("%w: document number is required", ErrInvalidClient)
	}
	return nil
}
