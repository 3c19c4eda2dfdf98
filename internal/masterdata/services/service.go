package services

import (
	"context"

	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/masterdata/shared"
)

// Catalog holds the business rules for the treatment catalog. The name
// avoids clashing with the Service entity itself.
type Catalog struct {
	repo Repository
}

func NewCatalog(repo Repository) *Catalog {
	return &Catalog{repo: repo}
}

func (c *Catalog) List(ctx context.Context, filters shared.ListFilters) ([]Service, int, error) {
	return c.repo.List(ctx, filters)
}

func (c *Catalog) Get(ctx context.Context, id int64) (Service, error) {
	if id <= 0 {
		return Service{}, shared.ErrInvalidID
	}
	return c.repo.Get(ctx, id)
}

func (c *Catalog) Create(ctx context.Context, service Service) (Service, error) {
	if err := c.validate(service); err != nil {
		return Service{}, err
	}
	return c.repo.Create(ctx, service)
}

func (c *Catalog) Update(ctx context.Context, id int64, service Service) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := c.validate(service); err != nil {
		return err
	}
	return c.repo.Update(ctx, id, service)
}

func (c *Catalog) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return c.repo.Delete(ctx, id)
}
