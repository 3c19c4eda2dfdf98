package sales

import (
	"context"
	"fmt"
	"strconv"

	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/shared"
)

// RepositoryPort is the data access surface used by the service.
type RepositoryPort interface {
	ListSales(ctx context.Context, filter ListFilter) ([]Sale, int, error)
	GetSale(ctx context.Context, id int64) (Sale, error)
	CreateSale(ctx context.Context, s Sale) (Sale, error)
	VoidSale(ctx context.Context, id int64) error
}

// IdempotencyPort guards against duplicate submissions.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// AuditPort records sale mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

const idempotencyModule = "sales"

type Service struct {
	repo        RepositoryPort
	idempotency IdempotencyPort
	audit       AuditPort
}

func NewService(repo RepositoryPort, idempotency IdempotencyPort, audit AuditPort) *Service {
	return &Service{repo: repo, idempotency: idempotency, audit: audit}
}

type CreateInput struct {
	ClientID       int64
	SellerUserID   int64
	IdempotencyKey string
	Products       []ProductLine
	Services       []ServiceLine
}

// Create registers a sale. The idempotency key is claimed first so a
// duplicate submission fails fast; on any later failure the claim is
// released so the client can retry.
func (s *Service) Create(ctx context.Context, in CreateInput) (Sale, error) {
	if len(in.Products) == 0 && len(in.Services) == 0 {
		return Sale{}, ErrEmptySale
	}
	var total float64
	for _, line := range in.Products {
		if line.Quantity <= 0 || line.UnitPrice < 0 {
			return Sale{}, fmt.Errorf("%w: product %d", ErrInvalidLine, line.ProductID)
		}
		total += float64(line.Quantity) * line.UnitPrice
	}
	for _, line := range in.Services {
		if line.Price < 0 {
			return Sale{}, fmt.Errorf("%w: service %d", ErrInvalidLine, line.ServiceID)
		}
		total += line.Price
	}

	if in.IdempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, in.IdempotencyKey, idempotencyModule); err != nil {
			return Sale{}, err
		}
	}

	sale, err := s.repo.CreateSale(ctx, Sale{
		ClientID:     in.ClientID,
		SellerUserID: in.SellerUserID,
		Status:       SaleActive,
		Total:        total,
		Products:     in.Products,
		Services:     in.Services,
	})
	if err != nil {
		if in.IdempotencyKey != "" && s.idempotency != nil {
			_ = s.idempotency.Delete(ctx, in.IdempotencyKey)
		}
		return Sale{}, err
	}

	if s.audit != nil {
		if err := s.audit.Record(ctx, shared.AuditLog{
			ActorID:  in.SellerUserID,
			Action:   "sale.created",
			Entity:   "venta",
			EntityID: strconv.FormatInt(sale.ID, 10),
			Meta: map[string]any{
				"total":         sale.Total,
				"product_lines": len(sale.Products),
				"service_lines": len(sale.Services),
			},
		}); err != nil {
			return sale, err
		}
	}
	return sale, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Sale, int, error) {
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.repo.ListSales(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id int64) (Sale, error) {
	return s.repo.GetSale(ctx, id)
}

// Void annuls the sale, restores stock and records the actor.
func (s *Service) Void(ctx context.Context, id, actorID int64) (Sale, error) {
	if err := s.repo.VoidSale(ctx, id); err != nil {
		return Sale{}, err
	}
	if s.audit != nil {
		if err := s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "sale.voided",
			Entity:   "venta",
			EntityID: strconv.FormatInt(id, 10),
		}); err != nil {
			return Sale{}, err
		}
	}
	return s.repo.GetSale(ctx, id)
}
