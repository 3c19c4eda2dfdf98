package purchases

import (
	"context"
	"fmt"
	"strconv"

	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/shared"
)

// RepositoryPort is the data access surface used by the service.
type RepositoryPort interface {
	ListPurchases(ctx context.Context, filter ListFilter) ([]Purchase, int, error)
	GetPurchase(ctx context.Context, id int64) (Purchase, error)
	CreatePurchase(ctx context.Context, p Purchase) (Purchase, error)
	VoidPurchase(ctx context.Context, id int64) error
}

// IdempotencyPort guards against duplicate submissions.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// AuditPort records purchase mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

const idempotencyModule = "purchases"

type Service struct {
	repo        RepositoryPort
	idempotency IdempotencyPort
	audit       AuditPort
}

func NewService(repo RepositoryPort, idempotency IdempotencyPort, audit AuditPort) *Service {
	return &Service{repo: repo, idempotency: idempotency, audit: audit}
}

type CreateInput struct {
	SupplierID     int64
	BuyerUserID    int64
	IdempotencyKey string
	Lines          []PurchaseLine
}

// Create registers a stock intake. Duplicate idempotency keys fail fast;
// a failed intake releases its key for retry.
func (s *Service) Create(ctx context.Context, in CreateInput) (Purchase, error) {
	if len(in.Lines) == 0 {
		return Purchase{}, ErrEmptyPurchase
	}
	var total float64
	for _, line := range in.Lines {
		if line.Quantity <= 0 || line.UnitCost < 0 {
			return Purchase{}, fmt.Errorf("%w: product %d", ErrInvalidLine, line.ProductID)
		}
		total += float64(line.Quantity) * line.UnitCost
	}

	if in.IdempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, in.IdempotencyKey, idempotencyModule); err != nil {
			return Purchase{}, err
		}
	}

	purchase, err := s.repo.CreatePurchase(ctx, Purchase{
		SupplierID:  in.SupplierID,
		BuyerUserID: in.BuyerUserID,
		Status:      PurchaseActive,
		Total:       total,
		Lines:       in.Lines,
	})
	if err != nil {
		if in.IdempotencyKey != "" && s.idempotency != nil {
			_ = s.idempotency.Delete(ctx, in.IdempotencyKey)
		}
		return Purchase{}, err
	}

	if s.audit != nil {
		if err := s.audit.Record(ctx, shared.AuditLog{
			ActorID:  in.BuyerUserID,
			Action:   "purchase.created",
			Entity:   "compra",
			EntityID: strconv.FormatInt(purchase.ID, 10),
			Meta: map[string]any{
				"total": purchase.Total,
				"lines": len(purchase.Lines),
			},
		}); err != nil {
			return purchase, err
		}
	}
	return purchase, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Purchase, int, error) {
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.repo.ListPurchases(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id int64) (Purchase, error) {
	return s.repo.GetPurchase(ctx, id)
}

// Void annuls the intake and removes its units from stock.
func (s *Service) Void(ctx context.Context, id, actorID int64) (Purchase, error) {
	if err := s.repo.VoidPurchase(ctx, id); err != nil {
		return Purchase{}, err
	}
	if s.audit != nil {
		if err := s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "purchase.voided",
			Entity:   "compra",
			EntityID: strconv.FormatInt(id, 10),
		}); err != nil {
			return Purchase{}, err
		}
	}
	return s.repo.GetPurchase(ctx, id)
}
