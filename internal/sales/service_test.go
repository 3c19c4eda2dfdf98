package sales

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/shared"
)

type mockRepository struct {
	sales  map[int64]Sale
	stock  map[int64]int
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		sales:  map[int64]Sale{},
		stock:  map[int64]int{1: 10, 2: 3},
		nextID: 1,
	}
}

func (m *mockRepository) ListSales(_ context.Context, _ ListFilter) ([]Sale, int, error) {
	out := make([]Sale, 0, len(m.sales))
	for _, s := range m.sales {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (m *mockRepository) GetSale(_ context.Context, id int64) (Sale, error) {
	s, ok := m.sales[id]
	if !ok {
		return Sale{}, ErrNotFound
	}
	return s, nil
}

func (m *mockRepository) CreateSale(_ context.Context, s Sale) (Sale, error) {
	// Mirrors the transactional behavior: nothing is persisted when a
	// line lacks stock.
	for _, line := range s.Products {
		if m.stock[line.ProductID] < line.Quantity {
			return Sale{}, ErrInsufficientStock
		}
	}
	for _, line := range s.Products {
		m.stock[line.ProductID] -= line.Quantity
	}
	s.ID = m.nextID
	m.nextID++
	m.sales[s.ID] = s
	return s, nil
}

func (m *mockRepository) VoidSale(_ context.Context, id int64) error {
	s, ok := m.sales[id]
	if !ok {
		return ErrNotFound
	}
	if s.Status == SaleVoided {
		return ErrAlreadyVoided
	}
	for _, line := range s.Products {
		m.stock[line.ProductID] += line.Quantity
	}
	s.Status = SaleVoided
	m.sales[id] = s
	return nil
}

type mockIdempotency struct {
	keys map[string]bool
}

func (m *mockIdempotency) CheckAndInsert(_ context.Context, key, _ string) error {
	if m.keys[key] {
		return shared.ErrIdempotencyConflict
	}
	m.keys[key] = true
	return nil
}

func (m *mockIdempotency) Delete(_ context.Context, key string) error {
	delete(m.keys, key)
	return nil
}

type mockAudit struct {
	records []shared.AuditLog
}

func (m *mockAudit) Record(_ context.Context, log shared.AuditLog) error {
	m.records = append(m.records, log)
	return nil
}

func newTestService() (*Service, *mockRepository, *mockIdempotency, *mockAudit) {
	repo := newMockRepository()
	idem := &mockIdempotency{keys: map[string]bool{}}
	audit := &mockAudit{}
	return NewService(repo, idem, audit), repo, idem, audit
}

func TestCreateComputesTotalAndDecrementsStock(t *testing.T) {
	svc, repo, _, audit := newTestService()

	sale, err := svc.Create(context.Background(), CreateInput{
		ClientID:     1,
		SellerUserID: 5,
		Products: []ProductLine{
			{ProductID: 1, Quantity: 2, UnitPrice: 15000},
		},
		Services: []ServiceLine{
			{ServiceID: 1, Price: 30000},
		},
	})
	require.NoError(t, err)
	require.Equal(t, float64(60000), sale.Total)
	require.Equal(t, SaleActive, sale.Status)
	require.Equal(t, 8, repo.stock[1])
	require.Len(t, audit.records, 1)
	require.Equal(t, "sale.created", audit.records[0].Action)
}

func TestCreateRejectsInsufficientStock(t *testing.T) {
	svc, repo, _, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateInput{
		ClientID: 1,
		Products: []ProductLine{
			{ProductID: 2, Quantity: 5, UnitPrice: 1000},
		},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Equal(t, 3, repo.stock[2], "stock must stay untouched")
}

func TestCreateRejectsEmptySale(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateInput{ClientID: 1})
	require.ErrorIs(t, err, ErrEmptySale)
}

func TestCreateDuplicateIdempotencyKey(t *testing.T) {
	svc, _, _, _ := newTestService()

	in := CreateInput{
		ClientID:       1,
		IdempotencyKey: "key-1",
		Services:       []ServiceLine{{ServiceID: 1, Price: 20000}},
	}
	_, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), in)
	require.ErrorIs(t, err, shared.ErrIdempotencyConflict)
}

func TestCreateFailureReleasesIdempotencyKey(t *testing.T) {
	svc, _, idem, _ := newTestService()

	in := CreateInput{
		ClientID:       1,
		IdempotencyKey: "key-2",
		Products:       []ProductLine{{ProductID: 2, Quantity: 99, UnitPrice: 1000}},
	}
	_, err := svc.Create(context.Background(), in)
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.False(t, idem.keys["key-2"], "failed sale must release its key")
}

func TestVoidRestoresStock(t *testing.T) {
	svc, repo, _, audit := newTestService()

	sale, err := svc.Create(context.Background(), CreateInput{
		ClientID:     1,
		SellerUserID: 5,
		Products:     []ProductLine{{ProductID: 1, Quantity: 4, UnitPrice: 10000}},
	})
	require.NoError(t, err)
	require.Equal(t, 6, repo.stock[1])

	voided, err := svc.Void(context.Background(), sale.ID, 5)
	require.NoError(t, err)
	require.Equal(t, SaleVoided, voided.Status)
	require.Equal(t, 10, repo.stock[1])
	require.Equal(t, "sale.voided", audit.records[len(audit.records)-1].Action)
}

func TestVoidTwiceFails(t *testing.T) {
	svc, _, _, _ := newTestService()

	sale, err := svc.Create(context.Background(), CreateInput{
		ClientID: 1,
		Services: []ServiceLine{{ServiceID: 1, Price: 5000}},
	})
	require.NoError(t, err)

	_, err = svc.Void(context.Background(), sale.ID, 1)
	require.NoError(t, err)

	_, err = svc.Void(context.Background(), sale.ID, 1)
	require.ErrorIs(t, err, ErrAlreadyVoided)
}
