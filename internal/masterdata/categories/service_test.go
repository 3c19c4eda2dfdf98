package categories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/masterdata/shared"
)

type mockRepository struct {
	categories map[int64]Category
	products   map[int64]int
	nextID     int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		categories: map[int64]Category{},
		products:   map[int64]int{},
		nextID:     1,
	}
}

func (m *mockRepository) List(_ context.Context, _ shared.ListFilters) ([]Category, int, error) {
	out := make([]Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *mockRepository) Get(_ context.Context, id int64) (Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return Category{}, shared.ErrNotFound
	}
	return c, nil
}

func (m *mockRepository) Create(_ context.Context, category Category) (Category, error) {
	for _, existing := range m.categories {
		if existing.Name == category.Name {
			return Category{}, shared.ErrDuplicate
		}
	}
	category.ID = m.nextID
	m.nextID++
	m.categories[category.ID] = category
	return category, nil
}

func (m *mockRepository) Update(_ context.Context, id int64, category Category) error {
	if _, ok := m.categories[id]; !ok {
		return shared.ErrNotFound
	}
	category.ID = id
	m.categories[id] = category
	return nil
}

func (m *mockRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.categories[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *mockRepository) ProductCount(_ context.Context, id int64) (int, error) {
	return m.products[id], nil
}

func TestCreateRequiresName(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.Create(context.Background(), Category{Name: "  "})
	require.ErrorIs(t, err, shared.ErrRequiredField)
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), Category{Name: "Capilar", IsActive: true})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), Category{Name: "Capilar", IsActive: true})
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestDeleteRemovesUnreferencedCategory(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), Category{Name: "Facial", IsActive: true})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	_, err = svc.Get(context.Background(), created.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteDeactivatesReferencedCategory(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), Category{Name: "Corporal", IsActive: true})
	require.NoError(t, err)
	repo.products[created.ID] = 3

	err = svc.Delete(context.Background(), created.ID)
	require.ErrorIs(t, err, shared.ErrInUse)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive, "referenced category should be deactivated, not removed")
}

func TestGetRejectsInvalidID(t *testing.T) {
	svc := NewService(newMockRepository())

	_, err := svc.Get(context.Background(), 0)
	require.ErrorIs(t, err, shared.ErrInvalidID)
}
