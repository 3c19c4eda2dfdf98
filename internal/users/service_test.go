package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockRepository struct {
	users  map[int64]User
	hashes map[int64]string
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{users: map[int64]User{}, hashes: map[int64]string{}, nextID: 1}
}

func (m *mockRepository) ListUsers(_ context.Context) ([]User, error) {
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockRepository) GetUser(_ context.Context, id int64) (User, error) {
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *mockRepository) CreateUser(_ context.Context, email, passwordHash string, roleID *int64) (User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return User{}, ErrEmailTaken
		}
	}
	u := User{ID: m.nextID, Email: email, RoleID: roleID, IsActive: true}
	m.users[u.ID] = u
	m.hashes[u.ID] = passwordHash
	m.nextID++
	return u, nil
}

func (m *mockRepository) UpdateUser(_ context.Context, user User) (User, error) {
	if _, ok := m.users[user.ID]; !ok {
		return User{}, ErrNotFound
	}
	m.users[user.ID] = user
	return user, nil
}

func (m *mockRepository) SetPassword(_ context.Context, id int64, passwordHash string) error {
	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	m.hashes[id] = passwordHash
	return nil
}

type mockInvalidator struct {
	calls int
}

func (m *mockInvalidator) InvalidatePermissions(_ context.Context) error {
	m.calls++
	return nil
}

func TestCreateUserHashesPassword(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil)

	user, err := svc.CreateUser(context.Background(), "Admin@SteticSoft.Com", "sup3rsecret", nil)
	require.NoError(t, err)
	require.Equal(t, "admin@steticsoft.com", user.Email)

	hash := repo.hashes[user.ID]
	require.NotEqual(t, "sup3rsecret", hash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("sup3rsecret")))
}

func TestUpdateUserRoleChangeInvalidatesPermissions(t *testing.T) {
	repo := newMockRepository()
	inv := &mockInvalidator{}
	svc := NewService(repo, inv)

	user, err := svc.CreateUser(context.Background(), "staff@steticsoft.com", "sup3rsecret", nil)
	require.NoError(t, err)

	roleID := int64(7)
	updated, err := svc.UpdateUser(context.Background(), user.ID, UserUpdate{RoleID: &roleID})
	require.NoError(t, err)
	require.NotNil(t, updated.RoleID)
	require.Equal(t, roleID, *updated.RoleID)
	require.Equal(t, 1, inv.calls)
}

func TestUpdateUserEmailOnlySkipsInvalidation(t *testing.T) {
	repo := newMockRepository()
	inv := &mockInvalidator{}
	svc := NewService(repo, inv)

	user, err := svc.CreateUser(context.Background(), "staff@steticsoft.com", "sup3rsecret", nil)
	require.NoError(t, err)

	email := "renamed@steticsoft.com"
	updated, err := svc.UpdateUser(context.Background(), user.ID, UserUpdate{Email: &email})
	require.NoError(t, err)
	require.Equal(t, email, updated.Email)
	require.Equal(t, 0, inv.calls)
}

func TestUpdateUserClearRoleInvalidates(t *testing.T) {
	repo := newMockRepository()
	inv := &mockInvalidator{}
	svc := NewService(repo, inv)

	roleID := int64(7)
	user, err := svc.CreateUser(context.Background(), "staff@steticsoft.com", "sup3rsecret", &roleID)
	require.NoError(t, err)

	updated, err := svc.UpdateUser(context.Background(), user.ID, UserUpdate{ClearRole: true})
	require.NoError(t, err)
	require.Nil(t, updated.RoleID)
	require.Equal(t, 1, inv.calls)
}

func TestUpdateUnknownUser(t *testing.T) {
	svc := NewService(newMockRepository(), nil)

	_, err := svc.UpdateUser(context.Background(), 99, UserUpdate{})
	require.ErrorIs(t, err, ErrNotFound)
}
