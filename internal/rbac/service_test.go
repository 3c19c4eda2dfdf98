package rbac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type grantKey struct {
	roleID int64
	permID int64
}

type mockRepository struct {
	users   map[int64]*User
	roles   map[int64]*Role
	perms   map[int64]*Permission
	grants  map[grantKey]*Grant
	changes []RoleChange

	nextRoleID int64
	nextPermID int64

	insertChangeErr error
	updateRoleErr   error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:      make(map[int64]*User),
		roles:      make(map[int64]*Role),
		perms:      make(map[int64]*Permission),
		grants:     make(map[grantKey]*Grant),
		nextRoleID: 1,
		nextPermID: 1,
	}
}

func (m *mockRepository) addRole(name string, active bool) *Role {
	role := &Role{ID: m.nextRoleID, Name: name, ProfileType: ProfileNone, IsActive: active}
	m.roles[role.ID] = role
	m.nextRoleID++
	return role
}

func (m *mockRepository) addPermission(name string, active bool) *Permission {
	perm := &Permission{ID: m.nextPermID, Name: name, IsActive: active}
	m.perms[perm.ID] = perm
	m.nextPermID++
	return perm
}

func (m *mockRepository) addUser(id int64, roleID *int64, active bool) *User {
	user := &User{ID: id, RoleID: roleID, IsActive: active}
	m.users[id] = user
	return user
}

func (m *mockRepository) GetUser(ctx context.Context, id int64) (User, error) {
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return *u, nil
}

func (m *mockRepository) RolePermissionNames(ctx context.Context, roleID int64) ([]string, error) {
	role, ok := m.roles[roleID]
	if !ok || !role.IsActive {
		return nil, nil
	}
	var names []string
	for key := range m.grants {
		if key.roleID != roleID {
			continue
		}
		if perm, ok := m.perms[key.permID]; ok && perm.IsActive {
			names = append(names, perm.Name)
		}
	}
	return names, nil
}

func (m *mockRepository) GetRole(ctx context.Context, id int64) (Role, error) {
	role, ok := m.roles[id]
	if !ok {
		return Role{}, ErrNotFound
	}
	return *role, nil
}

func (m *mockRepository) GetRoleByName(ctx context.Context, name string) (Role, error) {
	for _, role := range m.roles {
		if role.Name == name {
			return *role, nil
		}
	}
	return Role{}, ErrNotFound
}

func (m *mockRepository) ListRoles(ctx context.Context, includeInactive bool) ([]Role, error) {
	var roles []Role
	for _, role := range m.roles {
		if !includeInactive && !role.IsActive {
			continue
		}
		roles = append(roles, *role)
	}
	return roles, nil
}

func (m *mockRepository) CreateRole(ctx context.Context, role Role) (Role, error) {
	for _, existing := range m.roles {
		if existing.Name == role.Name {
			return Role{}, ErrNameTaken
		}
	}
	role.ID = m.nextRoleID
	m.nextRoleID++
	stored := role
	m.roles[role.ID] = &stored
	return role, nil
}

func (m *mockRepository) ListPermissions(ctx context.Context) ([]Permission, error) {
	var perms []Permission
	for _, p := range m.perms {
		perms = append(perms, *p)
	}
	return perms, nil
}

func (m *mockRepository) GetPermission(ctx context.Context, id int64) (Permission, error) {
	p, ok := m.perms[id]
	if !ok {
		return Permission{}, ErrNotFound
	}
	return *p, nil
}

func (m *mockRepository) EnsurePermission(ctx context.Context, name, description string) (Permission, error) {
	for _, p := range m.perms {
		if p.Name == name {
			p.Description = description
			return *p, nil
		}
	}
	perm := m.addPermission(name, true)
	perm.Description = description
	return *perm, nil
}

func (m *mockRepository) ListRoleGrants(ctx context.Context, roleID int64) ([]Grant, error) {
	var grants []Grant
	for key, g := range m.grants {
		if key.roleID == roleID {
			grants = append(grants, *g)
		}
	}
	return grants, nil
}

func (m *mockRepository) AddGrant(ctx context.Context, roleID, permissionID int64, grantedBy *int64) error {
	if _, ok := m.roles[roleID]; !ok {
		return ErrNotFound
	}
	if _, ok := m.perms[permissionID]; !ok {
		return ErrNotFound
	}
	key := grantKey{roleID: roleID, permID: permissionID}
	if _, ok := m.grants[key]; ok {
		return nil
	}
	m.grants[key] = &Grant{RoleID: roleID, PermissionID: permissionID, GrantedBy: grantedBy}
	return nil
}

func (m *mockRepository) RemoveGrant(ctx context.Context, roleID, permissionID int64) error {
	delete(m.grants, grantKey{roleID: roleID, permID: permissionID})
	return nil
}

func (m *mockRepository) RoleHistory(ctx context.Context, roleID int64, limit, offset int) ([]RoleChange, int, error) {
	var rows []RoleChange
	for _, c := range m.changes {
		if c.RoleID == roleID {
			rows = append(rows, c)
		}
	}
	total := len(rows)
	if offset > len(rows) {
		offset = len(rows)
	}
	rows = rows[offset:]
	if limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, total, nil
}

// WithTx emulates all-or-nothing semantics by snapshotting and restoring
// state when the callback fails.
func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	rolesBackup := make(map[int64]*Role, len(m.roles))
	for id, role := range m.roles {
		copied := *role
		rolesBackup[id] = &copied
	}
	grantsBackup := make(map[grantKey]*Grant, len(m.grants))
	for key, g := range m.grants {
		copied := *g
		grantsBackup[key] = &copied
	}
	changesBackup := append([]RoleChange(nil), m.changes...)

	if err := fn(ctx, &mockTx{mock: m}); err != nil {
		m.roles = rolesBackup
		m.grants = grantsBackup
		m.changes = changesBackup
		return err
	}
	return nil
}

type mockTx struct {
	mock *mockRepository
}

func (t *mockTx) GetRoleForUpdate(ctx context.Context, id int64) (Role, error) {
	return t.mock.GetRole(ctx, id)
}

func (t *mockTx) UpdateRole(ctx context.Context, role Role) error {
	if t.mock.updateRoleErr != nil {
		return t.mock.updateRoleErr
	}
	if _, ok := t.mock.roles[role.ID]; !ok {
		return ErrNotFound
	}
	for id, existing := range t.mock.roles {
		if id != role.ID && existing.Name == role.Name {
			return ErrNameTaken
		}
	}
	stored := role
	t.mock.roles[role.ID] = &stored
	return nil
}

func (t *mockTx) InsertChange(ctx context.Context, change RoleChange) error {
	if t.mock.insertChangeErr != nil {
		return t.mock.insertChangeErr
	}
	change.ID = int64(len(t.mock.changes) + 1)
	t.mock.changes = append(t.mock.changes, change)
	return nil
}

func (t *mockTx) ListGrantPermissionIDs(ctx context.Context, roleID int64) ([]int64, error) {
	var ids []int64
	for key := range t.mock.grants {
		if key.roleID == roleID {
			ids = append(ids, key.permID)
		}
	}
	return ids, nil
}

func (t *mockTx) AddGrant(ctx context.Context, roleID, permissionID int64, grantedBy *int64) error {
	return t.mock.AddGrant(ctx, roleID, permissionID, grantedBy)
}

func (t *mockTx) RemoveGrant(ctx context.Context, roleID, permissionID int64) error {
	return t.mock.RemoveGrant(ctx, roleID, permissionID)
}

func newTestService(repo *mockRepository) *Service {
	return NewService(repo, nil)
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestResolvePermissionsFailClosed(t *testing.T) {
	repo := newMockRepository()
	role := repo.addRole("Empleado", true)
	inactiveRole := repo.addRole("Retirado", false)

	repo.addUser(1, nil, true)           // no role
	repo.addUser(2, &inactiveRole.ID, true) // inactive role
	repo.addUser(3, &role.ID, false)     // deactivated user

	svc := newTestService(repo)

	for _, userID := range []int64{1, 2, 3} {
		perms, err := svc.ResolvePermissions(context.Background(), userID)
		require.NoError(t, err)
		assert.Empty(t, perms, "user %d must resolve to the empty set", userID)
		assert.NotNil(t, perms)
	}
}

func TestResolvePermissionsUnknownUser(t *testing.T) {
	svc := newTestService(newMockRepository())

	_, err := svc.ResolvePermissions(context.Background(), 99)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResolvePermissionsActiveRole(t *testing.T) {
	repo := newMockRepository()
	role := repo.addRole("Empleado", true)
	permA := repo.addPermission("MODULO_CITAS_VER_TODAS", true)
	permB := repo.addPermission("MODULO_VENTAS_VER", true)
	require.NoError(t, repo.AddGrant(context.Background(), role.ID, permA.ID, nil))
	require.NoError(t, repo.AddGrant(context.Background(), role.ID, permB.ID, nil))
	repo.addUser(1, &role.ID, true)

	svc := newTestService(repo)

	perms, err := svc.ResolvePermissions(context.Background(), 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"MODULO_CITAS_VER_TODAS", "MODULO_VENTAS_VER"}, perms)

	// Deactivating a permission removes it from the resolved set.
	permA.IsActive = false
	perms, err = svc.ResolvePermissions(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"MODULO_VENTAS_VER"}, perms)
}

func TestAuthorizeExactMatch(t *testing.T) {
	granted := []string{"MODULO_CITAS_VER_TODAS", "MODULO_VENTAS_VER"}

	assert.True(t, Authorize(granted, "MODULO_VENTAS_VER"))
	assert.False(t, Authorize(granted, "MODULO_VENTAS"))
	assert.False(t, Authorize(granted, "modulo_ventas_ver"))
	assert.False(t, Authorize(nil, "MODULO_VENTAS_VER"))
}

func TestGrantIdempotent(t *testing.T) {
	repo := newMockRepository()
	role := repo.addRole("Empleado", true)
	perm := repo.addPermission("MODULO_VENTAS_VER", true)
	svc := newTestService(repo)

	require.NoError(t, svc.Grant(context.Background(), role.ID, perm.ID, nil))
	require.NoError(t, svc.Grant(context.Background(), role.ID, perm.ID, nil))

	grants, err := svc.RoleGrants(context.Background(), role.ID)
	require.NoError(t, err)
	assert.Len(t, grants, 1)
}

func TestGrantUnknownReferences(t *testing.T) {
	repo := newMockRepository()
	role := repo.addRole("Empleado", true)
	perm := repo.addPermission("MODULO_VENTAS_VER", true)
	svc := newTestService(repo)

	require.ErrorIs(t, svc.Grant(context.Background(), 99, perm.ID, nil), ErrNotFound)
	require.ErrorIs(t, svc.Grant(context.Background(), role.ID, 99, nil), ErrNotFound)
}

func TestRevokeIdempotent(t *testing.T) {
	repo := newMockRepository()
	role := repo.addRole("Empleado", true)
	perm := repo.addPermission("MODULO_VENTAS_VER", true)
	svc := newTestService(repo)

	require.NoError(t, svc.Grant(context.Background(), role.ID, perm.ID, nil))
	require.NoError(t, svc.Revoke(context.Background(), role.ID, perm.ID))
	require.NoError(t, svc.Revoke(context.Background(), role.ID, perm.ID))

	grants, err := svc.RoleGrants(context.Background(), role.ID)
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestUpdateRoleNoChangesWritesNoAudit(t *testing.T) {
	repo := newMockRepository()
	role := repo.addRole("Empleado", true)
	role.Description = "staff"
	svc := newTestService(repo)

	updated, err := svc.UpdateRole(context.Background(), role.ID, RoleUpdate{
		Name:        strPtr("Empleado"),
		Description: strPtr("staff"),
		IsActive:    boolPtr(true),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Empleado", updated.Name)
	assert.Empty(t, repo.changes)
}

func TestUpdateRoleAuditsEachChangedField(t *testing.T) {
	repo := newMockRepository()
	role := repo.addRole("Empleado", true)
	svc := newTestService(repo)
	actor := int64(7)

	updated, err := svc.UpdateRole(context.Background(), role.ID, RoleUpdate{
		Name:     strPtr("Staff"),
		IsActive: boolPtr(false),
	}, &actor)
	require.NoError(t, err)
	assert.Equal(t, "Staff", updated.Name)
	assert.False(t, updated.IsActive)

	require.Len(t, repo.changes, 2)
	byField := make(map[string]RoleChange, len(repo.changes))
	for _, c := range repo.changes {
		byField[c.Field] = c
		require.NotNil(t, c.ActorID)
		assert.Equal(t, actor, *c.ActorID)
	}
	assert.Equal(t, "Empleado", byField["nombre"].OldValue)
	assert.Equal(t, "Staff", byField["nombre"].NewValue)
	assert.Equal(t, "true", byField["estado"].OldValue)
	assert.Equal(t, "false", byField["estado"].NewValue)
}

func TestUpdateRoleNameConflict(t *testing.T) {
	repo := newMockRepository()
	repo.addRole("Staff", true)
	role := repo.addRole("Empleado", true)
	svc := newTestService(repo)

	_, err := svc.UpdateRole(context.Background(), role.ID, RoleUpdate{Name: strPtr("Staff")}, nil)
	require.ErrorIs(t, err, ErrNameTaken)

	assert.Empty(t, repo.changes, "conflicting update must not leave audit rows")
	current, err := repo.GetRole(context.Background(), role.ID)
	require.NoError(t, err)
	assert.Equal(t, "Empleado", current.Name)
}

func TestUpdateRoleUnknown(t *testing.T) {
	svc := newTestService(newMockRepository())

	_, err := svc.UpdateRole(context.Background(), 42, RoleUpdate{Name: strPtr("Staff")}, nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateRoleInvalidProfile(t *testing.T) {
	repo := newMockRepository()
	role := repo.addRole("Empleado", true)
	svc := newTestService(repo)

	bad := ProfileType("GERENTE")
	_, err := svc.UpdateRole(context.Background(), role.ID, RoleUpdate{ProfileType: &bad}, nil)
	require.ErrorIs(t, err, ErrInvalidProfile)
	assert.Empty(t, repo.changes)
}

func TestUpdateRoleAuditFailureRollsBack(t *testing.T) {
	repo := newMockRepository()
	role := repo.addRole("Empleado", true)
	repo.insertChangeErr = assert.AnError
	svc := newTestService(repo)

	_, err := svc.UpdateRole(context.Background(), role.ID, RoleUpdate{Name: strPtr("Staff")}, nil)
	require.Error(t, err)

	current, getErr := repo.GetRole(context.Background(), role.ID)
	require.NoError(t, getErr)
	assert.Equal(t, "Empleado", current.Name, "failed audit insert must abort the whole update")
	assert.Empty(t, repo.changes)
}

func TestSetRolePermissionsAppliesDiff(t *testing.T) {
	repo := newMockRepository()
	role := repo.addRole("Empleado", true)
	permA := repo.addPermission("MODULO_VENTAS_VER", true)
	permB := repo.addPermission("MODULO_CITAS_VER", true)
	permC := repo.addPermission("MODULO_COMPRAS_VER", true)
	svc := newTestService(repo)

	require.NoError(t, svc.Grant(context.Background(), role.ID, permA.ID, nil))
	require.NoError(t, svc.Grant(context.Background(), role.ID, permB.ID, nil))

	require.NoError(t, svc.SetRolePermissions(context.Background(), role.ID, []int64{permB.ID, permC.ID}, nil))

	grants, err := svc.RoleGrants(context.Background(), role.ID)
	require.NoError(t, err)
	var ids []int64
	for _, g := range grants {
		ids = append(ids, g.PermissionID)
	}
	assert.ElementsMatch(t, []int64{permB.ID, permC.ID}, ids)
}

func TestCreateRoleDuplicateName(t *testing.T) {
	repo := newMockRepository()
	repo.addRole("Empleado", true)
	svc := newTestService(repo)

	_, err := svc.CreateRole(context.Background(), CreateRoleInput{Name: "Empleado"})
	require.ErrorIs(t, err, ErrNameTaken)
}

func TestRoleHistoryPagination(t *testing.T) {
	repo := newMockRepository()
	role := repo.addRole("Empleado", true)
	svc := newTestService(repo)

	for i := 0; i < 3; i++ {
		name := "Empleado" + string(rune('A'+i))
		_, err := svc.UpdateRole(context.Background(), role.ID, RoleUpdate{Name: strPtr(name)}, nil)
		require.NoError(t, err)
	}

	changes, paging, err := svc.RoleHistory(context.Background(), role.ID, 1, 2)
	require.NoError(t, err)
	assert.Len(t, changes, 2)
	assert.Equal(t, 3, paging.Total)
	assert.Equal(t, 2, paging.TotalPages)
}
