package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/shared"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestWithUser(t *testing.T, userID string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/ventas", nil)
	sess := &shared.Session{ID: "test-session"}
	sess.SetUser(userID)
	return req.WithContext(shared.ContextWithSession(context.Background(), sess))
}

func TestMiddlewareRequiresSession(t *testing.T) {
	mw := Middleware{Service: newTestService(newMockRepository())}
	handler := mw.RequireAny("MODULO_VENTAS_VER")(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ventas", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareUnknownUser(t *testing.T) {
	mw := Middleware{Service: newTestService(newMockRepository())}
	handler := mw.RequireAny("MODULO_VENTAS_VER")(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithUser(t, "42"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareForbidsMissingPermission(t *testing.T) {
	repo := newMockRepository()
	role := repo.addRole("Empleado", true)
	repo.addUser(1, &role.ID, true)
	mw := Middleware{Service: newTestService(repo)}
	handler := mw.RequireAny("MODULO_VENTAS_VER")(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithUser(t, "1"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMiddlewareAllowsGrantedPermission(t *testing.T) {
	repo := newMockRepository()
	role := repo.addRole("Empleado", true)
	perm := repo.addPermission("MODULO_VENTAS_VER", true)
	require.NoError(t, repo.AddGrant(context.Background(), role.ID, perm.ID, nil))
	repo.addUser(1, &role.ID, true)
	mw := Middleware{Service: newTestService(repo)}
	handler := mw.RequireAny("MODULO_VENTAS_VER")(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithUser(t, "1"))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddlewareRequireAll(t *testing.T) {
	repo := newMockRepository()
	role := repo.addRole("Empleado", true)
	permA := repo.addPermission("MODULO_VENTAS_VER", true)
	require.NoError(t, repo.AddGrant(context.Background(), role.ID, permA.ID, nil))
	repo.addUser(1, &role.ID, true)
	mw := Middleware{Service: newTestService(repo)}

	handler := mw.RequireAll("MODULO_VENTAS_VER", "MODULO_VENTAS_ANULAR")(okHandler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithUser(t, "1"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	permB := repo.addPermission("MODULO_VENTAS_ANULAR", true)
	require.NoError(t, repo.AddGrant(context.Background(), role.ID, permB.ID, nil))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithUser(t, "1"))
	assert.Equal(t, http.StatusOK, rec.Code)
}
