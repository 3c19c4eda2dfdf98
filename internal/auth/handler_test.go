package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/auth"
	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/shared"
)

type stubRepo struct {
	user *auth.User
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	return nil
}

type stubResolver struct {
	perms []string
}

func (s *stubResolver) ResolvePermissions(ctx context.Context, userID int64) ([]string, error) {
	return s.perms, nil
}

func newAuthRouter(t *testing.T, repo auth.Repository, perms []string) (http.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	handler := auth.NewHandler(nil, auth.NewService(repo), &stubResolver{perms: perms}, sessionManager, csrfManager)

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessionManager.Load(r.Context(), r)
			require.NoError(t, err)
			ctx := shared.ContextWithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
			require.NoError(t, sessionManager.Commit(ctx, w, r, sess))
		})
	})
	router.Route("/auth", handler.MountRoutes)
	return router, sessionManager
}

func doLogin(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLoginSuccess(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("sup3rsecret"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &stubRepo{user: &auth.User{ID: 7, Email: "admin@steticsoft.test", PasswordHash: string(hash), IsActive: true}}
	router, _ := newAuthRouter(t, repo, []string{"MODULO_ROLES_VER"})

	rec := doLogin(t, router, `{"email":"admin@steticsoft.test","password":"sup3rsecret"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"MODULO_ROLES_VER"`)
	assert.NotEmpty(t, rec.Header().Get("Set-Cookie"))
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("sup3rsecret"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &stubRepo{user: &auth.User{ID: 7, Email: "admin@steticsoft.test", PasswordHash: string(hash), IsActive: true}}
	router, _ := newAuthRouter(t, repo, nil)

	rec := doLogin(t, router, `{"email":"admin@steticsoft.test","password":"wrongwrong"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginInactiveUser(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("sup3rsecret"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &stubRepo{user: &auth.User{ID: 7, Email: "admin@steticsoft.test", PasswordHash: string(hash), IsActive: false}}
	router, _ := newAuthRouter(t, repo, nil)

	rec := doLogin(t, router, `{"email":"admin@steticsoft.test","password":"sup3rsecret"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginValidation(t *testing.T) {
	router, _ := newAuthRouter(t, &stubRepo{}, nil)

	rec := doLogin(t, router, `{"email":"not-an-email","password":"short"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeRequiresLogin(t *testing.T) {
	router, _ := newAuthRouter(t, &stubRepo{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
