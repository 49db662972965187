package middleware_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"portal/internal/gateway"
	"portal/internal/gateway/mock"
	"portal/internal/middleware"
	"portal/internal/model"
	"portal/internal/repository"
	"portal/internal/service"
)

const knownClient = "0f8fad5b-d9cb-469f-a165-70867728950e"

func setupRegistry(t *testing.T) (*service.WorkspaceRegistry, *mock.MockGateway) {
	t.Helper()
	gw := mock.NewMockGateway(gomock.NewController(t))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := service.NewWorkspaceRegistry(gw, repository.NewMemoryStorage(), repository.NewPassthroughTransactionManager(), nil, time.Hour, logger)
	return reg, gw
}

func setupRouter(reg *service.WorkspaceRegistry, guards ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ClientWorkspace(reg, false))
	handlers := append(guards, func(c *gin.Context) {
		c.String(http.StatusOK, middleware.GetWorkspace(c).ID)
	})
	r.GET("/", handlers...)
	return r
}

func signIn(t *testing.T, reg *service.WorkspaceRegistry, gw *mock.MockGateway, role string) {
	t.Helper()
	gw.EXPECT().Login(gomock.Any(), "sari", "rahasia").
		Return(&gateway.LoginResponse{Token: "tok", User: &model.User{ID: "7", Username: "sari", Role: role}}, nil)
	res := reg.Get(context.Background(), knownClient).Session.Login(context.Background(), "sari", "rahasia")
	require.True(t, res.Success)
}

func get(r *gin.Engine, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: middleware.ClientCookie, Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestClientWorkspace(t *testing.T) {
	reg, _ := setupRegistry(t)
	r := setupRouter(reg)

	t.Run("issues a client id to new browsers", func(t *testing.T) {
		w := get(r, "")
		require.Equal(t, http.StatusOK, w.Code)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, middleware.ClientCookie, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
		assert.NoError(t, uuid.Validate(cookies[0].Value))
		assert.Equal(t, cookies[0].Value, w.Body.String())
	})

	t.Run("reuses a known client id", func(t *testing.T) {
		w := get(r, knownClient)
		assert.Equal(t, knownClient, w.Body.String())
		assert.Empty(t, w.Result().Cookies())

		_, ok := reg.Lookup(knownClient)
		assert.True(t, ok)
	})

	t.Run("replaces a malformed client id", func(t *testing.T) {
		w := get(r, "not-a-uuid")
		require.Len(t, w.Result().Cookies(), 1)
		assert.NotEqual(t, "not-a-uuid", w.Body.String())
	})
}

func TestSetClientCookie_Secure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	middleware.SetClientCookie(c, knownClient, true)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteNoneMode, cookies[0].SameSite)
}

func TestRequireAuth(t *testing.T) {
	reg, gw := setupRegistry(t)
	r := setupRouter(reg, middleware.RequireAuth())

	w := get(r, knownClient)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, service.ErrNotAuthenticated.Error(), body["error"])

	signIn(t, reg, gw, model.RoleUser)
	assert.Equal(t, http.StatusOK, get(r, knownClient).Code)
}

func TestRequireOperator(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		reg, _ := setupRegistry(t)
		w := get(setupRouter(reg, middleware.RequireOperator()), knownClient)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("regular user", func(t *testing.T) {
		reg, gw := setupRegistry(t)
		signIn(t, reg, gw, model.RoleUser)
		w := get(setupRouter(reg, middleware.RequireOperator()), knownClient)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "Akses Ditolak")
	})

	t.Run("operator", func(t *testing.T) {
		reg, gw := setupRegistry(t)
		signIn(t, reg, gw, model.RoleOperator)
		w := get(setupRouter(reg, middleware.RequireOperator()), knownClient)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
