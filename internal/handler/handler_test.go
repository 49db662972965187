package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"portal/internal/gateway"
	"portal/internal/gateway/mock"
	"portal/internal/handler"
	"portal/internal/middleware"
	"portal/internal/model"
	"portal/internal/repository"
	"portal/internal/service"
	"portal/internal/websocket"
)

const clientID = "6ba7b810-9dad-41d1-80b4-00c04fd430c8"

type testApp struct {
	router   *gin.Engine
	gw       *mock.MockGateway
	registry *service.WorkspaceRegistry
}

func setupApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gw := mock.NewMockGateway(gomock.NewController(t))
	hub := websocket.NewHub(logger)
	reg := service.NewWorkspaceRegistry(gw, repository.NewMemoryStorage(), repository.NewPassthroughTransactionManager(), hub, time.Hour, logger)

	r := gin.New()
	api := r.Group("/api", middleware.ClientWorkspace(reg, false))
	handler.NewAuthHandler().RegisterRoutes(api)
	handler.NewProfileHandler().RegisterRoutes(api)
	handler.NewNotificationHandler(hub).RegisterRoutes(api)
	handler.NewRiwayatHandler().RegisterRoutes(api)
	handler.NewPengajuanHandler().RegisterRoutes(api)
	handler.NewPersetujuanHandler().RegisterRoutes(api)
	handler.NewPenggunaHandler().RegisterRoutes(api)
	handler.NewDashboardHandler(gw).RegisterRoutes(api)

	return &testApp{router: r, gw: gw, registry: reg}
}

func (a *testApp) signIn(t *testing.T, user model.User) {
	t.Helper()
	a.gw.EXPECT().Login(gomock.Any(), user.Username, "rahasia").
		Return(&gateway.LoginResponse{Token: "tok-" + user.Username, User: &user}, nil)
	res := a.workspace().Session.Login(context.Background(), user.Username, "rahasia")
	require.True(t, res.Success)
}

func (a *testApp) workspace() *service.Workspace {
	return a.registry.Get(context.Background(), clientID)
}

func (a *testApp) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: middleware.ClientCookie, Value: clientID})

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status     string            `json:"status"`
	StatusCode int               `json:"status_code"`
	Data       json.RawMessage   `json:"data"`
	Error      string            `json:"error"`
	Errors     map[string]string `json:"errors"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &out))
	return out
}
