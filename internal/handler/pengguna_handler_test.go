package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"portal/internal/gateway"
	"portal/internal/model"
)

func TestPenggunaHandler(t *testing.T) {
	app := setupApp(t)
	app.signIn(t, model.User{ID: "7", Username: "sari", Role: model.RoleOperator})

	app.gw.EXPECT().ListUsers(gomock.Any()).Return([]model.User{{ID: "7", Username: "sari"}}, nil)
	users := decodeData[[]model.User](t, app.do(http.MethodGet, "/api/pengguna", nil))
	require.Len(t, users, 1)

	w := app.do(http.MethodPost, "/api/pengguna", model.CreateUserRequest{Username: "andi"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Equal(t, "Password wajib diisi", env.Errors["password"])
	assert.NotContains(t, env.Errors, "username")

	req := model.CreateUserRequest{Username: "andi", Password: "rahasia", Name: "Andi", Email: "andi@kantor.id", Unit: "IT", Role: model.RoleUser}
	app.gw.EXPECT().CreateUser(gomock.Any(), req).Return(&gateway.UserMutationResponse{Success: true, User: &model.User{ID: "9", Username: "andi"}}, nil)
	app.gw.EXPECT().ListUsers(gomock.Any()).Return([]model.User{}, nil).Times(3)
	w = app.do(http.MethodPost, "/api/pengguna", req)
	assert.Equal(t, http.StatusCreated, w.Code)

	app.gw.EXPECT().UpdateUser(gomock.Any(), "9", model.UpdateUserRequest{Unit: "Umum"}).
		Return(&gateway.UserMutationResponse{Success: true, User: &model.User{ID: "9", Unit: "Umum"}}, nil)
	w = app.do(http.MethodPut, "/api/pengguna/9", model.UpdateUserRequest{Unit: "Umum"})
	assert.Equal(t, "Umum", decodeData[model.User](t, w).Unit)

	app.gw.EXPECT().DeleteUser(gomock.Any(), "9").Return(&gateway.MessageResponse{}, nil)
	assert.Equal(t, http.StatusOK, app.do(http.MethodDelete, "/api/pengguna/9", nil).Code)
}

func TestPenggunaHandler_RegularUserForbidden(t *testing.T) {
	app := setupApp(t)
	app.signIn(t, model.User{ID: "1", Username: "budi", Role: model.RoleUser})
	assert.Equal(t, http.StatusForbidden, app.do(http.MethodGet, "/api/pengguna", nil).Code)
}
