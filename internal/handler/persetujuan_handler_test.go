package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"portal/internal/gateway"
	"portal/internal/handler"
	"portal/internal/model"
	"portal/internal/service"
)

func approvalRequests() []model.Request {
	return []model.Request{
		{ID: 41, JenisRequest: model.JenisPengadaan, StatusRequest: model.StatusDisetujui},
		{ID: 42, JenisRequest: model.JenisPerbaikan, StatusRequest: model.StatusDiajukan},
	}
}

func TestPersetujuanHandler_Forbidden(t *testing.T) {
	app := setupApp(t)
	assert.Equal(t, http.StatusUnauthorized, app.do(http.MethodGet, "/api/persetujuan", nil).Code)

	app.signIn(t, model.User{ID: "1", Username: "budi", Role: model.RoleUser})
	w := app.do(http.MethodGet, "/api/persetujuan", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, decode(t, w).Error, "Akses Ditolak")
}

func TestPersetujuanHandler_Queue(t *testing.T) {
	app := setupApp(t)
	app.signIn(t, model.User{ID: "7", Username: "sari", Name: "Sari", Role: model.RoleOperator})
	app.gw.EXPECT().ListRequests(gomock.Any(), gomock.Any()).Return(&gateway.RequestList{Data: approvalRequests()}, nil).Times(2)

	queue := decodeData[service.ApprovalQueue](t, app.do(http.MethodGet, "/api/persetujuan", nil))
	assert.Len(t, queue.Requests, 1)
	assert.Equal(t, 1, queue.PendingCount)

	queue = decodeData[service.ApprovalQueue](t, app.do(http.MethodGet, "/api/persetujuan?all=true", nil))
	assert.Len(t, queue.Requests, 2)
	assert.True(t, queue.ShowAll)
}

func TestPersetujuanHandler_Reject(t *testing.T) {
	app := setupApp(t)
	app.signIn(t, model.User{ID: "7", Username: "sari", Name: "Sari", Role: model.RoleOperator})

	app.gw.EXPECT().ListRequests(gomock.Any(), gomock.Any()).Return(&gateway.RequestList{Data: approvalRequests()}, nil)
	require.Equal(t, http.StatusOK, app.do(http.MethodGet, "/api/persetujuan", nil).Code)

	w := app.do(http.MethodGet, "/api/persetujuan/42", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(42), decodeData[model.Request](t, w).ID)

	gomock.InOrder(
		app.gw.EXPECT().UpdateRequestStatus(gomock.Any(), int64(42), model.StatusUpdate{
			StatusRequest: model.StatusDitolak,
			ApprovedBy:    "Sari",
			Keterangan:    "Budget exceeded",
		}).Return(&gateway.MessageResponse{Message: "ok"}, nil),
		app.gw.EXPECT().ListRequests(gomock.Any(), gomock.Any()).Return(&gateway.RequestList{Data: approvalRequests()[:1]}, nil),
	)

	w = app.do(http.MethodPut, "/api/persetujuan/42/status", handler.UpdateStatusRequest{
		StatusRequest: model.StatusDitolak,
		Keterangan:    "Budget exceeded",
	})
	require.Equal(t, http.StatusOK, w.Code)
	queue := decodeData[service.ApprovalQueue](t, w)
	assert.Equal(t, 0, queue.PendingCount)
	assert.Nil(t, queue.Selected)

	toasts := app.workspace().Notifications.List()
	require.Len(t, toasts, 1)
	assert.Equal(t, "Pengajuan Ditolak", toasts[0].Title)
	assert.False(t, toasts[0].AutoClose)
}

func TestPersetujuanHandler_InvalidStatus(t *testing.T) {
	app := setupApp(t)
	app.signIn(t, model.User{ID: "7", Username: "sari", Role: model.RoleOperator})

	w := app.do(http.MethodPut, "/api/persetujuan/42/status", map[string]string{"status_request": "ARSIP"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
