package handler_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"portal/internal/gateway"
	"portal/internal/handler"
	"portal/internal/model"
)

func historyRequests() []model.Request {
	return []model.Request{
		{ID: 1, JenisRequest: model.JenisPengadaan, Unit: "IT", RequestedBy: "budi", TglRequest: "2024-05-01", StatusRequest: model.StatusDiajukan},
		{ID: 2, JenisRequest: model.JenisPerbaikan, Unit: "Keuangan", RequestedBy: "sari", TglRequest: "2024-05-10", StatusRequest: model.StatusDisetujui},
		{ID: 3, JenisRequest: model.JenisPeminjaman, Unit: "IT Support", RequestedBy: "andi", TglRequest: "2024-06-02", StatusRequest: model.StatusDitolak},
	}
}

func TestRiwayatHandler_List(t *testing.T) {
	app := setupApp(t)
	assert.Equal(t, http.StatusUnauthorized, app.do(http.MethodGet, "/api/riwayat", nil).Code)

	app.signIn(t, model.User{ID: "1", Username: "budi"})
	app.gw.EXPECT().ListRequests(gomock.Any(), gateway.ListRequestsParams{}).
		Return(&gateway.RequestList{Data: historyRequests()}, nil).Times(1)

	w := app.do(http.MethodGet, "/api/riwayat?page=2&limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decodeData[handler.RiwayatPage](t, w)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(3), page.Items[0].ID)
	assert.Equal(t, 3, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.Equal(t, model.Stats{Total: 3, Pending: 1, Approved: 1, Rejected: 1}, page.Stats)

	// loaded once, served from the store afterwards
	w = app.do(http.MethodGet, "/api/riwayat", nil)
	assert.Len(t, decodeData[handler.RiwayatPage](t, w).Items, 3)
}

func TestRiwayatHandler_LoadFailure(t *testing.T) {
	app := setupApp(t)
	app.signIn(t, model.User{ID: "1", Username: "budi"})
	app.gw.EXPECT().ListRequests(gomock.Any(), gomock.Any()).
		Return(nil, &gateway.HTTPError{StatusCode: 500, Message: "Internal server error"})

	w := app.do(http.MethodGet, "/api/riwayat", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Gagal memuat data riwayat", decode(t, w).Error)
}

func TestRiwayatHandler_FilterSearchClear(t *testing.T) {
	app := setupApp(t)
	app.signIn(t, model.User{ID: "1", Username: "budi"})
	app.gw.EXPECT().ListRequests(gomock.Any(), gomock.Any()).Return(&gateway.RequestList{Data: historyRequests()}, nil)
	require.Equal(t, http.StatusOK, app.do(http.MethodGet, "/api/riwayat", nil).Code)

	w := app.do(http.MethodPost, "/api/riwayat/filter", model.HistoryFilter{Unit: "it"})
	page := decodeData[handler.RiwayatPage](t, w)
	assert.Len(t, page.Items, 2)

	w = app.do(http.MethodPost, "/api/riwayat/filter", model.HistoryFilter{StartDate: "2024-05-01", EndDate: "2024-05-31"})
	page = decodeData[handler.RiwayatPage](t, w)
	assert.Len(t, page.Items, 2, "filters do not stack")

	w = app.do(http.MethodPost, "/api/riwayat/search", handler.SearchRequest{Term: "SARI"})
	page = decodeData[handler.RiwayatPage](t, w)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(2), page.Items[0].ID)

	w = app.do(http.MethodDelete, "/api/riwayat/filter", nil)
	assert.Len(t, decodeData[handler.RiwayatPage](t, w).Items, 3)

	var titles []string
	for _, n := range app.workspace().Notifications.List() {
		titles = append(titles, n.Title)
	}
	assert.Equal(t, []string{"Filter Diterapkan", "Filter Diterapkan", "Filter Dihapus"}, titles)
}

func TestRiwayatHandler_Export(t *testing.T) {
	app := setupApp(t)
	app.signIn(t, model.User{ID: "1", Username: "budi"})

	w := app.do(http.MethodGet, "/api/riwayat/export", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Tidak ada data yang dapat diexport", decode(t, w).Error)

	app.gw.EXPECT().ListRequests(gomock.Any(), gomock.Any()).Return(&gateway.RequestList{Data: historyRequests()}, nil)
	require.Equal(t, http.StatusOK, app.do(http.MethodPost, "/api/riwayat/refresh", nil).Code)

	w = app.do(http.MethodGet, "/api/riwayat/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Regexp(t, `attachment; filename="riwayat-pengajuan-\d{4}-\d{2}-\d{2}\.csv"`, w.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "ID,Jenis Request,Unit,Pemohon,Tanggal Pengajuan,Status,Approver", lines[0])
}

func TestRiwayatHandler_RefreshFailure(t *testing.T) {
	app := setupApp(t)
	app.signIn(t, model.User{ID: "1", Username: "budi"})
	app.gw.EXPECT().ListRequests(gomock.Any(), gomock.Any()).Return(nil, errors.New("dial tcp: connection refused"))

	w := app.do(http.MethodPost, "/api/riwayat/refresh", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	list := app.workspace().Notifications.List()
	require.Len(t, list, 1)
	assert.Equal(t, "Gagal Memperbarui Data", list[0].Title)
}
