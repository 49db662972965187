package service

import (
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"portal/internal/gateway"
	"portal/internal/model"
)

func sampleRequests() []model.Request {
	return []model.Request{
		{ID: 1, JenisRequest: model.JenisPengadaan, Unit: "Keuangan", RequestedBy: "Budi", TglRequest: "2024-01-10", StatusRequest: model.StatusDiajukan, NamaBarangArray: []string{"Laptop"}},
		{ID: 2, JenisRequest: model.JenisPerbaikan, Unit: "IT Support", RequestedBy: "Andi", TglRequest: "2024-01-15", StatusRequest: model.StatusDisetujui, ApprovedBy: strPtr("Sari")},
		{ID: 3, JenisRequest: model.JenisPeminjaman, Unit: "Umum", RequestedBy: "Citra", TglRequest: "2024-02-01T09:30:00Z", StatusRequest: model.StatusDitolak, ApprovedBy: strPtr("Sari"), Lokasi: strPtr("Aula")},
		{ID: 4, JenisRequest: model.JenisPengadaan, Unit: "keuangan", RequestedBy: "Dewi", TglRequest: "bukan tanggal", StatusRequest: "ARSIP"},
	}
}

func loadedRiwayat(t *testing.T) *testWorkspace {
	t.Helper()
	tw := newTestWorkspace(t)
	tw.signIn(t, model.User{ID: "1", Username: "budi", Role: model.RoleUser})
	tw.gw.EXPECT().ListRequests(gomock.Any(), gateway.ListRequestsParams{}).
		Return(&gateway.RequestList{Data: sampleRequests()}, nil)
	require.NoError(t, tw.riwayat.Load(context.Background()))
	return tw
}

func ids(entries []model.HistoryEntry) []int64 {
	out := make([]int64, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestRiwayatService_Load(t *testing.T) {
	tw := loadedRiwayat(t)
	snap := tw.riwayat.Snapshot()

	require.Len(t, snap.Entries, 4)
	assert.True(t, snap.Loaded)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Error)

	assert.Equal(t, model.DisplayPending, snap.Entries[0].Status)
	assert.Equal(t, "Laptop", snap.Entries[0].NamaBarang)
	assert.Equal(t, "Budi", snap.Entries[0].Pemohon)
	assert.Equal(t, model.DisplayApproved, snap.Entries[1].Status)
	assert.Equal(t, "Sari", snap.Entries[1].Approver)
	assert.Equal(t, "Aula", snap.Entries[2].Lokasi)
	assert.Equal(t, "ARSIP", snap.Entries[3].Status, "unknown statuses pass through")

	assert.Equal(t, model.Stats{Total: 4, Pending: 1, Approved: 1, Rejected: 1}, snap.Stats)
	assert.Equal(t, ids(snap.Entries), ids(snap.Filtered))
}

func TestRiwayatService_LoadFailureResets(t *testing.T) {
	tw := loadedRiwayat(t)
	tw.gw.EXPECT().ListRequests(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

	err := tw.riwayat.Refresh(context.Background())
	require.Error(t, err)

	snap := tw.riwayat.Snapshot()
	assert.Equal(t, "Gagal memuat data riwayat", snap.Error)
	assert.Empty(t, snap.Entries)
	assert.Empty(t, snap.Filtered)
	assert.Equal(t, model.Stats{}, snap.Stats)
}

func TestRiwayatService_Reset(t *testing.T) {
	tw := loadedRiwayat(t)
	tw.riwayat.Reset()

	snap := tw.riwayat.Snapshot()
	assert.False(t, snap.Loaded)
	assert.Empty(t, snap.Entries)
	assert.Empty(t, snap.Filtered)
	assert.Equal(t, model.Stats{}, snap.Stats)
}

func TestRiwayatService_LoadDiscardedAfterReset(t *testing.T) {
	tw := newTestWorkspace(t)
	tw.signIn(t, model.User{ID: "1", Username: "budi"})
	tw.gw.EXPECT().ListRequests(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, gateway.ListRequestsParams) (*gateway.RequestList, error) {
			// the user signs out while the backend is still answering
			tw.riwayat.Reset()
			return &gateway.RequestList{Data: sampleRequests()}, nil
		})

	require.NoError(t, tw.riwayat.Load(context.Background()))
	snap := tw.riwayat.Snapshot()
	assert.False(t, snap.Loaded)
	assert.Empty(t, snap.Entries)
}

func TestRiwayatService_Filter(t *testing.T) {
	tests := []struct {
		name   string
		filter model.HistoryFilter
		want   []int64
	}{
		{"empty filter keeps all", model.HistoryFilter{}, []int64{1, 2, 3, 4}},
		{"unit substring ignores case", model.HistoryFilter{Unit: "KEU"}, []int64{1, 4}},
		{"status exact", model.HistoryFilter{Status: model.DisplayApproved}, []int64{2}},
		{"date range inclusive", model.HistoryFilter{StartDate: "2024-01-10", EndDate: "2024-01-15"}, []int64{1, 2}},
		{"single bound ignored", model.HistoryFilter{StartDate: "2024-01-12"}, []int64{1, 2, 3, 4}},
		{"timestamps compare as instants", model.HistoryFilter{StartDate: "2024-02-01", EndDate: "2024-02-01"}, []int64{}},
		{"combined", model.HistoryFilter{StartDate: "2024-01-01", EndDate: "2024-12-31", Unit: "keuangan"}, []int64{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := loadedRiwayat(t)
			got := tw.riwayat.Filter(tt.filter)
			assert.Equal(t, tt.want, ids(got))
			assert.Equal(t, tt.want, ids(tw.riwayat.Snapshot().Filtered))
		})
	}
}

func TestRiwayatService_FilterDoesNotStack(t *testing.T) {
	tw := loadedRiwayat(t)
	tw.riwayat.Filter(model.HistoryFilter{Status: model.DisplayApproved})
	got := tw.riwayat.Filter(model.HistoryFilter{Status: model.DisplayPending})
	assert.Equal(t, []int64{1}, ids(got))
}

func TestRiwayatService_ClearFiltersRestores(t *testing.T) {
	tw := loadedRiwayat(t)
	before := ids(tw.riwayat.Snapshot().Filtered)

	tw.riwayat.Filter(model.HistoryFilter{Unit: "umum"})
	restored := tw.riwayat.ClearFilters()
	assert.Equal(t, before, ids(restored))

	tw.riwayat.Filter(model.HistoryFilter{Unit: "umum"})
	assert.Equal(t, before, ids(tw.riwayat.Search("")), "empty search equals clearing filters")
}

func TestRiwayatService_Search(t *testing.T) {
	tw := loadedRiwayat(t)

	assert.Equal(t, []int64{2}, ids(tw.riwayat.Search("andi")))
	assert.Equal(t, []int64{3}, ids(tw.riwayat.Search("PEMINJAMAN")))
	assert.Equal(t, []int64{2}, ids(tw.riwayat.Search("support")))
	assert.Empty(t, tw.riwayat.Search("zzz"))
}

func TestRiwayatService_Export(t *testing.T) {
	tw := loadedRiwayat(t)
	tw.riwayat.Filter(model.HistoryFilter{Unit: "keuangan"})

	data, n, err := tw.riwayat.Export()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, n+1)
	assert.Equal(t, []string{"ID", "Jenis Request", "Unit", "Pemohon", "Tanggal Pengajuan", "Status", "Approver"}, records[0])
	for _, r := range records {
		assert.Len(t, r, 7)
	}
	assert.Equal(t, []string{"1", "pengadaan", "Keuangan", "Budi", "2024-01-10", "pending", ""}, records[1])
	assert.True(t, strings.HasPrefix(string(data), "ID,Jenis Request,Unit,Pemohon,Tanggal Pengajuan,Status,Approver\n"))
}

func TestRiwayatService_ExportQuotesFields(t *testing.T) {
	tw := newTestWorkspace(t)
	tw.signIn(t, model.User{ID: "1", Username: "budi", Role: model.RoleUser})
	tw.gw.EXPECT().ListRequests(gomock.Any(), gateway.ListRequestsParams{}).
		Return(&gateway.RequestList{Data: []model.Request{
			{ID: 9, JenisRequest: model.JenisPengadaan, Unit: "Keuangan, Pusat", RequestedBy: `Budi "B"`, TglRequest: "2024-01-10", StatusRequest: model.StatusDiajukan},
		}}, nil)
	require.NoError(t, tw.riwayat.Load(context.Background()))

	data, n, err := tw.riwayat.Export()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	lines := strings.Split(string(data), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `9,pengadaan,"Keuangan, Pusat","Budi ""B""",2024-01-10,pending,`, lines[1])
	assert.Empty(t, lines[2])
}

func TestRiwayatService_ExportEmpty(t *testing.T) {
	tw := loadedRiwayat(t)
	tw.riwayat.Search("zzz")

	_, _, err := tw.riwayat.Export()
	assert.ErrorIs(t, err, ErrNothingToExport)
	assert.Equal(t, "Tidak ada data yang dapat diexport", err.Error())
}

func TestRiwayatService_ExportFilename(t *testing.T) {
	tw := newTestWorkspace(t)
	name := tw.riwayat.ExportFilename(time.Date(2024, 3, 5, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, "riwayat-pengajuan-2024-03-05.csv", name)
}

func TestRiwayatService_DashboardStats(t *testing.T) {
	t.Run("backend totals", func(t *testing.T) {
		tw := loadedRiwayat(t)
		tw.gw.EXPECT().DashboardStats(gomock.Any()).
			Return(&model.DashboardStats{TotalPengajuan: 9, TotalRiwayat: 9}, nil)

		stats := tw.riwayat.DashboardStats(context.Background())
		assert.Equal(t, 9, stats.TotalPengajuan)
	})

	t.Run("fallback to local totals", func(t *testing.T) {
		tw := loadedRiwayat(t)
		tw.gw.EXPECT().DashboardStats(gomock.Any()).Return(nil, errors.New("down"))

		stats := tw.riwayat.DashboardStats(context.Background())
		assert.Equal(t, model.DashboardStats{TotalRiwayat: 4}, stats)
	})
}
