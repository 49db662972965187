package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"portal/internal/gateway"
	"portal/internal/model"
)

func TestDashboardService_Summary(t *testing.T) {
	tw := newTestWorkspace(t)
	tw.signIn(t, model.User{ID: "1", Username: "budi", Role: model.RoleUser})
	svc := NewDashboardService(tw.session, tw.riwayat)

	tw.gw.EXPECT().ListRequests(gomock.Any(), gomock.Any()).Return(&gateway.RequestList{Data: []model.Request{
		{ID: 1, StatusRequest: model.StatusDisetujui},
		{ID: 2, StatusRequest: model.StatusDisetujui},
		{ID: 3, StatusRequest: model.StatusDitolak},
	}}, nil).Times(1)
	tw.gw.EXPECT().DashboardStats(gomock.Any()).Return(&model.DashboardStats{TotalPengajuan: 3, TotalRiwayat: 3}, nil).Times(2)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Totals.TotalPengajuan)
	assert.Equal(t, "66.67", summary.ApprovalRate.String())
	assert.Equal(t, "33.33", summary.RejectionRate.String())

	// history already loaded, no second list call
	_, err = svc.Summary(context.Background())
	require.NoError(t, err)
}

func TestDashboardService_RequiresSession(t *testing.T) {
	tw := newTestWorkspace(t)
	_, err := NewDashboardService(tw.session, tw.riwayat).Summary(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestPercentage(t *testing.T) {
	assert.True(t, percentage(0, 0).IsZero())
	assert.Equal(t, "100", percentage(4, 4).String())
	assert.Equal(t, "12.5", percentage(1, 8).String())
}
