package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"portal/internal/gateway"
	"portal/internal/gateway/mock"
	"portal/internal/model"
	"portal/internal/repository"
)

func TestWorkspaceRegistry_GetRestoresSessionOnce(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	gw := mock.NewMockGateway(ctrl)
	storage := repository.NewMemoryStorage()
	require.NoError(t, storage.SetItem(ctx, "client-1", repository.KeyToken, "opaque"))

	gw.EXPECT().CurrentUser(gomock.Any()).Return(&model.User{ID: "1", Username: "budi"}, nil).Times(1)

	reg := NewWorkspaceRegistry(gw, storage, repository.NewPassthroughTransactionManager(), &recordingPublisher{}, time.Hour, discardLogger())

	var wg sync.WaitGroup
	workspaces := make([]*Workspace, 8)
	for i := range workspaces {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			workspaces[i] = reg.Get(ctx, "client-1")
		}(i)
	}
	wg.Wait()

	for _, ws := range workspaces {
		assert.Same(t, workspaces[0], ws)
		assert.True(t, ws.Session.IsAuthenticated())
	}

	other := reg.Get(ctx, "client-2")
	assert.NotSame(t, workspaces[0], other)
	assert.False(t, other.Session.IsAuthenticated())
	assert.Equal(t, 2, reg.Len())
}

func TestWorkspaceRegistry_Sweep(t *testing.T) {
	ctx := context.Background()
	gw := mock.NewMockGateway(gomock.NewController(t))
	reg := NewWorkspaceRegistry(gw, repository.NewMemoryStorage(), repository.NewPassthroughTransactionManager(), nil, time.Minute, discardLogger())

	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return base }
	reg.Get(ctx, "old")
	reg.now = func() time.Time { return base.Add(50 * time.Second) }
	reg.Get(ctx, "fresh")

	assert.Equal(t, 1, reg.Sweep(base.Add(90*time.Second)))
	_, ok := reg.Lookup("old")
	assert.False(t, ok)
	_, ok = reg.Lookup("fresh")
	assert.True(t, ok)
}

func TestWorkspaceRegistry_RunJanitorStops(t *testing.T) {
	gw := mock.NewMockGateway(gomock.NewController(t))
	reg := NewWorkspaceRegistry(gw, repository.NewMemoryStorage(), repository.NewPassthroughTransactionManager(), nil, time.Minute, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reg.RunJanitor(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestWorkspace_SignOutClearsUserState(t *testing.T) {
	ctx := context.Background()
	gw := mock.NewMockGateway(gomock.NewController(t))
	reg := NewWorkspaceRegistry(gw, repository.NewMemoryStorage(), repository.NewPassthroughTransactionManager(), nil, time.Hour, discardLogger())
	ws := reg.Get(ctx, "client-1")

	gw.EXPECT().Login(gomock.Any(), "sari", "rahasia").
		Return(&gateway.LoginResponse{Token: "t-sari", User: &model.User{ID: "7", Name: "Sari", Role: model.RoleOperator}}, nil)
	gw.EXPECT().ListRequests(gomock.Any(), gomock.Any()).
		Return(&gateway.RequestList{Data: []model.Request{{ID: 41, StatusRequest: model.StatusDiajukan}}}, nil)
	gw.EXPECT().ListUsers(gomock.Any()).Return([]model.User{{ID: "7"}, {ID: "9"}}, nil)

	require.True(t, ws.Session.Login(ctx, "sari", "rahasia").Success)
	require.NoError(t, ws.Persetujuan.Load(ctx))
	_, err := ws.Persetujuan.OpenDetail(ctx, 41)
	require.NoError(t, err)
	_, err = ws.Pengguna.List(ctx)
	require.NoError(t, err)
	ws.Pengajuan.SetKeterangan("draft sari")
	ws.Notifications.Info("Info", "milik sari")

	require.NoError(t, ws.SignOut(ctx))
	assert.False(t, ws.Session.IsAuthenticated())
	assert.Empty(t, ws.Notifications.List())
	assert.Empty(t, ws.Pengajuan.Form().Keterangan)
	assert.False(t, ws.Riwayat.Snapshot().Loaded)
	assert.Empty(t, ws.Pengguna.(*penggunaService).users)

	gw.EXPECT().Login(gomock.Any(), "dewi", "rahasia").
		Return(&gateway.LoginResponse{Token: "t-dewi", User: &model.User{ID: "8", Name: "Dewi", Role: model.RoleOperator}}, nil)
	require.True(t, ws.Session.Login(ctx, "dewi", "rahasia").Success)

	queue, err := ws.Persetujuan.View(true)
	require.NoError(t, err)
	assert.Empty(t, queue.Requests)
	assert.Nil(t, queue.Selected)
}
