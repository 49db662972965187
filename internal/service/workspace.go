package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"portal/internal/gateway"
	"portal/internal/repository"
)

// Workspace holds every store of one browser client
type Workspace struct {
	ID            string
	Session       SessionService
	Notifications NotificationService
	Riwayat       RiwayatService
	Pengajuan     PengajuanService
	Persetujuan   PersetujuanService
	Pengguna      PenggunaService
	Dashboard     DashboardService

	initOnce sync.Once
	mu       sync.Mutex
	lastSeen time.Time
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
}

func (w *Workspace) idleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}

// SignOut ends the session and drops everything the signed-in user loaded
// or drafted, so the next login on this browser starts clean.
func (w *Workspace) SignOut(ctx context.Context) error {
	err := w.Session.Logout(ctx)
	w.Riwayat.Reset()
	w.Pengajuan.Reset()
	w.Persetujuan.Reset()
	w.Pengguna.Reset()
	w.Notifications.ClearAll()
	return err
}

// WorkspaceRegistry creates workspaces on first use and evicts idle ones.
// Evicted clients keep their stored token and are restored on the next visit.
type WorkspaceRegistry struct {
	mu         sync.Mutex
	workspaces map[string]*Workspace

	gw        gateway.Gateway
	storage   repository.StorageRepository
	tx        repository.TransactionManager
	publisher Publisher
	idleTTL   time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

func NewWorkspaceRegistry(gw gateway.Gateway, storage repository.StorageRepository, tx repository.TransactionManager, publisher Publisher, idleTTL time.Duration, logger *slog.Logger) *WorkspaceRegistry {
	return &WorkspaceRegistry{
		workspaces: make(map[string]*Workspace),
		gw:         gw,
		storage:    storage,
		tx:         tx,
		publisher:  publisher,
		idleTTL:    idleTTL,
		now:        time.Now,
		logger:     logger,
	}
}

func (r *WorkspaceRegistry) newWorkspace(id string) *Workspace {
	logger := r.logger.With("client", id)
	session := NewSessionService(id, r.gw, r.storage, r.tx, logger)
	notifications := NewNotificationService(id, r.publisher, nil, logger)
	riwayat := NewRiwayatService(r.gw, session, logger)

	return &Workspace{
		ID:            id,
		Session:       session,
		Notifications: notifications,
		Riwayat:       riwayat,
		Pengajuan:     NewPengajuanService(r.gw, session, notifications, riwayat, logger),
		Persetujuan:   NewPersetujuanService(r.gw, session, notifications, logger),
		Pengguna:      NewPenggunaService(r.gw, session, notifications, logger),
		Dashboard:     NewDashboardService(session, riwayat),
	}
}

// Get returns the workspace for id, restoring its session from storage the
// first time. Initialization runs outside the registry lock.
func (r *WorkspaceRegistry) Get(ctx context.Context, id string) *Workspace {
	r.mu.Lock()
	ws, ok := r.workspaces[id]
	if !ok {
		ws = r.newWorkspace(id)
		r.workspaces[id] = ws
	}
	r.mu.Unlock()

	ws.touch(r.now())
	ws.initOnce.Do(func() {
		ws.Session.Init(context.WithoutCancel(ctx))
	})
	return ws
}

// Lookup returns an existing workspace without creating one
func (r *WorkspaceRegistry) Lookup(id string) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.workspaces[id]
	return ws, ok
}

func (r *WorkspaceRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}

// Sweep drops workspaces idle for longer than the TTL and reports how many
func (r *WorkspaceRegistry) Sweep(now time.Time) int {
	if r.idleTTL <= 0 {
		return 0
	}

	r.mu.Lock()
	var evicted []*Workspace
	for id, ws := range r.workspaces {
		if now.Sub(ws.idleSince()) > r.idleTTL {
			evicted = append(evicted, ws)
			delete(r.workspaces, id)
		}
	}
	r.mu.Unlock()

	for _, ws := range evicted {
		ws.Notifications.ClearAll()
	}
	return len(evicted)
}

// RunJanitor sweeps idle workspaces every interval until ctx is done
func (r *WorkspaceRegistry) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := r.Sweep(now); n > 0 {
				r.logger.Debug("evicted idle workspaces", "count", n, "remaining", r.Len())
			}
		}
	}
}
