package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"portal/internal/gateway"
	"portal/internal/model"
)

var (
	ErrAccessDenied  = errors.New("Halaman ini hanya dapat diakses oleh operator.")
	ErrInvalidStatus = errors.New("status_request tidak valid")
)

const (
	statusUpdateFailedTitle   = "Gagal Mengupdate Status"
	statusUpdateFailedMessage = "Terjadi kesalahan saat mengupdate status pengajuan. Silakan coba lagi."
)

// ApprovalQueue is the operator's view of pending and past requests
type ApprovalQueue struct {
	Requests     []model.Request `json:"requests"`
	PendingCount int             `json:"pendingCount"`
	ShowAll      bool            `json:"showAll"`
	Selected     *model.Request  `json:"selectedRequest,omitempty"`
	Loading      bool            `json:"loading"`
	Error        string          `json:"error,omitempty"`
}

// PersetujuanService is the approval queue of one operator workspace
type PersetujuanService interface {
	Load(ctx context.Context) error
	View(showAll bool) (ApprovalQueue, error)
	OpenDetail(ctx context.Context, id int64) (*model.Request, error)
	CloseDetail()
	UpdateStatus(ctx context.Context, id int64, status, keterangan string) error
	Approve(ctx context.Context, id int64, keterangan string) error
	Reject(ctx context.Context, id int64, reason string) error
	Process(ctx context.Context, id int64, keterangan string) error
	Complete(ctx context.Context, id int64, keterangan string) error
	Reset()
}

type persetujuanService struct {
	mu       sync.RWMutex
	requests []model.Request
	selected *model.Request
	loading  bool
	errText  string

	// generation is bumped by Reset; loads started before it are discarded
	generation uint64

	gw            gateway.Gateway
	session       SessionService
	notifications NotificationService
	logger        *slog.Logger
}

func NewPersetujuanService(gw gateway.Gateway, session SessionService, notifications NotificationService, logger *slog.Logger) PersetujuanService {
	return &persetujuanService{
		requests:      []model.Request{},
		gw:            gw,
		session:       session,
		notifications: notifications,
		logger:        logger,
	}
}

// authorize returns the signed-in operator. The user is read once so a
// concurrent logout cannot leave a nil user behind the checks.
func (s *persetujuanService) authorize() (*model.User, error) {
	user := s.session.User()
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	if user.Role != model.RoleOperator {
		return nil, ErrAccessDenied
	}
	return user, nil
}

func (s *persetujuanService) Load(ctx context.Context) error {
	if _, err := s.authorize(); err != nil {
		return err
	}

	s.mu.Lock()
	s.loading = true
	gen := s.generation
	s.mu.Unlock()

	list, err := s.gw.ListRequests(s.session.AuthContext(ctx), gateway.ListRequestsParams{})

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return nil
	}
	s.loading = false
	if err != nil {
		s.logger.Error("failed to load approval queue", "error", err)
		s.errText = err.Error()
		return err
	}
	s.errText = ""
	s.requests = list.Data
	return nil
}

// View lists DIAJUKAN requests only unless showAll is set
func (s *persetujuanService) View(showAll bool) (ApprovalQueue, error) {
	if _, err := s.authorize(); err != nil {
		return ApprovalQueue{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	queue := ApprovalQueue{
		Requests: make([]model.Request, 0, len(s.requests)),
		ShowAll:  showAll,
		Loading:  s.loading,
		Error:    s.errText,
	}
	for _, r := range s.requests {
		if r.StatusRequest == model.StatusDiajukan {
			queue.PendingCount++
		}
		if showAll || r.StatusRequest == model.StatusDiajukan {
			queue.Requests = append(queue.Requests, r)
		}
	}
	if s.selected != nil {
		sel := *s.selected
		queue.Selected = &sel
	}
	return queue, nil
}

// OpenDetail selects a request from the loaded queue, fetching it when the
// queue does not hold it.
func (s *persetujuanService) OpenDetail(ctx context.Context, id int64) (*model.Request, error) {
	if _, err := s.authorize(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	var found *model.Request
	for i := range s.requests {
		if s.requests[i].ID == id {
			r := s.requests[i]
			found = &r
			break
		}
	}
	s.mu.RUnlock()

	if found == nil {
		req, err := s.gw.GetRequest(s.session.AuthContext(ctx), id)
		if err != nil {
			if gateway.StatusCode(err) == 404 {
				return nil, ErrRequestNotFound
			}
			return nil, err
		}
		found = req
	}

	s.mu.Lock()
	s.selected = found
	s.mu.Unlock()

	out := *found
	return &out, nil
}

func (s *persetujuanService) CloseDetail() {
	s.mu.Lock()
	s.selected = nil
	s.mu.Unlock()
}

// UpdateStatus sends the decision, notifies, reloads the queue and closes the
// detail view. The queue is not re-read before writing; concurrent operators
// overwrite each other.
func (s *persetujuanService) UpdateStatus(ctx context.Context, id int64, status, keterangan string) error {
	user, err := s.authorize()
	if err != nil {
		return err
	}
	if !model.IsValidStatus(status) {
		return ErrInvalidStatus
	}

	update := model.StatusUpdate{
		StatusRequest: status,
		ApprovedBy:    user.Name,
		Keterangan:    keterangan,
	}

	if _, err := s.gw.UpdateRequestStatus(s.session.AuthContext(ctx), id, update); err != nil {
		s.logger.Error("failed to update request status", "id", id, "status", status, "error", err)
		s.notifications.Error(statusUpdateFailedTitle, statusUpdateFailedMessage)
		return err
	}

	jenis := s.jenisOf(id)
	switch status {
	case model.StatusDisetujui:
		s.notifications.PengajuanApproved(jenis, user.Name)
	case model.StatusDitolak:
		s.notifications.PengajuanRejected(jenis, user.Name, keterangan)
	case model.StatusDiproses:
		s.notifications.PengajuanProcessed(jenis, user.Name)
	case model.StatusSelesai:
		s.notifications.PengajuanCompleted(jenis, user.Name)
	}

	s.logger.Info("request status updated", "id", id, "status", status, "by", user.Name)

	if err := s.Load(ctx); err != nil {
		s.logger.Warn("approval queue reload failed", "error", err)
	}
	s.CloseDetail()
	return nil
}

func (s *persetujuanService) jenisOf(id int64) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected != nil && s.selected.ID == id {
		return s.selected.JenisRequest
	}
	for _, r := range s.requests {
		if r.ID == id {
			return r.JenisRequest
		}
	}
	return "request"
}

// Reset drops the loaded queue and the open detail
func (s *persetujuanService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.requests = []model.Request{}
	s.selected = nil
	s.loading = false
	s.errText = ""
}

func (s *persetujuanService) Approve(ctx context.Context, id int64, keterangan string) error {
	return s.UpdateStatus(ctx, id, model.StatusDisetujui, keterangan)
}

func (s *persetujuanService) Reject(ctx context.Context, id int64, reason string) error {
	return s.UpdateStatus(ctx, id, model.StatusDitolak, reason)
}

func (s *persetujuanService) Process(ctx context.Context, id int64, keterangan string) error {
	return s.UpdateStatus(ctx, id, model.StatusDiproses, keterangan)
}

func (s *persetujuanService) Complete(ctx context.Context, id int64, keterangan string) error {
	return s.UpdateStatus(ctx, id, model.StatusSelesai, keterangan)
}
