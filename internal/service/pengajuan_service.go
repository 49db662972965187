package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"portal/internal/gateway"
	"portal/internal/model"
)

var (
	ErrInvalidJenis     = errors.New("jenis request tidak dikenal")
	ErrRowOutOfRange    = errors.New("baris tidak ditemukan")
	ErrSubmissionFailed = errors.New("Gagal membuat pengajuan")
	ErrRequestNotFound  = errors.New("Pengajuan tidak ditemukan")
)

// submissionError carries the backend's own rejection text
type submissionError struct {
	message string
}

func (e *submissionError) Error() string { return e.message }

func (e *submissionError) Unwrap() error { return ErrSubmissionFailed }

// SubmitResult is returned by a successful submission
type SubmitResult struct {
	Success bool           `json:"success"`
	Request *model.Request `json:"request,omitempty"`
	Message string         `json:"message,omitempty"`
}

// PengajuanService is the submission form of one workspace
type PengajuanService interface {
	Form() model.FormView
	SetJenis(jenis string) (model.FormView, error)
	SetKeterangan(keterangan string) model.FormView
	AddRow(jenis string) (model.FormView, error)
	RemoveRow(jenis string, index int) (model.FormView, error)
	SetRow(jenis string, index int, row model.FormRow) (model.FormView, error)
	Reset() model.FormView
	Payload(user *model.User, today time.Time) model.RequestPayload
	Submit(ctx context.Context) (*SubmitResult, error)
	MyRequests(ctx context.Context) ([]model.Request, error)
	Detail(ctx context.Context, id int64) (*model.Request, error)
}

type pengajuanService struct {
	mu   sync.Mutex
	form model.FormState

	gw            gateway.Gateway
	session       SessionService
	notifications NotificationService
	riwayat       RiwayatService
	now           func() time.Time
	logger        *slog.Logger
}

func NewPengajuanService(gw gateway.Gateway, session SessionService, notifications NotificationService, riwayat RiwayatService, logger *slog.Logger) PengajuanService {
	return &pengajuanService{
		form:          model.NewFormState(),
		gw:            gw,
		session:       session,
		notifications: notifications,
		riwayat:       riwayat,
		now:           time.Now,
		logger:        logger,
	}
}

func (s *pengajuanService) Form() model.FormView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.View()
}

func (s *pengajuanService) SetJenis(jenis string) (model.FormView, error) {
	if !model.IsValidJenis(jenis) {
		return s.Form(), ErrInvalidJenis
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.JenisRequest = jenis
	return s.form.View(), nil
}

func (s *pengajuanService) SetKeterangan(keterangan string) model.FormView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Keterangan = keterangan
	return s.form.View()
}

func (s *pengajuanService) AddRow(jenis string) (model.FormView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.form.AddRow(jenis) {
		return s.form.View(), ErrInvalidJenis
	}
	return s.form.View(), nil
}

// RemoveRow is a no-op while only one row remains
func (s *pengajuanService) RemoveRow(jenis string, index int) (model.FormView, error) {
	if !model.IsValidJenis(jenis) {
		return s.Form(), ErrInvalidJenis
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= s.form.RowCount(jenis) {
		return s.form.View(), ErrRowOutOfRange
	}
	s.form.RemoveRow(jenis, index)
	return s.form.View(), nil
}

func (s *pengajuanService) SetRow(jenis string, index int, row model.FormRow) (model.FormView, error) {
	if !model.IsValidJenis(jenis) {
		return s.Form(), ErrInvalidJenis
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= s.form.RowCount(jenis) {
		return s.form.View(), ErrRowOutOfRange
	}
	s.form.SetRow(jenis, index, row)
	return s.form.View(), nil
}

func (s *pengajuanService) Reset() model.FormView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = model.NewFormState()
	return s.form.View()
}

func (s *pengajuanService) Payload(user *model.User, today time.Time) model.RequestPayload {
	unit := ""
	if user != nil {
		unit = user.Unit
	}
	s.mu.Lock()
	form := s.form.Clone()
	s.mu.Unlock()
	return form.Payload(unit, today.Format("2006-01-02"))
}

// Submit posts the current form. On success the form is reset, a toast is
// pushed and the history store reloads.
func (s *pengajuanService) Submit(ctx context.Context) (*SubmitResult, error) {
	user := s.session.User()
	if user == nil {
		return nil, ErrNotAuthenticated
	}

	payload := s.Payload(user, s.now())
	res, err := s.gw.CreateRequest(s.session.AuthContext(ctx), payload)
	if err != nil {
		s.logger.Error("failed to create pengajuan", "jenis", payload.Jenis(), "error", err)
		if err.Error() == "" {
			return nil, ErrSubmissionFailed
		}
		return nil, err
	}
	if res == nil || !res.Success {
		if res != nil && res.Message != "" {
			return nil, &submissionError{message: res.Message}
		}
		return nil, ErrSubmissionFailed
	}

	s.Reset()
	s.notifications.PengajuanCreated(payload.Jenis())
	if err := s.riwayat.Load(ctx); err != nil {
		s.logger.Warn("riwayat reload after submit failed", "error", err)
	}

	s.logger.Info("pengajuan created", "jenis", payload.Jenis(), "user", user.Username)
	return &SubmitResult{Success: true, Request: res.Request, Message: res.Message}, nil
}

func (s *pengajuanService) MyRequests(ctx context.Context) ([]model.Request, error) {
	if !s.session.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	return s.gw.MyRequests(s.session.AuthContext(ctx))
}

func (s *pengajuanService) Detail(ctx context.Context, id int64) (*model.Request, error) {
	if !s.session.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	req, err := s.gw.GetRequest(s.session.AuthContext(ctx), id)
	if err != nil {
		if gateway.StatusCode(err) == 404 {
			return nil, fmt.Errorf("%w: %d", ErrRequestNotFound, id)
		}
		return nil, err
	}
	return req, nil
}
