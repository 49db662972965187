package service

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"portal/internal/gateway"
	"portal/internal/model"
)

// ValidationError carries one message per invalid form field
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

// PenggunaService is the operator's user administration screen
type PenggunaService interface {
	List(ctx context.Context) ([]model.User, error)
	Create(ctx context.Context, req model.CreateUserRequest) (*model.User, error)
	Update(ctx context.Context, id string, req model.UpdateUserRequest) (*model.User, error)
	Delete(ctx context.Context, id string) error
	Reset()
}

type penggunaService struct {
	mu    sync.RWMutex
	users []model.User

	gw            gateway.Gateway
	session       SessionService
	notifications NotificationService
	logger        *slog.Logger
}

func NewPenggunaService(gw gateway.Gateway, session SessionService, notifications NotificationService, logger *slog.Logger) PenggunaService {
	return &penggunaService{
		users:         []model.User{},
		gw:            gw,
		session:       session,
		notifications: notifications,
		logger:        logger,
	}
}

func (s *penggunaService) authorize() error {
	if !s.session.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if !s.session.HasRole(model.RoleOperator) {
		return ErrAccessDenied
	}
	return nil
}

func (s *penggunaService) List(ctx context.Context) ([]model.User, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	if err := s.reload(ctx); err != nil {
		s.notifications.Error("Gagal", "Gagal memuat data pengguna")
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.User, len(s.users))
	copy(out, s.users)
	return out, nil
}

func (s *penggunaService) reload(ctx context.Context) error {
	users, err := s.gw.ListUsers(s.session.AuthContext(ctx))
	if err != nil {
		s.logger.Error("failed to load users", "error", err)
		return err
	}
	s.mu.Lock()
	s.users = users
	s.mu.Unlock()
	return nil
}

var validate = newValidator()

// newValidator reports fields under their json names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldMessages holds the form text per field and failed tag
var fieldMessages = map[string]map[string]string{
	"username": {"required": "Username wajib diisi"},
	"password": {"required": "Password wajib diisi"},
	"name":     {"required": "Nama wajib diisi"},
	"email":    {"required": "Email wajib diisi", "email": "Format email tidak valid"},
	"unit":     {"required": "Unit wajib diisi"},
	"role":     {"required": "Role wajib dipilih", "oneof": "Role tidak valid"},
}

// NewValidationError maps validator failures onto per-field messages. Errors
// of any other kind are returned unchanged.
func NewValidationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		msg, ok := fieldMessages[fe.Field()][fe.Tag()]
		if !ok {
			msg = fe.Field() + " tidak valid"
		}
		fields[fe.Field()] = msg
	}
	return &ValidationError{Fields: fields}
}

// normalizeNewUser trims the free-text fields so blanks fail "required"
func normalizeNewUser(req model.CreateUserRequest) model.CreateUserRequest {
	req.Username = strings.TrimSpace(req.Username)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Unit = strings.TrimSpace(req.Unit)
	return req
}

func (s *penggunaService) Create(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	req = normalizeNewUser(req)
	if err := validate.Struct(req); err != nil {
		return nil, NewValidationError(err)
	}

	res, err := s.gw.CreateUser(s.session.AuthContext(ctx), req)
	if err != nil {
		s.logger.Error("failed to create user", "username", req.Username, "error", err)
		s.notifications.Error("Gagal", messageOr(err, "Gagal menambahkan pengguna"))
		return nil, err
	}

	s.notifications.Success("Berhasil", "Pengguna berhasil ditambahkan")
	_ = s.reload(ctx)
	return res.User, nil
}

// Update never sends the id in the body; the backend takes it from the path
func (s *penggunaService) Update(ctx context.Context, id string, req model.UpdateUserRequest) (*model.User, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}

	res, err := s.gw.UpdateUser(s.session.AuthContext(ctx), id, req)
	if err != nil {
		s.logger.Error("failed to update user", "id", id, "error", err)
		s.notifications.Error("Gagal", messageOr(err, "Gagal memperbarui pengguna"))
		return nil, err
	}

	s.notifications.Success("Berhasil", "Pengguna berhasil diperbarui")
	_ = s.reload(ctx)
	return res.User, nil
}

func (s *penggunaService) Delete(ctx context.Context, id string) error {
	if err := s.authorize(); err != nil {
		return err
	}

	if _, err := s.gw.DeleteUser(s.session.AuthContext(ctx), id); err != nil {
		s.logger.Error("failed to delete user", "id", id, "error", err)
		s.notifications.Error("Gagal", "Gagal menghapus pengguna")
		return err
	}

	s.notifications.Success("Berhasil", "Pengguna berhasil dihapus")
	_ = s.reload(ctx)
	return nil
}

func (s *penggunaService) Reset() {
	s.mu.Lock()
	s.users = []model.User{}
	s.mu.Unlock()
}

func messageOr(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
