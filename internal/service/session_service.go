package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/go-multierror"

	"portal/internal/gateway"
	"portal/internal/model"
	"portal/internal/repository"
)

var (
	ErrNotAuthenticated = errors.New("Silakan login terlebih dahulu")
	ErrPasswordMismatch = errors.New("Password baru tidak cocok dengan konfirmasi")
	ErrPasswordTooShort = errors.New("Password minimal 6 karakter")
)

const minPasswordLength = 6

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResult reports the outcome of a login attempt. Failures are carried
// in Message rather than as errors.
type LoginResult struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	User    *model.User `json:"user,omitempty"`
}

type ProfileUpdate struct {
	Name  string `json:"name"`
	Unit  string `json:"unit"`
	Email string `json:"email" binding:"omitempty,email"`
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

type SessionState struct {
	Loading         bool        `json:"loading"`
	IsAuthenticated bool        `json:"isAuthenticated"`
	User            *model.User `json:"user"`
}

// SessionService owns the authenticated identity of one workspace
type SessionService interface {
	Init(ctx context.Context)
	Loading() bool
	Login(ctx context.Context, username, password string) LoginResult
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, update ProfileUpdate) (*model.User, error)
	ChangePassword(change PasswordChange) error

	User() *model.User
	Token() string
	IsAuthenticated() bool
	HasRole(roles ...string) bool
	State() SessionState

	// AuthContext returns ctx carrying the session token for gateway calls
	AuthContext(ctx context.Context) context.Context
}

type sessionService struct {
	mu      sync.RWMutex
	user    *model.User
	token   string
	loading bool

	namespace string
	gw        gateway.Gateway
	storage   repository.StorageRepository
	tx        repository.TransactionManager
	now       func() time.Time
	logger    *slog.Logger
}

// NewSessionService returns a session bound to the storage namespace of one
// client. Call Init before serving requests.
func NewSessionService(namespace string, gw gateway.Gateway, storage repository.StorageRepository, tx repository.TransactionManager, logger *slog.Logger) SessionService {
	return &sessionService{
		loading:   true,
		namespace: namespace,
		gw:        gw,
		storage:   storage,
		tx:        tx,
		now:       time.Now,
		logger:    logger,
	}
}

func (s *sessionService) Init(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	token, found, err := s.storage.GetItem(ctx, s.namespace, repository.KeyToken)
	if err != nil {
		s.logger.Error("failed to read stored token", "client", s.namespace, "error", err)
		return
	}
	if !found || token == "" {
		return
	}

	if s.expired(token) {
		s.logger.Debug("stored token expired", "client", s.namespace)
		s.clearStorage(ctx)
		return
	}

	user, err := s.gw.CurrentUser(gateway.WithToken(ctx, token))
	if err != nil {
		s.logger.Debug("stored token rejected by backend", "client", s.namespace, "error", err)
		s.clearStorage(ctx)
		return
	}

	s.mu.Lock()
	s.user = user
	s.token = token
	s.mu.Unlock()
}

// expired reports whether token is a JWT whose exp already passed. Opaque
// tokens are left for the backend to judge.
func (s *sessionService) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(s.now())
}

func (s *sessionService) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *sessionService) Login(ctx context.Context, username, password string) LoginResult {
	res, err := s.gw.Login(ctx, username, password)
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = "Login failed"
		}
		return LoginResult{Success: false, Message: msg}
	}

	if res == nil || res.Token == "" || res.User == nil {
		return LoginResult{Success: false, Message: "Invalid response format"}
	}

	if err := s.persist(ctx, res.User, res.Token); err != nil {
		s.logger.Error("failed to persist session", "client", s.namespace, "error", err)
	}

	s.mu.Lock()
	s.user = res.User
	s.token = res.Token
	s.mu.Unlock()

	s.logger.Info("user logged in", "client", s.namespace, "username", res.User.Username, "role", res.User.Role)
	return LoginResult{Success: true, User: res.User}
}

func (s *sessionService) persist(ctx context.Context, user *model.User, token string) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.storage.SetItem(txCtx, s.namespace, repository.KeyUser, string(raw)); err != nil {
			return err
		}
		if token == "" {
			return nil
		}
		return s.storage.SetItem(txCtx, s.namespace, repository.KeyToken, token)
	})
}

func (s *sessionService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	return s.gw.Register(ctx, req)
}

func (s *sessionService) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	return s.clearStorage(ctx)
}

func (s *sessionService) clearStorage(ctx context.Context) error {
	var result *multierror.Error
	for _, key := range []string{repository.KeyToken, repository.KeyUser} {
		if err := s.storage.RemoveItem(ctx, s.namespace, key); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		s.logger.Warn("failed to clear stored session", "client", s.namespace, "error", err)
		return err
	}
	return nil
}

// UpdateProfile merges the non-empty fields into the signed-in user. The
// backend has no self-service profile endpoint, so the change stays local.
func (s *sessionService) UpdateProfile(ctx context.Context, update ProfileUpdate) (*model.User, error) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	merged := *s.user
	if v := strings.TrimSpace(update.Name); v != "" {
		merged.Name = v
	}
	if v := strings.TrimSpace(update.Unit); v != "" {
		merged.Unit = v
	}
	if v := strings.TrimSpace(update.Email); v != "" {
		merged.Email = v
	}
	s.user = &merged
	s.mu.Unlock()

	if err := s.persist(ctx, &merged, ""); err != nil {
		return nil, err
	}
	return &merged, nil
}

func (s *sessionService) ChangePassword(change PasswordChange) error {
	if !s.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if change.NewPassword != change.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if len(change.NewPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

func (s *sessionService) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *sessionService) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *sessionService) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

func (s *sessionService) HasRole(roles ...string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return false
	}
	for _, role := range roles {
		if s.user.Role == role {
			return true
		}
	}
	return false
}

func (s *sessionService) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state := SessionState{Loading: s.loading, IsAuthenticated: s.user != nil}
	if s.user != nil {
		u := *s.user
		state.User = &u
	}
	return state
}

func (s *sessionService) AuthContext(ctx context.Context) context.Context {
	return gateway.WithToken(ctx, s.Token())
}
