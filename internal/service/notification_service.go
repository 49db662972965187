package service

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"portal/internal/model"
)

const (
	DefaultToastDuration = 5 * time.Second
	ToastExitDelay       = 300 * time.Millisecond
)

// Notification events pushed to websocket subscribers
const (
	EventNotificationAdded   = "notification.added"
	EventNotificationUpdated = "notification.updated"
	EventNotificationRemoved = "notification.removed"
	EventNotificationCleared = "notification.cleared"
)

// Publisher delivers a payload to every subscriber of topic
type Publisher interface {
	Publish(topic string, payload []byte)
}

// Timer is the part of *time.Timer the toast lifecycle needs
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. Tests swap it for a manual clock.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type NotificationOption func(*model.Notification)

func WithDuration(d time.Duration) NotificationOption {
	return func(n *model.Notification) { n.Duration = d }
}

func WithAutoClose(autoClose bool) NotificationOption {
	return func(n *model.Notification) { n.AutoClose = autoClose }
}

func WithPosition(position string) NotificationOption {
	return func(n *model.Notification) { n.Position = position }
}

// NotificationService is the toast queue of one workspace
type NotificationService interface {
	Add(n model.Notification) string
	Success(title, message string, opts ...NotificationOption) string
	Error(title, message string, opts ...NotificationOption) string
	Warning(title, message string, opts ...NotificationOption) string
	Info(title, message string, opts ...NotificationOption) string
	Pending(title, message string, opts ...NotificationOption) string
	Approved(title, message string, opts ...NotificationOption) string
	Rejected(title, message string, opts ...NotificationOption) string

	PengajuanCreated(jenis string) string
	PengajuanApproved(jenis, approver string) string
	PengajuanRejected(jenis, approver, reason string) string
	PengajuanProcessed(jenis, processor string) string
	PengajuanCompleted(jenis, completer string) string

	Dismiss(id string) bool
	Remove(id string) bool
	ClearAll()
	List() []model.Notification
}

type toastTimers struct {
	autoClose Timer
	exit      Timer
}

func (t toastTimers) stop() {
	if t.autoClose != nil {
		t.autoClose.Stop()
	}
	if t.exit != nil {
		t.exit.Stop()
	}
}

type notificationEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type notificationService struct {
	mu        sync.Mutex
	items     []model.Notification
	timers    map[string]toastTimers
	topic     string
	publisher Publisher
	afterFunc AfterFunc
	logger    *slog.Logger
}

// NewNotificationService returns a queue publishing its events on topic.
// publisher and afterFunc may be nil.
func NewNotificationService(topic string, publisher Publisher, afterFunc AfterFunc, logger *slog.Logger) NotificationService {
	if afterFunc == nil {
		afterFunc = realAfterFunc
	}
	return &notificationService{
		timers:    make(map[string]toastTimers),
		topic:     topic,
		publisher: publisher,
		afterFunc: afterFunc,
		logger:    logger,
	}
}

// Add queues n as given. An empty Type becomes info; AutoClose is taken from
// the caller, only the typed constructors apply the per-type auto-close policy.
func (s *notificationService) Add(n model.Notification) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	n.ID = id.String()
	n.CreatedAt = time.Now()
	if n.Type == "" {
		n.Type = model.NotificationInfo
	}
	if n.Position == "" {
		n.Position = model.PositionTopRight
	}
	if n.Duration <= 0 {
		n.Duration = DefaultToastDuration
	}
	n.State = model.ToastIdle

	s.mu.Lock()
	n.State = model.ToastVisible
	var timers toastTimers
	if n.AutoClose {
		timers.autoClose = s.afterFunc(n.Duration, func() { s.Dismiss(n.ID) })
	}
	s.timers[n.ID] = timers
	s.items = append(s.items, n)
	s.mu.Unlock()

	s.logger.Debug("notification added", "id", n.ID, "type", n.Type, "title", n.Title)
	s.publish(EventNotificationAdded, n)
	return n.ID
}

func (s *notificationService) build(kind, title, message string, duration time.Duration, autoClose bool, opts []NotificationOption) string {
	n := model.Notification{
		Type:      kind,
		Title:     title,
		Message:   message,
		Duration:  duration,
		AutoClose: autoClose,
		Position:  model.PositionTopRight,
	}
	for _, opt := range opts {
		opt(&n)
	}
	return s.Add(n)
}

func (s *notificationService) Success(title, message string, opts ...NotificationOption) string {
	return s.build(model.NotificationSuccess, title, message, 4*time.Second, true, opts)
}

func (s *notificationService) Error(title, message string, opts ...NotificationOption) string {
	return s.build(model.NotificationError, title, message, 6*time.Second, false, opts)
}

func (s *notificationService) Warning(title, message string, opts ...NotificationOption) string {
	return s.build(model.NotificationWarning, title, message, 5*time.Second, true, opts)
}

func (s *notificationService) Info(title, message string, opts ...NotificationOption) string {
	return s.build(model.NotificationInfo, title, message, 4*time.Second, true, opts)
}

func (s *notificationService) Pending(title, message string, opts ...NotificationOption) string {
	return s.build(model.NotificationPending, title, message, 3*time.Second, true, opts)
}

func (s *notificationService) Approved(title, message string, opts ...NotificationOption) string {
	return s.build(model.NotificationApproved, title, message, 4*time.Second, true, opts)
}

func (s *notificationService) Rejected(title, message string, opts ...NotificationOption) string {
	return s.build(model.NotificationRejected, title, message, 5*time.Second, false, opts)
}

func (s *notificationService) PengajuanCreated(jenis string) string {
	return s.Success(
		"Pengajuan Berhasil Dibuat!",
		fmt.Sprintf("Pengajuan %s telah berhasil dibuat dan sedang menunggu persetujuan.", jenis),
		WithPosition(model.PositionTopCenter),
	)
}

func (s *notificationService) PengajuanApproved(jenis, approver string) string {
	return s.Approved(
		"Pengajuan Disetujui!",
		fmt.Sprintf("Pengajuan %s telah disetujui oleh %s.", jenis, approver),
		WithPosition(model.PositionTopCenter),
	)
}

func (s *notificationService) PengajuanRejected(jenis, approver, reason string) string {
	message := fmt.Sprintf("Pengajuan %s ditolak oleh %s.", jenis, approver)
	if reason != "" {
		message += " Alasan: " + reason
	}
	return s.Rejected("Pengajuan Ditolak", message, WithPosition(model.PositionTopCenter))
}

func (s *notificationService) PengajuanProcessed(jenis, processor string) string {
	return s.Pending(
		"Pengajuan Sedang Diproses",
		fmt.Sprintf("Pengajuan %s sedang diproses oleh %s.", jenis, processor),
		WithPosition(model.PositionTopCenter),
	)
}

func (s *notificationService) PengajuanCompleted(jenis, completer string) string {
	return s.Success(
		"Pengajuan Selesai",
		fmt.Sprintf("Pengajuan %s telah selesai diproses oleh %s.", jenis, completer),
		WithPosition(model.PositionTopCenter),
	)
}

// Dismiss starts the exit animation; the toast is dropped after ToastExitDelay
func (s *notificationService) Dismiss(id string) bool {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	if s.items[idx].State != model.ToastVisible {
		s.mu.Unlock()
		return true
	}

	timers := s.timers[id]
	if timers.autoClose != nil {
		timers.autoClose.Stop()
		timers.autoClose = nil
	}
	s.items[idx].State = model.ToastDismissing
	timers.exit = s.afterFunc(ToastExitDelay, func() { s.finish(id) })
	s.timers[id] = timers
	updated := s.items[idx]
	s.mu.Unlock()

	s.publish(EventNotificationUpdated, updated)
	return true
}

func (s *notificationService) finish(id string) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 || s.items[idx].State != model.ToastDismissing {
		s.mu.Unlock()
		return
	}
	removed := s.drop(idx)
	s.mu.Unlock()

	s.publish(EventNotificationRemoved, removed)
}

// Remove drops the toast immediately, cancelling its timers
func (s *notificationService) Remove(id string) bool {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	removed := s.drop(idx)
	s.mu.Unlock()

	s.publish(EventNotificationRemoved, removed)
	return true
}

func (s *notificationService) ClearAll() {
	s.mu.Lock()
	for _, t := range s.timers {
		t.stop()
	}
	s.timers = make(map[string]toastTimers)
	s.items = nil
	s.mu.Unlock()

	s.publish(EventNotificationCleared, nil)
}

func (s *notificationService) List() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Notification, len(s.items))
	copy(out, s.items)
	return out
}

// drop must be called with mu held
func (s *notificationService) drop(idx int) model.Notification {
	n := s.items[idx]
	if t, ok := s.timers[n.ID]; ok {
		t.stop()
		delete(s.timers, n.ID)
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	n.State = model.ToastRemoved
	return n
}

func (s *notificationService) indexOf(id string) int {
	for i, n := range s.items {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (s *notificationService) publish(event string, data any) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(notificationEvent{Event: event, Data: data})
	if err != nil {
		s.logger.Error("failed to encode notification event", "event", event, "error", err)
		return
	}
	s.publisher.Publish(s.topic, payload)
}
