package service

import (
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"portal/internal/gateway/mock"
	"portal/internal/model"
	"portal/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// fakeClock fires timers only when advanced
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var due []*fakeTimer
		for _, t := range c.timers {
			if !t.stopped && !t.fired && t.at <= c.now {
				t.fired = true
				due = append(due, t)
			}
		}
		c.mu.Unlock()

		if len(due) == 0 {
			return
		}
		for _, t := range due {
			t.f()
		}
	}
}

func (c *fakeClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type publishedEvent struct {
	Topic string
	Event string
	Data  json.RawMessage
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(topic string, payload []byte) {
	var env struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	_ = json.Unmarshal(payload, &env)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Topic: topic, Event: env.Event, Data: env.Data})
}

func (p *recordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.events))
	for _, e := range p.events {
		names = append(names, e.Event)
	}
	return names
}

// testWorkspace wires the services of one client around a mocked backend
type testWorkspace struct {
	gw            *mock.MockGateway
	storage       repository.StorageRepository
	clock         *fakeClock
	publisher     *recordingPublisher
	session       SessionService
	notifications NotificationService
	riwayat       RiwayatService
}

func newTestWorkspace(t *testing.T) *testWorkspace {
	t.Helper()
	ctrl := gomock.NewController(t)

	tw := &testWorkspace{
		gw:        mock.NewMockGateway(ctrl),
		storage:   repository.NewMemoryStorage(),
		clock:     &fakeClock{},
		publisher: &recordingPublisher{},
	}
	logger := discardLogger()
	tw.session = NewSessionService("client-1", tw.gw, tw.storage, repository.NewPassthroughTransactionManager(), logger)
	tw.notifications = NewNotificationService("client-1", tw.publisher, tw.clock.AfterFunc, logger)
	tw.riwayat = NewRiwayatService(tw.gw, tw.session, logger)
	return tw
}

// signIn puts the session straight into the authenticated state
func (tw *testWorkspace) signIn(t *testing.T, user model.User) {
	t.Helper()
	s := tw.session.(*sessionService)
	s.mu.Lock()
	s.user = &user
	s.token = "t-" + user.Username
	s.loading = false
	s.mu.Unlock()
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }
