package application

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/mwa-bridge/internal/domain"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type recordingNotifier struct {
	mu            sync.Mutex
	notifications []domain.Notification
}

func (n *recordingNotifier) Notify(notification domain.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, notification)
}

func (n *recordingNotifier) methods() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	methods := make([]string, 0, len(n.notifications))
	for _, notification := range n.notifications {
		methods = append(methods, notification.Method)
	}
	return methods
}

func (n *recordingNotifier) last() domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.notifications[len(n.notifications)-1]
}

type countingMetrics struct {
	mu        sync.Mutex
	created   int
	closed    int
	forwarded map[string]int
	matched   int
	unmatched int
	pending   int
	launches  map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{forwarded: map[string]int{}, launches: map[string]int{}}
}

func (m *countingMetrics) SessionCreated() { m.mu.Lock(); m.created++; m.mu.Unlock() }
func (m *countingMetrics) SessionClosed()  { m.mu.Lock(); m.closed++; m.mu.Unlock() }
func (m *countingMetrics) RequestForwarded(method string) {
	m.mu.Lock()
	m.forwarded[method]++
	m.mu.Unlock()
}
func (m *countingMetrics) RequestResolved(matched bool) {
	m.mu.Lock()
	if matched {
		m.matched++
	} else {
		m.unmatched++
	}
	m.mu.Unlock()
}
func (m *countingMetrics) PendingRequests(count int) { m.mu.Lock(); m.pending = count; m.mu.Unlock() }
func (m *countingMetrics) LaunchAttempt(outcome string) {
	m.mu.Lock()
	m.launches[outcome]++
	m.mu.Unlock()
}

type fakeOpener struct {
	opened []string
	err    error
}

func (o *fakeOpener) Open(_ context.Context, uri string) error {
	if o.err != nil {
		return o.err
	}
	o.opened = append(o.opened, uri)
	return nil
}

type fakeResolver struct {
	queried   []string
	available bool
	err       error
}

func (r *fakeResolver) HasHandler(_ context.Context, uri string) (bool, error) {
	r.queried = append(r.queried, uri)
	return r.available, r.err
}
