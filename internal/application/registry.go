package application

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bnema/mwa-bridge/internal/domain"
	"github.com/bnema/mwa-bridge/internal/ports"
	"github.com/rs/zerolog"
)

// Registry correlates wallet sessions and in-flight requests for one attached
// consumer. It is safe for concurrent use; notifications and completion
// actions always run outside the internal lock.
type Registry struct {
	notifier ports.Notifier
	metrics  ports.RegistryMetrics
	clock    ports.Clock
	logger   zerolog.Logger

	mu       sync.Mutex
	sessions map[domain.SessionID]domain.Session
	pending  map[domain.RequestID]pendingRequest
}

type pendingRequest struct {
	request  domain.PendingRequest
	complete domain.CompletionFunc
}

func NewRegistry(notifier ports.Notifier, metrics ports.RegistryMetrics, clock ports.Clock, logger zerolog.Logger) *Registry {
	if notifier == nil {
		notifier = ports.NotifierFunc(func(domain.Notification) {})
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Registry{
		notifier: notifier,
		metrics:  metrics,
		clock:    clock,
		logger:   logger.With().Str("component", "registry").Logger(),
		sessions: map[domain.SessionID]domain.Session{},
		pending:  map[domain.RequestID]pendingRequest{},
	}
}

// CreateSession registers a new active session. No transport is started here;
// see StartSession. Presence of the arguments is checked by the caller; empty
// strings are accepted.
func (r *Registry) CreateSession(walletName, config string) domain.SessionID {
	session := domain.Session{
		ID:         domain.NewSessionID(),
		WalletName: walletName,
		Config:     config,
		CreatedAt:  r.clock.Now(),
	}

	r.mu.Lock()
	r.sessions[session.ID] = session
	r.mu.Unlock()

	r.metrics.SessionCreated()
	r.logger.Debug().Str("session_id", string(session.ID)).Str("wallet", walletName).Msg("session created")

	return session.ID
}

// StartSession signals readiness for an existing session. Calling it more than
// once re-emits the ready notification.
func (r *Registry) StartSession(sessionID domain.SessionID) error {
	if !r.IsActive(sessionID) {
		return fmt.Errorf("start session %q: %w", sessionID, domain.ErrInvalidSession)
	}

	r.logger.Debug().Str("session_id", string(sessionID)).Msg("session ready")
	r.notifier.Notify(domain.ScenarioNotification(domain.MethodScenarioReady, sessionID))

	return nil
}

// CloseSession removes the session and emits the complete and teardown
// notifications in that order. Unknown ids are ignored. Pending requests of
// the session stay resolvable.
func (r *Registry) CloseSession(sessionID domain.SessionID) {
	r.mu.Lock()
	_, ok := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	r.mu.Unlock()

	if !ok {
		r.logger.Debug().Str("session_id", string(sessionID)).Msg("close of unknown session ignored")
		return
	}

	r.metrics.SessionClosed()
	r.logger.Debug().Str("session_id", string(sessionID)).Msg("session closed")

	r.notifier.Notify(domain.ScenarioNotification(domain.MethodScenarioComplete, sessionID))
	r.notifier.Notify(domain.ScenarioNotification(domain.MethodScenarioTeardownComplete, sessionID))
}

func (r *Registry) IsActive(sessionID domain.SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.sessions[sessionID]
	return ok
}

// ForwardRequest parks onResult under a fresh request id and notifies the
// consumer layer with a notification named methodName. The session is not
// required to be active.
func (r *Registry) ForwardRequest(methodName string, sessionID domain.SessionID, paramsJSON string, onResult domain.CompletionFunc) domain.RequestID {
	if onResult == nil {
		onResult = func(string) {}
	}

	request := domain.PendingRequest{
		ID:        domain.NewRequestID(),
		SessionID: sessionID,
		Method:    methodName,
		CreatedAt: r.clock.Now(),
	}

	r.mu.Lock()
	r.pending[request.ID] = pendingRequest{request: request, complete: onResult}
	count := len(r.pending)
	r.mu.Unlock()

	r.metrics.RequestForwarded(methodName)
	r.metrics.PendingRequests(count)
	r.logger.Debug().
		Str("request_id", string(request.ID)).
		Str("session_id", string(sessionID)).
		Str("method", methodName).
		Msg("request forwarded")

	r.notifier.Notify(domain.RequestNotification(methodName, request.ID, sessionID, paramsJSON))

	return request.ID
}

// ForwardRequestAsync is ForwardRequest with a one-shot channel as the
// completion action. The channel receives the result payload once and is
// never closed, so teardown leaves the receiver waiting.
func (r *Registry) ForwardRequestAsync(methodName string, sessionID domain.SessionID, paramsJSON string) (domain.RequestID, <-chan string) {
	result := make(chan string, 1)
	id := r.ForwardRequest(methodName, sessionID, paramsJSON, func(payload string) {
		result <- payload
	})
	return id, result
}

// ResolveRequest consumes the pending entry for requestID and invokes its
// completion action. It reports whether a pending request matched; an
// unmatched id, including the empty one, is not an error.
func (r *Registry) ResolveRequest(requestID domain.RequestID, resultPayload string) bool {
	r.mu.Lock()
	entry, ok := r.pending[requestID]
	delete(r.pending, requestID)
	count := len(r.pending)
	r.mu.Unlock()

	r.metrics.RequestResolved(ok)
	if !ok {
		r.logger.Warn().Str("request_id", string(requestID)).Msg("resolve for unknown request ignored")
		return false
	}
	r.metrics.PendingRequests(count)

	r.logger.Debug().
		Str("request_id", string(requestID)).
		Str("session_id", string(entry.request.SessionID)).
		Msg("request resolved")
	entry.complete(resultPayload)

	return true
}

// SendLifecycleEvent emits a session lifecycle notification such as
// onScenarioError.
func (r *Registry) SendLifecycleEvent(methodName string, sessionID domain.SessionID, errMessage string) {
	r.notifier.Notify(domain.LifecycleNotification(methodName, sessionID, errMessage))
}

// Teardown drops every session and pending request. Pending completion
// actions are discarded without being invoked.
func (r *Registry) Teardown() {
	r.mu.Lock()
	sessions, pending := len(r.sessions), len(r.pending)
	r.sessions = map[domain.SessionID]domain.Session{}
	r.pending = map[domain.RequestID]pendingRequest{}
	r.mu.Unlock()

	r.metrics.PendingRequests(0)
	r.logger.Debug().Int("sessions", sessions).Int("pending", pending).Msg("registry torn down")
}

func (r *Registry) Snapshot() domain.RegistrySnapshot {
	r.mu.Lock()
	snapshot := domain.RegistrySnapshot{
		Sessions: make([]domain.Session, 0, len(r.sessions)),
		Pending:  make([]domain.PendingRequest, 0, len(r.pending)),
	}
	for _, session := range r.sessions {
		snapshot.Sessions = append(snapshot.Sessions, session)
	}
	for _, entry := range r.pending {
		snapshot.Pending = append(snapshot.Pending, entry.request)
	}
	r.mu.Unlock()

	sort.Slice(snapshot.Sessions, func(i, j int) bool {
		if snapshot.Sessions[i].CreatedAt.Equal(snapshot.Sessions[j].CreatedAt) {
			return snapshot.Sessions[i].ID < snapshot.Sessions[j].ID
		}
		return snapshot.Sessions[i].CreatedAt.Before(snapshot.Sessions[j].CreatedAt)
	})
	sort.Slice(snapshot.Pending, func(i, j int) bool {
		if snapshot.Pending[i].CreatedAt.Equal(snapshot.Pending[j].CreatedAt) {
			return snapshot.Pending[i].ID < snapshot.Pending[j].ID
		}
		return snapshot.Pending[i].CreatedAt.Before(snapshot.Pending[j].CreatedAt)
	})

	return snapshot
}
