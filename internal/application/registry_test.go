package application

import (
	"sync"
	"testing"
	"time"

	"github.com/bnema/mwa-bridge/internal/domain"
	"github.com/bnema/mwa-bridge/internal/ports"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() (*Registry, *recordingNotifier, *countingMetrics) {
	notifier := &recordingNotifier{}
	metrics := newCountingMetrics()
	clock := fixedClock{now: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)}
	return NewRegistry(notifier, metrics, clock, zerolog.Nop()), notifier, metrics
}

func TestCreateSessionIssuesUniqueActiveIDs(t *testing.T) {
	t.Parallel()

	registry, notifier, metrics := newTestRegistry()

	seen := map[domain.SessionID]struct{}{}
	for i := 0; i < 50; i++ {
		id := registry.CreateSession("Fake Wallet", `{"maxTransactionsPerSigningRequest":10}`)
		require.NotEmpty(t, id)
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
		assert.True(t, registry.IsActive(id))
	}

	assert.Empty(t, notifier.methods())
	assert.Equal(t, 50, metrics.created)
	assert.Len(t, registry.Snapshot().Sessions, 50)
}

func TestCreateSessionAcceptsEmptyStrings(t *testing.T) {
	t.Parallel()

	registry, _, metrics := newTestRegistry()

	id := registry.CreateSession("", "")
	require.NotEmpty(t, id)
	assert.True(t, registry.IsActive(id))
	assert.Equal(t, 1, metrics.created)

	sessions := registry.Snapshot().Sessions
	require.Len(t, sessions, 1)
	assert.Equal(t, "", sessions[0].WalletName)
}

func TestStartSessionUnknownIDFailsWithInvalidSession(t *testing.T) {
	t.Parallel()

	registry, notifier, _ := newTestRegistry()

	err := registry.StartSession("missing")
	require.ErrorIs(t, err, domain.ErrInvalidSession)
	assert.Empty(t, notifier.methods())
}

func TestStartSessionEmitsReadyEveryCall(t *testing.T) {
	t.Parallel()

	registry, notifier, _ := newTestRegistry()
	id := registry.CreateSession("Fake Wallet", "{}")

	require.NoError(t, registry.StartSession(id))
	require.NoError(t, registry.StartSession(id))

	assert.Equal(t, []string{domain.MethodScenarioReady, domain.MethodScenarioReady}, notifier.methods())
	assert.Equal(t, string(id), notifier.last().Args[domain.ArgSessionID])
}

func TestCloseSessionEmitsCompleteThenTeardown(t *testing.T) {
	t.Parallel()

	registry, notifier, metrics := newTestRegistry()
	id := registry.CreateSession("Fake Wallet", "{}")

	registry.CloseSession(id)

	assert.False(t, registry.IsActive(id))
	assert.Equal(t, []string{domain.MethodScenarioComplete, domain.MethodScenarioTeardownComplete}, notifier.methods())
	for _, n := range notifier.notifications {
		assert.Equal(t, string(id), n.Args[domain.ArgSessionID])
	}
	assert.Equal(t, 1, metrics.closed)

	registry.CloseSession(id)
	assert.Len(t, notifier.methods(), 2)
	require.ErrorIs(t, registry.StartSession(id), domain.ErrInvalidSession)
}

func TestCloseSessionUnknownIDIsSilent(t *testing.T) {
	t.Parallel()

	registry, notifier, metrics := newTestRegistry()

	registry.CloseSession("never-created")
	registry.CloseSession("")

	assert.Empty(t, notifier.methods())
	assert.Zero(t, metrics.closed)
}

func TestForwardThenResolveInvokesCompletionOnce(t *testing.T) {
	t.Parallel()

	registry, notifier, metrics := newTestRegistry()

	var calls []string
	id := registry.ForwardRequest(domain.MethodSignMessagesRequest, "s-1", `{"payloads":["aGk="]}`, func(result string) {
		calls = append(calls, result)
	})

	require.NotEmpty(t, id)
	n := notifier.last()
	assert.Equal(t, domain.MethodSignMessagesRequest, n.Method)
	assert.Equal(t, map[string]any{
		domain.ArgRequestID:  string(id),
		domain.ArgSessionID:  "s-1",
		domain.ArgParamsJSON: `{"payloads":["aGk="]}`,
	}, n.Args)
	assert.Equal(t, 1, metrics.pending)

	resolved := registry.ResolveRequest(id, `{"signed_payloads":["c2ln"]}`)
	assert.True(t, resolved)

	resolved = registry.ResolveRequest(id, `{"second":true}`)
	assert.False(t, resolved)

	assert.Equal(t, []string{`{"signed_payloads":["c2ln"]}`}, calls)
	assert.Equal(t, 1, metrics.matched)
	assert.Equal(t, 1, metrics.unmatched)
	assert.Zero(t, metrics.pending)
	assert.Empty(t, registry.Snapshot().Pending)
}

func TestResolveNeverIssuedIDIsNoOpSuccess(t *testing.T) {
	t.Parallel()

	registry, _, _ := newTestRegistry()
	called := false
	registry.ForwardRequest(domain.MethodAuthorizeRequest, "s-1", "{}", func(string) { called = true })

	resolved := registry.ResolveRequest("not-a-request", `{"ok":true}`)
	assert.False(t, resolved)
	assert.False(t, called)
	assert.Len(t, registry.Snapshot().Pending, 1)
}

func TestResolveEmptyRequestIDIsUnmatched(t *testing.T) {
	t.Parallel()

	registry, _, metrics := newTestRegistry()
	called := false
	registry.ForwardRequest(domain.MethodAuthorizeRequest, "s-1", "{}", func(string) { called = true })

	assert.False(t, registry.ResolveRequest("", `{"ok":true}`))
	assert.False(t, called)
	assert.Equal(t, 1, metrics.unmatched)
	assert.Len(t, registry.Snapshot().Pending, 1)
}

func TestResolveAcceptsEmptyPayload(t *testing.T) {
	t.Parallel()

	registry, _, _ := newTestRegistry()
	got := "unset"
	id := registry.ForwardRequest(domain.MethodAuthorizeRequest, "s-1", "{}", func(result string) { got = result })

	resolved := registry.ResolveRequest(id, "")
	assert.True(t, resolved)
	assert.Equal(t, "", got)
}

func TestTeardownDiscardsPendingWithoutInvoking(t *testing.T) {
	t.Parallel()

	registry, _, metrics := newTestRegistry()
	sessionID := registry.CreateSession("Fake Wallet", "{}")

	called := false
	requestID := registry.ForwardRequest(domain.MethodAuthorizeRequest, sessionID, "{}", func(string) { called = true })

	registry.Teardown()

	resolved := registry.ResolveRequest(requestID, `{"ok":true}`)
	assert.False(t, resolved)
	assert.False(t, called)
	assert.False(t, registry.IsActive(sessionID))
	assert.Zero(t, metrics.pending)

	snapshot := registry.Snapshot()
	assert.Empty(t, snapshot.Sessions)
	assert.Empty(t, snapshot.Pending)
}

func TestPendingRequestSurvivesSessionClose(t *testing.T) {
	t.Parallel()

	registry, _, _ := newTestRegistry()
	sessionID := registry.CreateSession("Fake Wallet", "{}")

	requestID, result := registry.ForwardRequestAsync(domain.MethodAuthorizeRequest, sessionID, "{}")
	registry.CloseSession(sessionID)

	resolved := registry.ResolveRequest(requestID, `{"late":true}`)
	assert.True(t, resolved)
	assert.Equal(t, `{"late":true}`, <-result)
}

func TestSendLifecycleEvent(t *testing.T) {
	t.Parallel()

	registry, notifier, _ := newTestRegistry()

	registry.SendLifecycleEvent(domain.MethodScenarioError, "s-1", "association failed")

	n := notifier.last()
	assert.Equal(t, domain.MethodScenarioError, n.Method)
	assert.Equal(t, "association failed", n.Args[domain.ArgError])
}

func TestConsumerCanResolveFromInsideNotification(t *testing.T) {
	t.Parallel()

	var registry *Registry
	notifier := &recordingNotifier{}
	registry = NewRegistry(nil, nil, nil, zerolog.Nop())
	registry.notifier = ports.NotifierFunc(func(n domain.Notification) {
		notifier.Notify(n)
		if n.Method == domain.MethodAuthorizeRequest {
			assert.True(t, registry.ResolveRequest(domain.RequestID(n.Args[domain.ArgRequestID].(string)), `{"ok":true}`))
		}
	})

	_, result := registry.ForwardRequestAsync(domain.MethodAuthorizeRequest, "s-1", "{}")

	select {
	case payload := <-result:
		assert.Equal(t, `{"ok":true}`, payload)
	case <-time.After(time.Second):
		t.Fatal("completion not delivered")
	}
}

func TestAuthorizeScenario(t *testing.T) {
	t.Parallel()

	registry, notifier, _ := newTestRegistry()

	sessionID := registry.CreateSession("Fake Wallet", "{}")
	require.NoError(t, registry.StartSession(sessionID))
	assert.Equal(t, []string{domain.MethodScenarioReady}, notifier.methods())

	requestID, result := registry.ForwardRequestAsync(domain.MethodAuthorizeRequest, sessionID, `{"identity_name":"dApp"}`)
	n := notifier.last()
	assert.Equal(t, domain.MethodAuthorizeRequest, n.Method)
	assert.Equal(t, string(requestID), n.Args[domain.ArgRequestID])

	resolved := registry.ResolveRequest(requestID, `{"ok":true}`)
	require.True(t, resolved)
	assert.Equal(t, `{"ok":true}`, <-result)

	registry.CloseSession(sessionID)
	assert.Equal(t, []string{
		domain.MethodScenarioReady,
		domain.MethodAuthorizeRequest,
		domain.MethodScenarioComplete,
		domain.MethodScenarioTeardownComplete,
	}, notifier.methods())
}

func TestConcurrentForwardAndResolve(t *testing.T) {
	t.Parallel()

	registry, _, metrics := newTestRegistry()
	sessionID := registry.CreateSession("Fake Wallet", "{}")

	const workers = 16
	const perWorker = 64

	var invoked sync.Map
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				var id domain.RequestID
				id = registry.ForwardRequest(domain.MethodSignTransactionsRequest, sessionID, "{}", func(string) {
					_, dup := invoked.LoadOrStore(id, true)
					assert.False(t, dup)
				})
				var resolvers sync.WaitGroup
				for k := 0; k < 3; k++ {
					resolvers.Add(1)
					go func() {
						defer resolvers.Done()
						registry.ResolveRequest(id, "{}")
					}()
				}
				resolvers.Wait()
			}
		}()
	}
	wg.Wait()

	count := 0
	invoked.Range(func(_, _ any) bool {
		count++
		return true
	})
	assert.Equal(t, workers*perWorker, count)
	assert.Equal(t, workers*perWorker, metrics.matched)
	assert.Empty(t, registry.Snapshot().Pending)
}
