package cmd

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/mwa-bridge/internal/adapters/render/transcript"
	"github.com/bnema/mwa-bridge/internal/application"
	"github.com/bnema/mwa-bridge/internal/domain"
	"github.com/spf13/cobra"
)

const demoAuthorizeParams = `{"identity":{"name":"mwa demo","uri":"https://example.invalid"},"cluster":"devnet"}`

var errDemoTimeout = errors.New("timed out waiting for request resolution")

type demoOptions struct {
	walletName string
	resultJSON string
	delay      time.Duration
	timeout    time.Duration
}

func newDemoCmd(app *app) *cobra.Command {
	opts := demoOptions{}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a scripted wallet session against an in-process registry",
		Long:  "demo creates and starts a session, forwards an onAuthorizeRequest from a scripted wallet collaborator, resolves it as the consumer layer, closes the session and prints the transcript.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDemo(cmd, app, opts)
		},
	}

	cmd.Flags().StringVar(&opts.walletName, "wallet-name", "Demo Wallet", "Wallet name passed to createScenario")
	cmd.Flags().StringVar(&opts.resultJSON, "result", `{"ok":true}`, "Payload the consumer resolves the request with")
	cmd.Flags().DurationVar(&opts.delay, "delay", 300*time.Millisecond, "Consumer think time before resolving")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "How long the collaborator waits for resolution")

	return cmd
}

// demoRecorder is the consumer layer of the demo: it records every
// notification and answers request notifications.
type demoRecorder struct {
	now       func() time.Time
	onRequest func(domain.RequestID)

	mu      sync.Mutex
	entries []transcript.Entry
}

func (r *demoRecorder) record(kind transcript.EntryKind, method string, args map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, transcript.Entry{At: r.now(), Kind: kind, Method: method, Args: args})
}

func (r *demoRecorder) Notify(n domain.Notification) {
	r.record(transcript.KindNotification, n.Method, n.Args)

	if requestID, ok := n.Args[domain.ArgRequestID].(string); ok && r.onRequest != nil {
		r.onRequest(domain.RequestID(requestID))
	}
}

func (r *demoRecorder) snapshot() []transcript.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]transcript.Entry(nil), r.entries...)
}

func runDemo(cmd *cobra.Command, app *app, opts demoOptions) error {
	recorder := &demoRecorder{now: app.now}
	registry := application.NewRegistry(recorder, app.metrics, app.clock, app.logger)
	defer registry.Teardown()

	var consumers sync.WaitGroup
	defer consumers.Wait()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	recorder.onRequest = func(requestID domain.RequestID) {
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			select {
			case <-time.After(opts.delay):
			case <-ctx.Done():
				return
			}
			recorder.record(transcript.KindCommand, "resolveRequest", map[string]any{
				domain.ArgRequestID: string(requestID),
				"resultJson":        opts.resultJSON,
			})
			if !registry.ResolveRequest(requestID, opts.resultJSON) {
				recorder.record(transcript.KindFailure, "resolveRequest", map[string]any{domain.ArgError: "no pending request"})
			}
		}()
	}

	start := app.now()

	recorder.record(transcript.KindCommand, "createScenario", map[string]any{"walletName": opts.walletName})
	sessionID := registry.CreateSession(opts.walletName, "{}")

	recorder.record(transcript.KindCommand, "startScenario", map[string]any{domain.ArgSessionID: string(sessionID)})
	if err := registry.StartSession(sessionID); err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	requestID, result := registry.ForwardRequestAsync(domain.MethodAuthorizeRequest, sessionID, demoAuthorizeParams)

	waitErr := transcript.Await(ctx, transcript.AwaitOptions{
		RequestID: requestID,
		Snapshot:  registry.Snapshot,
		Now:       app.now,
		Output:    cmd.ErrOrStderr(),
	}, func(ctx context.Context) error {
		select {
		case payload := <-result:
			recorder.record(transcript.KindCompletion, domain.MethodAuthorizeRequest, map[string]any{"result": payload})
			return nil
		case <-time.After(opts.timeout):
			return errDemoTimeout
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if waitErr != nil {
		recorder.record(transcript.KindFailure, domain.MethodAuthorizeRequest, map[string]any{domain.ArgError: waitErr.Error()})
	}

	recorder.record(transcript.KindCommand, "closeScenario", map[string]any{domain.ArgSessionID: string(sessionID)})
	registry.CloseSession(sessionID)

	snapshot := registry.Snapshot()
	rendered := transcript.Render(recorder.snapshot(), transcript.RenderOptions{
		Title:    "Wallet Bridge Demo",
		Start:    start,
		Snapshot: &snapshot,
	})

	if _, err := fmt.Fprintln(cmd.OutOrStdout(), rendered); err != nil {
		return err
	}

	if waitErr != nil {
		return fmt.Errorf("demo request: %w", waitErr)
	}
	return nil
}
