package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/mwa-bridge/internal/adapters/channel"
	"github.com/bnema/mwa-bridge/internal/application"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) messages(t *testing.T) []map[string]any {
	t.Helper()

	b.mu.Lock()
	raw := b.buf.String()
	b.mu.Unlock()

	var out []map[string]any
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

type harness struct {
	t        *testing.T
	in       *io.PipeWriter
	out      *syncBuffer
	plugin   *Plugin
	launcher *application.Launcher
	done     chan error
	nextID   uint64
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	reader, writer := io.Pipe()
	out := &syncBuffer{}
	conn := channel.NewConn(reader, out, zerolog.Nop())
	launcher := application.NewLauncher("", nil, nil, zerolog.Nop())
	plugin := NewPlugin(launcher, nil, nil, zerolog.Nop())
	plugin.OnAttachedToEngine(conn)

	h := &harness{t: t, in: writer, out: out, plugin: plugin, launcher: launcher, done: make(chan error, 1)}
	go func() { h.done <- conn.Serve(context.Background()) }()

	t.Cleanup(func() {
		_ = writer.Close()
		select {
		case <-h.done:
		case <-time.After(2 * time.Second):
			t.Error("serve did not stop")
		}
	})

	return h
}

// call sends one request and waits for its reply.
func (h *harness) call(channelName, method string, args map[string]any) map[string]any {
	h.t.Helper()

	h.nextID++
	id := h.nextID
	line, err := json.Marshal(map[string]any{"channel": channelName, "id": id, "method": method, "args": args})
	require.NoError(h.t, err)
	_, err = h.in.Write(append(line, '\n'))
	require.NoError(h.t, err)

	var reply map[string]any
	require.Eventually(h.t, func() bool {
		for _, m := range h.out.messages(h.t) {
			if got, ok := m["id"].(float64); ok && uint64(got) == id {
				reply = m
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)

	return reply
}

func (h *harness) notifications() []map[string]any {
	h.t.Helper()

	var out []map[string]any
	for _, m := range h.out.messages(h.t) {
		if _, isReply := m["id"]; !isReply {
			out = append(out, m)
		}
	}
	return out
}

func (h *harness) notificationMethods() []string {
	h.t.Helper()

	var methods []string
	for _, m := range h.notifications() {
		methods = append(methods, m["method"].(string))
	}
	return methods
}

func errorCodeOf(reply map[string]any) string {
	errObj, ok := reply["error"].(map[string]any)
	if !ok {
		return ""
	}
	code, _ := errObj["code"].(string)
	return code
}
