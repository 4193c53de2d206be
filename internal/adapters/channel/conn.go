package channel

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

const maxLineBytes = 4 << 20

// Result answers a single call. Only the first reply is written.
type Result interface {
	Success(value any)
	Error(code, message string)
	NotImplemented()
}

type Handler interface {
	HandleCall(ctx context.Context, call Call, result Result)
}

type HandlerFunc func(ctx context.Context, call Call, result Result)

func (f HandlerFunc) HandleCall(ctx context.Context, call Call, result Result) {
	f(ctx, call, result)
}

// Conn multiplexes named method channels over a line-delimited JSON stream.
// Calls are dispatched sequentially in arrival order; Invoke may be used from
// any goroutine.
type Conn struct {
	in     io.Reader
	logger zerolog.Logger

	writeMu sync.Mutex
	out     *json.Encoder

	handlersMu sync.RWMutex
	handlers   map[string]Handler
}

func NewConn(in io.Reader, out io.Writer, logger zerolog.Logger) *Conn {
	return &Conn{
		in:       in,
		out:      json.NewEncoder(out),
		logger:   logger.With().Str("component", "channel").Logger(),
		handlers: map[string]Handler{},
	}
}

// SetHandler installs h for the named channel; nil removes it.
func (c *Conn) SetHandler(channel string, h Handler) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()

	if h == nil {
		delete(c.handlers, channel)
		return
	}
	c.handlers[channel] = h
}

// Invoke sends a notification to the peer.
func (c *Conn) Invoke(channel, method string, args map[string]any) error {
	return c.write(message{Channel: channel, Method: method, Args: args})
}

// Serve reads calls until the stream ends or ctx is canceled. A clean end of
// stream returns nil. Serve does not close the reader: after cancellation the
// reading goroutine stays blocked until the reader returns, so callers owning
// a pipe or socket should close it themselves.
func (c *Conn) Serve(ctx context.Context) error {
	lines := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(c.in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			if err != nil {
				return fmt.Errorf("read channel stream: %w", err)
			}
			return nil
		case line := <-lines:
			c.dispatch(ctx, line)
		}
	}
}

func (c *Conn) dispatch(ctx context.Context, line []byte) {
	if len(line) == 0 {
		return
	}

	call, err := decodeCall(line)
	if err != nil {
		c.logger.Warn().Err(err).Msg("dropping malformed call")
		return
	}

	result := &reply{conn: c, channel: call.Channel, id: call.ID}

	c.handlersMu.RLock()
	handler, ok := c.handlers[call.Channel]
	c.handlersMu.RUnlock()

	if !ok {
		c.logger.Debug().Str("channel", call.Channel).Str("method", call.Method).Msg("no handler registered")
		result.NotImplemented()
		return
	}

	c.logger.Debug().Str("channel", call.Channel).Str("method", call.Method).Msg("dispatching call")
	handler.HandleCall(ctx, call, result)
}

func (c *Conn) write(m message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.out.Encode(m); err != nil {
		return fmt.Errorf("write channel message: %w", err)
	}
	return nil
}

type reply struct {
	conn    *Conn
	channel string
	id      *uint64
	once    sync.Once
}

func (r *reply) Success(value any) {
	encoded, err := encodeResult(value)
	if err != nil {
		r.Error(CodeInternal, err.Error())
		return
	}
	r.send(message{Result: encoded})
}

func (r *reply) Error(code, msg string) {
	r.send(message{Error: &CallError{Code: code, Message: msg}})
}

func (r *reply) NotImplemented() {
	r.send(message{NotImplemented: true})
}

// send drops replies to calls without an id; the caller asked for no answer.
func (r *reply) send(m message) {
	r.once.Do(func() {
		if r.id == nil {
			return
		}
		m.Channel = r.channel
		m.ID = r.id
		if err := r.conn.write(m); err != nil && !errors.Is(err, io.ErrClosedPipe) {
			r.conn.logger.Error().Err(err).Str("channel", r.channel).Msg("reply not delivered")
		}
	})
}
